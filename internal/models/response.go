package models

// Candidate is one reply candidate returned by the web backend.
type Candidate struct {
	RCID string
	Text string
}

// ModelOutput is a parsed StreamGenerate response.
type ModelOutput struct {
	Metadata   []string // [cid, rid, rcid]
	Candidates []Candidate
	Chosen     int
}

// ChosenCandidate returns the selected candidate, falling back to the
// first one when Chosen is out of range.
func (m *ModelOutput) ChosenCandidate() *Candidate {
	if len(m.Candidates) == 0 {
		return nil
	}
	if m.Chosen < 0 || m.Chosen >= len(m.Candidates) {
		return &m.Candidates[0]
	}
	return &m.Candidates[m.Chosen]
}

// Text returns the chosen candidate's text.
func (m *ModelOutput) Text() string {
	if c := m.ChosenCandidate(); c != nil {
		return c.Text
	}
	return ""
}

// RCID returns the chosen candidate's id.
func (m *ModelOutput) RCID() string {
	if c := m.ChosenCandidate(); c != nil {
		return c.RCID
	}
	return ""
}

// CID returns the conversation id.
func (m *ModelOutput) CID() string {
	if len(m.Metadata) > 0 {
		return m.Metadata[0]
	}
	return ""
}

// RID returns the reply id.
func (m *ModelOutput) RID() string {
	if len(m.Metadata) > 1 {
		return m.Metadata[1]
	}
	return ""
}
