package api

import (
	"context"
	"slices"
	"sync"

	"github.com/diogo/mangroveguide/internal/models"
)

// ChatSession carries the [cid, rid, rcid] metadata that lets the server
// continue one conversation.
type ChatSession struct {
	client     *GeminiClient
	mu         sync.RWMutex
	model      models.Model
	metadata   []string
	lastOutput *models.ModelOutput
}

// SendMessage sends prompt within the conversation and records the new
// metadata.
func (s *ChatSession) SendMessage(ctx context.Context, prompt string) (*models.ModelOutput, error) {
	s.mu.RLock()
	opts := &GenerateOptions{
		Model:    s.model,
		Metadata: slices.Clone(s.metadata),
	}
	s.mu.RUnlock()

	output, err := s.client.GenerateContent(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastOutput = output
	s.updateMetadataLocked(output)
	s.mu.Unlock()
	return output, nil
}

// updateMetadataLocked must be called with s.mu held.
func (s *ChatSession) updateMetadataLocked(output *models.ModelOutput) {
	if len(output.Metadata) > 0 {
		s.metadata = slices.Clone(output.Metadata)
	}

	switch len(s.metadata) {
	case 0, 1:
	case 2:
		s.metadata = append(s.metadata, output.RCID())
	default:
		s.metadata[2] = output.RCID()
	}
}

// SetMetadata resumes an existing conversation.
func (s *ChatSession) SetMetadata(cid, rid, rcid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = []string{cid, rid, rcid}
}

// GetMetadata returns a copy of the session metadata.
func (s *ChatSession) GetMetadata() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.metadata)
}

// CID returns the conversation ID
func (s *ChatSession) CID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.metadata) > 0 {
		return s.metadata[0]
	}
	return ""
}

// Model returns the session's model
func (s *ChatSession) Model() models.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// LastOutput returns the last response from the session
func (s *ChatSession) LastOutput() *models.ModelOutput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastOutput
}
