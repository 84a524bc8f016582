package api

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	http "github.com/bogdanfinn/fhttp"
)

// mockResponse is one canned answer of mockDoer.
type mockResponse struct {
	status    int
	body      string
	setCookie string
	err       error
}

// mockDoer replays responses in order; the last one repeats.
type mockDoer struct {
	mu        sync.Mutex
	responses []mockResponse
	requests  []*http.Request
	bodies    []string
}

func newMockDoer(responses ...mockResponse) *mockDoer {
	return &mockDoer{responses: responses}
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)

	r := m.responses[len(m.responses)-1]
	if len(m.requests) <= len(m.responses) {
		r = m.responses[len(m.requests)-1]
	}
	if r.err != nil {
		return nil, r.err
	}

	header := make(http.Header)
	if r.setCookie != "" {
		header.Add("Set-Cookie", r.setCookie)
	}
	return &http.Response{
		StatusCode: r.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(r.body)),
	}, nil
}

func (m *mockDoer) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockDoer) request(i int) (*http.Request, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i], m.bodies[i]
}

// streamBody builds a StreamGenerate response carrying one candidate.
func streamBody(t *testing.T, text, rcid string, metadata []string) string {
	t.Helper()

	inner := []any{nil, metadata, nil, nil, []any{[]any{rcid, []any{text}}}}
	innerJSON, err := json.Marshal(inner)
	if err != nil {
		t.Fatal(err)
	}
	outer, err := json.Marshal([]any{[]any{"wrb.fr", nil, string(innerJSON)}})
	if err != nil {
		t.Fatal(err)
	}
	return ")]}'\n\n187\n" + string(outer) + "\n"
}

const tokenPage = `<html><script>window.WIZ_global_data = {"SNlM0e":"token-abc","other":"x"};</script></html>`
