package generator

import (
	"context"
	"slices"
	"sync"
)

// History is the append-only, in-memory record of completed generations for one session.
type History struct {
	mu      sync.RWMutex
	results []GenerationResult
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Append(result GenerationResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, result)
}

// All returns a copy of the results in the order they completed.
func (h *History) All() []GenerationResult {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.results)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.results)
}

// Get finds a result by ID.
func (h *History) Get(id string) (GenerationResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.results {
		if r.ID == id {
			return r, true
		}
	}
	return GenerationResult{}, false
}

// Session is one interactive user's scope: a shared Agent and a private History.
type Session struct {
	ID      string
	History *History
	agent   *Agent
}

// NewSession creates a session with an empty history.
func NewSession(id string, agent *Agent) *Session {
	return &Session{
		ID:      id,
		History: NewHistory(),
		agent:   agent,
	}
}

// Run generates content for req, streaming partial text to onUpdate. On
// success the result is appended to the session history. On failure the
// history is left unchanged.
func (s *Session) Run(ctx context.Context, req ContentRequest, onUpdate func(partial string)) (GenerationResult, error) {
	result, err := s.agent.Generate(ctx, req, onUpdate)
	if err != nil {
		return GenerationResult{}, err
	}
	s.History.Append(result)
	return result, nil
}
