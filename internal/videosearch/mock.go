package videosearch

import (
	"context"
	"errors"
)

// MockSearcher returns canned candidates for tests.
type MockSearcher struct {
	Candidates []*Candidate
	Err        error
	// LastQuery records the most recent query for assertions.
	LastQuery string
}

// Search returns the canned candidates, capped at maxResults.
func (m *MockSearcher) Search(ctx context.Context, query string, maxResults int) ([]*Candidate, error) {
	m.LastQuery = query
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Candidates) > maxResults {
		return m.Candidates[:maxResults], nil
	}
	return m.Candidates, nil
}

// ErrSearchDown simulates a transient platform failure in tests.
var ErrSearchDown = errors.New("video search unavailable")
