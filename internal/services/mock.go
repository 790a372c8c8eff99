package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/tale-engine/pkg/narrator"
)

// MockEmbellisher is a test double for the narrator port.
type MockEmbellisher struct {
	mu sync.Mutex

	// Response is returned verbatim when Err is nil. An empty Response
	// echoes the input line back.
	Response string
	Err      error

	Calls []string
}

var _ narrator.Embellisher = (*MockEmbellisher)(nil)

func (m *MockEmbellisher) Embellish(ctx context.Context, line string, speaker string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, line)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response == "" {
		return line, nil
	}
	return m.Response, nil
}
