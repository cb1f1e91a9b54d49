package sheets

import (
	"context"
	"sync"
)

// MemoryWriter collects appended rows in memory, standing in for the Google
// client in tests.
type MemoryWriter struct {
	mu   sync.Mutex
	rows [][]string
}

var _ ExpenseWriter = (*MemoryWriter)(nil)

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

func (m *MemoryWriter) Append(_ context.Context, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rows...)
	return nil
}

// Rows returns everything appended so far.
func (m *MemoryWriter) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.rows))
	copy(out, m.rows)
	return out
}
