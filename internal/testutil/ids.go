package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable IDs ("<prefix>-1", "<prefix>-2", ...)
// for code that normally uses random UUIDs.
//
// Thread-safety: all methods are safe for concurrent use.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int64
}

// NewSequentialIDs creates a generator. An empty prefix becomes "id".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "id"
	}
	return &SequentialIDs{prefix: prefix}
}

// Next returns the next ID. The first call returns "<prefix>-1".
func (s *SequentialIDs) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

// Reset restarts the sequence so the next call returns "<prefix>-1" again.
func (s *SequentialIDs) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}

// FixedID returns an ID function that always yields id.
func FixedID(id string) func() string {
	return func() string { return id }
}
