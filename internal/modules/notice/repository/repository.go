package repository

import (
	"sync"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
)

// Repository keeps the most recent operator notices.
type Repository interface {
	// Add stores a notice and returns its assigned ID.
	Add(n domain.Notice) uint64
	// List returns stored notices, newest first.
	List() []domain.Notice
	Count() int
}

// MemoryStore is a bounded ring of notices. The oldest entry is dropped once full.
type MemoryStore struct {
	mu      sync.RWMutex
	notices []domain.Notice
	nextID  uint64
	maxSize int
}

// NewMemoryStore creates a store holding at most maxSize notices.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &MemoryStore{
		notices: make([]domain.Notice, 0, maxSize),
		nextID:  1,
		maxSize: maxSize,
	}
}

func (s *MemoryStore) Add(n domain.Notice) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = s.nextID
	s.nextID++

	if len(s.notices) >= s.maxSize {
		copy(s.notices[1:], s.notices[:len(s.notices)-1])
		s.notices[0] = n
		return n.ID
	}

	grown := make([]domain.Notice, len(s.notices)+1, s.maxSize)
	grown[0] = n
	copy(grown[1:], s.notices)
	s.notices = grown
	return n.ID
}

func (s *MemoryStore) List() []domain.Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notice, len(s.notices))
	copy(out, s.notices)
	return out
}

func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notices)
}
