package checkpoint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arya/tanya/internal/observability"
)

// MemoryStore keeps snapshots in process memory. Snapshots survive for the
// process lifetime unless explicitly evicted.
type MemoryStore struct {
	snapshots map[string][]Message
	mu        sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	observability.EnsureRegistered()
	return &MemoryStore{
		snapshots: make(map[string][]Message),
	}
}

// Load returns the latest snapshot for a thread
func (s *MemoryStore) Load(ctx context.Context, threadID string) ([]Message, error) {
	if err := validateThreadID(threadID); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { observability.RecordCheckpointLoad(time.Since(start)) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[threadID]
	if !ok {
		return nil, nil
	}
	return copyMessages(snapshot), nil
}

// Save replaces the snapshot for a thread
func (s *MemoryStore) Save(ctx context.Context, threadID string, messages []Message) error {
	if err := validateThreadID(threadID); err != nil {
		return err
	}

	start := time.Now()
	defer func() { observability.RecordCheckpointSave(time.Since(start)) }()

	s.mu.Lock()
	s.snapshots[threadID] = copyMessages(messages)
	count := len(s.snapshots)
	s.mu.Unlock()

	observability.SetActiveThreads(count)
	return nil
}

// Evict removes a thread's snapshot
func (s *MemoryStore) Evict(threadID string) error {
	if err := validateThreadID(threadID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.snapshots, threadID)
	count := len(s.snapshots)
	s.mu.Unlock()

	observability.SetActiveThreads(count)
	return nil
}

// Threads lists thread IDs with a stored snapshot
func (s *MemoryStore) Threads() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		threads = append(threads, id)
	}
	sort.Strings(threads)
	return threads, nil
}
