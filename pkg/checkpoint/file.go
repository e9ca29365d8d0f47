package checkpoint

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arya/tanya/internal/observability"
	"github.com/rs/zerolog/log"
)

// FileStore persists snapshots as one JSONL file per thread under a
// directory. Each line is a single Message.
type FileStore struct {
	dir        string
	writeLocks map[string]*sync.Mutex
	locksMu    sync.Mutex
}

// NewFileStore creates a file-backed store rooted at dir
func NewFileStore(dir string) (*FileStore, error) {
	observability.EnsureRegistered()

	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".tanya", "threads")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create threads directory: %w", err)
	}

	fs := &FileStore{
		dir:        dir,
		writeLocks: make(map[string]*sync.Mutex),
	}

	log.Info().Str("dir", dir).Msg("File checkpoint store initialized")
	return fs, nil
}

func (s *FileStore) threadPath(threadID string) string {
	return filepath.Join(s.dir, threadID+".jsonl")
}

func (s *FileStore) writeLock(threadID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if lock, exists := s.writeLocks[threadID]; exists {
		return lock
	}
	lock := &sync.Mutex{}
	s.writeLocks[threadID] = lock
	return lock
}

// Load returns the latest snapshot for a thread
func (s *FileStore) Load(ctx context.Context, threadID string) ([]Message, error) {
	if err := validateThreadID(threadID); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { observability.RecordCheckpointLoad(time.Since(start)) }()

	file, err := os.Open(s.threadPath(threadID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open thread file: %w", err)
	}
	defer file.Close()

	var messages []Message
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			return nil, fmt.Errorf("corrupt checkpoint line %d in thread %s: %w", lineNo, threadID, err)
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read thread file: %w", err)
	}

	return messages, nil
}

// Save replaces the snapshot for a thread. The file is rewritten atomically
// through a temp file so a crash never leaves a half-written snapshot.
func (s *FileStore) Save(ctx context.Context, threadID string, messages []Message) error {
	if err := validateThreadID(threadID); err != nil {
		return err
	}

	start := time.Now()
	defer func() { observability.RecordCheckpointSave(time.Since(start)) }()

	lock := s.writeLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	tmp, err := os.CreateTemp(s.dir, threadID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writer := bufio.NewWriter(tmp)
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		if _, err := writer.Write(append(data, '\n')); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to write message: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush thread file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync thread file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close thread file: %w", err)
	}

	if err := os.Rename(tmpPath, s.threadPath(threadID)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace thread file: %w", err)
	}

	s.updateActiveThreadsMetric()
	return nil
}

// Evict removes a thread's snapshot
func (s *FileStore) Evict(threadID string) error {
	if err := validateThreadID(threadID); err != nil {
		return err
	}

	lock := s.writeLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(s.threadPath(threadID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove thread file: %w", err)
	}

	s.locksMu.Lock()
	delete(s.writeLocks, threadID)
	s.locksMu.Unlock()

	s.updateActiveThreadsMetric()
	return nil
}

// Threads lists thread IDs with a stored snapshot
func (s *FileStore) Threads() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read threads directory: %w", err)
	}

	var threads []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".jsonl") {
			threads = append(threads, strings.TrimSuffix(name, ".jsonl"))
		}
	}
	sort.Strings(threads)
	return threads, nil
}

func (s *FileStore) updateActiveThreadsMetric() {
	threads, err := s.Threads()
	if err != nil {
		return
	}
	observability.SetActiveThreads(len(threads))
}
