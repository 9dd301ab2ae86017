package messaging

import (
	"context"
	"sort"
	"sync"
)

// Store persists threads and messages
type Store interface {
	SaveThread(ctx context.Context, thread Thread) error
	// GetThread returns a NotFoundError when the thread does not exist
	GetThread(ctx context.Context, id string) (Thread, error)
	ListThreads(ctx context.Context) ([]Thread, error)
	SaveMessage(ctx context.Context, msg Message) error
	// GetMessage returns a NotFoundError when the message does not exist
	GetMessage(ctx context.Context, threadID, id string) (Message, error)
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
	// DeleteMessage returns a NotFoundError when the message does not exist
	DeleteMessage(ctx context.Context, threadID, id string) error
}

// MemoryStore keeps everything in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	threads  map[string]Thread
	messages map[string]map[string]Message
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		threads:  make(map[string]Thread),
		messages: make(map[string]map[string]Message),
	}
}

func (s *MemoryStore) SaveThread(_ context.Context, thread Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[thread.ID] = thread
	return nil
}

func (s *MemoryStore) GetThread(_ context.Context, id string) (Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	thread, ok := s.threads[id]
	if !ok {
		return Thread{}, &NotFoundError{Kind: "thread", ID: id}
	}
	return thread, nil
}

func (s *MemoryStore) ListThreads(_ context.Context) ([]Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	threads := make([]Thread, 0, len(s.threads))
	for _, t := range s.threads {
		threads = append(threads, t)
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].ID < threads[j].ID })
	return threads, nil
}

func (s *MemoryStore) SaveMessage(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.messages[msg.ThreadID]
	if !ok {
		byID = make(map[string]Message)
		s.messages[msg.ThreadID] = byID
	}
	byID[msg.ID] = msg
	return nil
}

func (s *MemoryStore) GetMessage(_ context.Context, threadID, id string) (Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[threadID][id]
	if !ok {
		return Message{}, &NotFoundError{Kind: "message", ID: id}
	}
	return msg, nil
}

func (s *MemoryStore) ListMessages(_ context.Context, threadID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]Message, 0, len(s.messages[threadID]))
	for _, m := range s.messages[threadID] {
		msgs = append(msgs, m)
	}
	sortMessages(msgs)
	return msgs, nil
}

func (s *MemoryStore) DeleteMessage(_ context.Context, threadID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[threadID][id]; !ok {
		return &NotFoundError{Kind: "message", ID: id}
	}
	delete(s.messages[threadID], id)
	return nil
}

// sortMessages orders messages by timestamp, then ID
func sortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}
