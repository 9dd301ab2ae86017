package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/kfreiman/piigate/internal/retry"
	"github.com/kfreiman/piigate/internal/storage"
)

// FileStore persists threads and messages as JSON records
type FileStore struct {
	storage *storage.StorageManager
	retry   retry.Config
	logger  *slog.Logger
}

// NewFileStore creates a store backed by a storage manager
func NewFileStore(sm *storage.StorageManager) *FileStore {
	return &FileStore{
		storage: sm,
		retry:   retry.DefaultConfig,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger for the store
func (s *FileStore) WithLogger(logger *slog.Logger) *FileStore {
	s.logger = logger
	return s
}

// WithRetryConfig overrides the retry policy for record writes
func (s *FileStore) WithRetryConfig(config retry.Config) *FileStore {
	s.retry = config
	return s
}

// messageRecordID keys a message record by its thread so a thread's messages
// can be listed by prefix
func messageRecordID(threadID, id string) string {
	return threadID + "_" + id
}

func (s *FileStore) save(ctx context.Context, kind storage.RecordKind, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", kind, err)
	}
	return retry.Do(ctx, s.retry, func(attempt int) error {
		_, err := s.storage.SaveRecord(kind, id, data)
		if err != nil {
			s.logger.WarnContext(ctx, "record save failed",
				"error", err,
				"kind", kind,
				"id", id,
				"attempt", attempt,
			)
		}
		return err
	})
}

func (s *FileStore) load(kind storage.RecordKind, id string, v interface{}) error {
	data, err := s.storage.ReadRecord(storage.FormatURI(kind, id))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s record %s: %w", kind, id, err)
	}
	return nil
}

func (s *FileStore) SaveThread(ctx context.Context, thread Thread) error {
	return s.save(ctx, storage.RecordKindThread, thread.ID, thread)
}

func (s *FileStore) GetThread(_ context.Context, id string) (Thread, error) {
	// No record can be stored under an ID the storage layer rejects
	if storage.ValidateID(id) != nil {
		return Thread{}, &NotFoundError{Kind: "thread", ID: id}
	}
	var thread Thread
	if err := s.load(storage.RecordKindThread, id, &thread); err != nil {
		if notFound(err) {
			return Thread{}, &NotFoundError{Kind: "thread", ID: id}
		}
		return Thread{}, err
	}
	return thread, nil
}

func (s *FileStore) ListThreads(ctx context.Context) ([]Thread, error) {
	ids, err := s.storage.ListRecords(storage.RecordKindThread, "")
	if err != nil {
		return nil, err
	}
	threads := make([]Thread, 0, len(ids))
	for _, id := range ids {
		thread, err := s.GetThread(ctx, id)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].ID < threads[j].ID })
	return threads, nil
}

func (s *FileStore) SaveMessage(ctx context.Context, msg Message) error {
	return s.save(ctx, storage.RecordKindMessage, messageRecordID(msg.ThreadID, msg.ID), msg)
}

func (s *FileStore) GetMessage(_ context.Context, threadID, id string) (Message, error) {
	if storage.ValidateID(messageRecordID(threadID, id)) != nil {
		return Message{}, &NotFoundError{Kind: "message", ID: id}
	}
	var msg Message
	if err := s.load(storage.RecordKindMessage, messageRecordID(threadID, id), &msg); err != nil {
		if notFound(err) {
			return Message{}, &NotFoundError{Kind: "message", ID: id}
		}
		return Message{}, err
	}
	return msg, nil
}

func (s *FileStore) ListMessages(_ context.Context, threadID string) ([]Message, error) {
	ids, err := s.storage.ListRecords(storage.RecordKindMessage, threadID+"_")
	if err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(ids))
	for _, id := range ids {
		var msg Message
		if err := s.load(storage.RecordKindMessage, id, &msg); err != nil {
			// Removed by retention cleanup between listing and reading
			if notFound(err) {
				continue
			}
			return nil, err
		}
		// Prefix listing can also pick up threads whose ID extends this one
		if msg.ThreadID != threadID {
			continue
		}
		msgs = append(msgs, msg)
	}
	sortMessages(msgs)
	return msgs, nil
}

func (s *FileStore) DeleteMessage(_ context.Context, threadID, id string) error {
	key := messageRecordID(threadID, id)
	if storage.ValidateID(key) != nil {
		return &NotFoundError{Kind: "message", ID: id}
	}
	if err := s.storage.DeleteRecord(storage.FormatURI(storage.RecordKindMessage, key)); err != nil {
		if notFound(err) {
			return &NotFoundError{Kind: "message", ID: id}
		}
		return err
	}
	return nil
}

func notFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
