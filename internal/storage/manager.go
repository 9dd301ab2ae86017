package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// StorageError represents a storage-related failure
type StorageError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StorageError) Error() string {
	msg := fmt.Sprintf("storage error during %s", e.Operation)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsRetryable indicates if this storage error is retryable. URI and ID
// validation failures carry no path and are permanent.
func (e *StorageError) IsRetryable() bool {
	return e.Path != ""
}

// RecordKind is the collection a record belongs to
type RecordKind string

const (
	RecordKindThread  RecordKind = "threads"
	RecordKindMessage RecordKind = "messages"
)

// recordExt is the extension of every stored record
const recordExt = ".json"

var schemes = map[RecordKind]string{
	RecordKindThread:  "thread://",
	RecordKindMessage: "message://",
}

// Kinds returns every record kind managed by the store
func Kinds() []RecordKind {
	return []RecordKind{RecordKindThread, RecordKindMessage}
}

// StorageConfig holds configuration for the storage manager
type StorageConfig struct {
	BasePath   string
	DefaultTTL time.Duration
	Logger     *slog.Logger // Optional: defaults to a discarding logger
	FileSystem FileSystem   // Optional: defaults to the OS filesystem
}

// StorageManager persists JSON records on a FileSystem, one file per record
type StorageManager struct {
	basePath   string
	defaultTTL time.Duration
	logger     *slog.Logger
	fs         FileSystem
}

// NewStorageManager creates a new storage manager and its directory layout
func NewStorageManager(config StorageConfig) (*StorageManager, error) {
	ctx := context.Background()

	if config.BasePath == "" {
		config.BasePath = "./storage"
	}
	if config.DefaultTTL == 0 {
		config.DefaultTTL = 30 * 24 * time.Hour
	}
	if config.FileSystem == nil {
		config.FileSystem = NewOSFileSystem()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	for _, kind := range Kinds() {
		path := filepath.Join(config.BasePath, string(kind))
		if err := config.FileSystem.MkdirAll(path, 0755); err != nil {
			config.Logger.ErrorContext(ctx, "failed to create storage directory",
				"error", err,
				"path", path,
				"operation", "init",
			)
			return nil, &StorageError{
				Operation: "init - create directory",
				Path:      path,
				Err:       err,
			}
		}
	}

	config.Logger.InfoContext(ctx, "storage manager initialized",
		"base_path", config.BasePath,
		"default_ttl", config.DefaultTTL,
	)

	return &StorageManager{
		basePath:   config.BasePath,
		defaultTTL: config.DefaultTTL,
		logger:     config.Logger,
		fs:         config.FileSystem,
	}, nil
}

// GetPath returns the directory holding records of a kind
func (sm *StorageManager) GetPath(kind RecordKind) string {
	return filepath.Join(sm.basePath, string(kind))
}

// FormatURI builds the URI of a record
func FormatURI(kind RecordKind, id string) string {
	return schemes[kind] + id
}

// ParseURI parses a record URI into its kind and ID
func ParseURI(uri string) (RecordKind, string, error) {
	for kind, scheme := range schemes {
		if !strings.HasPrefix(uri, scheme) {
			continue
		}
		id := strings.TrimPrefix(uri, scheme)
		if err := ValidateID(id); err != nil {
			return "", "", err
		}
		return kind, id, nil
	}
	return "", "", &StorageError{
		Operation: "parse URI",
		Err:       fmt.Errorf("unsupported URI: %s", uri),
	}
}

// ValidateID rejects record IDs that are empty or could escape their kind
// directory: anything containing "..", a path separator or NUL
func ValidateID(id string) error {
	if id == "" {
		return &StorageError{Operation: "validate id", Err: fmt.Errorf("empty record id")}
	}
	if strings.ContainsAny(id, "/\\\x00") || strings.Contains(id, "..") {
		return &StorageError{Operation: "validate id", Err: fmt.Errorf("invalid record id: %q", id)}
	}
	return nil
}

func (sm *StorageManager) recordPath(kind RecordKind, id string) string {
	return filepath.Join(sm.GetPath(kind), id+recordExt)
}

// SaveRecord writes a record, replacing any previous version, and returns its URI.
// The data is written to a temporary file first and renamed into place.
func (sm *StorageManager) SaveRecord(kind RecordKind, id string, data []byte) (string, error) {
	ctx := context.Background()
	if _, ok := schemes[kind]; !ok {
		return "", &StorageError{Operation: "save record", Err: fmt.Errorf("unknown record kind: %s", kind)}
	}
	if err := ValidateID(id); err != nil {
		return "", err
	}

	path := sm.recordPath(kind, id)
	tmp := path + ".tmp"

	if err := sm.fs.WriteFile(tmp, data, 0644); err != nil {
		sm.logger.ErrorContext(ctx, "failed to write record",
			"error", err,
			"kind", kind,
			"id", id,
			"path", tmp,
			"operation", "save",
		)
		return "", &StorageError{Operation: "save record", Path: tmp, Err: err}
	}
	if err := sm.fs.Rename(tmp, path); err != nil {
		sm.logger.ErrorContext(ctx, "failed to move record into place",
			"error", err,
			"kind", kind,
			"id", id,
			"path", path,
			"operation", "save",
		)
		return "", &StorageError{Operation: "save record - rename", Path: path, Err: err}
	}

	sm.logger.DebugContext(ctx, "record saved",
		"kind", kind,
		"id", id,
		"size", len(data),
	)

	return FormatURI(kind, id), nil
}

// ReadRecord reads a record by URI
func (sm *StorageManager) ReadRecord(uri string) ([]byte, error) {
	ctx := context.Background()
	kind, id, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	path := sm.recordPath(kind, id)
	data, err := sm.fs.ReadFile(path)
	if err != nil {
		sm.logger.DebugContext(ctx, "failed to read record",
			"error", err,
			"uri", uri,
			"path", path,
			"operation", "read",
		)
		return nil, &StorageError{Operation: "read record", Path: path, Err: err}
	}

	return data, nil
}

// DeleteRecord removes a record by URI
func (sm *StorageManager) DeleteRecord(uri string) error {
	kind, id, err := ParseURI(uri)
	if err != nil {
		return err
	}
	path := sm.recordPath(kind, id)
	if err := sm.fs.Remove(path); err != nil {
		return &StorageError{Operation: "delete record", Path: path, Err: err}
	}
	sm.logger.DebugContext(context.Background(), "record deleted", "uri", uri)
	return nil
}

// RecordExists checks if a record exists in storage
func (sm *StorageManager) RecordExists(uri string) bool {
	kind, id, err := ParseURI(uri)
	if err != nil {
		return false
	}
	_, err = sm.fs.Stat(sm.recordPath(kind, id))
	return err == nil
}

// ListRecords returns the sorted IDs of records of a kind whose ID starts with prefix
func (sm *StorageManager) ListRecords(kind RecordKind, prefix string) ([]string, error) {
	ctx := context.Background()
	dir := sm.GetPath(kind)
	entries, err := sm.fs.ReadDir(dir)
	if err != nil {
		sm.logger.ErrorContext(ctx, "failed to read directory for listing",
			"error", err,
			"dir", dir,
			"kind", kind,
		)
		return nil, &StorageError{Operation: "list records", Path: dir, Err: err}
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != recordExt {
			continue
		}
		id := strings.TrimSuffix(name, recordExt)
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	sm.logger.DebugContext(ctx, "listed records",
		"kind", kind,
		"prefix", prefix,
		"count", len(ids),
	)

	return ids, nil
}

// Cleanup removes records not modified within ttl; zero ttl uses the default
func (sm *StorageManager) Cleanup(ttl time.Duration) (int64, error) {
	ctx := context.Background()
	if ttl == 0 {
		ttl = sm.defaultTTL
	}

	cutoff := time.Now().Add(-ttl)
	var removed int64

	for _, kind := range Kinds() {
		dir := sm.GetPath(kind)
		entries, err := sm.fs.ReadDir(dir)
		if err != nil {
			sm.logger.ErrorContext(ctx, "failed to read directory for cleanup",
				"error", err,
				"dir", dir,
				"kind", kind,
			)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if entry.ModTime().Before(cutoff) {
				if err := sm.fs.Remove(filepath.Join(dir, entry.Name())); err == nil {
					removed++
				}
			}
		}
	}

	sm.logger.InfoContext(ctx, "storage cleanup completed",
		"removed", removed,
		"ttl", ttl,
	)

	return removed, nil
}

// GetStorageStats returns the number of records per kind
func (sm *StorageManager) GetStorageStats() (map[RecordKind]int64, error) {
	stats := make(map[RecordKind]int64, len(schemes))
	for _, kind := range Kinds() {
		ids, err := sm.ListRecords(kind, "")
		if err != nil {
			return nil, err
		}
		stats[kind] = int64(len(ids))
	}
	return stats, nil
}

// IsAccessible checks if storage is accessible and directories exist
func (sm *StorageManager) IsAccessible() bool {
	if _, err := sm.fs.Stat(sm.basePath); err != nil {
		return false
	}
	for _, kind := range Kinds() {
		if _, err := sm.fs.Stat(sm.GetPath(kind)); err != nil {
			return false
		}
	}
	return true
}
