package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/kfreiman/piigate/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CleanupStorageTool handles retention cleanup of stored records
type CleanupStorageTool struct {
	storageManager *storage.StorageManager
	logger         *slog.Logger
}

// NewCleanupStorageTool creates a new cleanup storage tool
func NewCleanupStorageTool(storageManager *storage.StorageManager) *CleanupStorageTool {
	return &CleanupStorageTool{
		storageManager: storageManager,
		logger:         slog.Default(),
	}
}

// WithLogger sets the logger for the tool
func (t *CleanupStorageTool) WithLogger(logger *slog.Logger) *CleanupStorageTool {
	t.logger = logger
	return t
}

// parseTTL accepts a duration string or a whole number of hours
func parseTTL(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if ttl, err := time.ParseDuration(s); err == nil {
		return ttl, nil
	}
	hours, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format %q: use a duration string (e.g., '720h') or hours as number", s)
	}
	return time.Duration(hours) * time.Hour, nil
}

// Call implements the MCP tool interface
func (t *CleanupStorageTool) Call(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		TTL string `json:"ttl"`
	}
	if err := parseArguments(request, &args); err != nil {
		t.logger.ErrorContext(ctx, "failed to parse cleanup arguments",
			"error", err,
			"operation", "cleanup_storage",
		)
		return nil, err
	}

	ttl, err := parseTTL(args.TTL)
	if err != nil {
		t.logger.ErrorContext(ctx, "invalid TTL format",
			"error", err,
			"ttl_input", args.TTL,
			"operation", "cleanup_storage",
		)
		return errorResult("%v", err), nil
	}

	before, err := t.storageManager.GetStorageStats()
	if err != nil {
		t.logger.ErrorContext(ctx, "failed to get storage stats before cleanup",
			"error", err,
			"operation", "cleanup_storage",
		)
		return errorResult("getting storage stats: %v", err), nil
	}

	removed, err := t.storageManager.Cleanup(ttl)
	if err != nil {
		t.logger.ErrorContext(ctx, "cleanup operation failed",
			"error", err,
			"ttl", ttl,
			"operation", "cleanup_storage",
		)
		return errorResult("during cleanup: %v", err), nil
	}

	after, _ := t.storageManager.GetStorageStats()

	ttlDisplay := "default"
	if ttl > 0 {
		ttlDisplay = ttl.String()
	}

	t.logger.InfoContext(ctx, "storage cleanup completed via tool",
		"ttl", ttlDisplay,
		"removed", removed,
		"threads_before", before[storage.RecordKindThread],
		"threads_after", after[storage.RecordKindThread],
		"messages_before", before[storage.RecordKindMessage],
		"messages_after", after[storage.RecordKindMessage],
	)

	return textResult(fmt.Sprintf(`Storage cleanup completed.

TTL used: %s
Records removed: %d

Storage statistics:
- Threads before: %d, after: %d
- Messages before: %d, after: %d`,
		ttlDisplay, removed,
		before[storage.RecordKindThread], after[storage.RecordKindThread],
		before[storage.RecordKindMessage], after[storage.RecordKindMessage])), nil
}

// StartCleanupRoutine periodically removes records older than ttl until ctx is done
func StartCleanupRoutine(ctx context.Context, storageManager *storage.StorageManager, interval, ttl time.Duration, logger *slog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := storageManager.Cleanup(ttl)
				if err != nil {
					logger.ErrorContext(ctx, "periodic storage cleanup failed", "error", err)
					continue
				}
				logger.InfoContext(ctx, "periodic storage cleanup completed",
					"removed", removed,
					"interval", interval,
					"ttl", ttl,
				)
			}
		}
	}()
}
