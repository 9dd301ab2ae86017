package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

// ErrEmptyQuery is returned when a search query has no terms
var ErrEmptyQuery = errors.New("search query must not be empty")

// defaultLimit caps searches that do not set a limit
const defaultLimit = 20

// Document is one message as seen by the index. Text must already be redacted.
type Document struct {
	ID       string
	ThreadID string
	Text     string
}

// Hit is a single search result
type Hit struct {
	ID       string  `json:"id"`
	ThreadID string  `json:"thread_id"`
	Score    float64 `json:"score"`
}

// MessageIndex is an in-memory full-text index over message history
type MessageIndex struct {
	index  bleve.Index
	logger *slog.Logger
}

// NewMessageIndex creates an empty in-memory index
func NewMessageIndex() (*MessageIndex, error) {
	idx, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create memory index: %w", err)
	}
	return &MessageIndex{
		index:  idx,
		logger: slog.Default(),
	}, nil
}

// WithLogger sets the logger for the index
func (m *MessageIndex) WithLogger(logger *slog.Logger) *MessageIndex {
	m.logger = logger
	return m
}

func newIndexMapping() mapping.IndexMapping {
	threadField := bleve.NewTextFieldMapping()
	threadField.Analyzer = keyword.Name

	textField := bleve.NewTextFieldMapping()
	textField.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("thread_id", threadField)
	doc.AddFieldMappingsAt("text", textField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = doc
	return indexMapping
}

// Index adds or replaces a document
func (m *MessageIndex) Index(ctx context.Context, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id must not be empty")
	}
	fields := map[string]interface{}{
		"thread_id": doc.ThreadID,
		"text":      doc.Text,
	}
	if err := m.index.Index(doc.ID, fields); err != nil {
		return fmt.Errorf("failed to index message %s: %w", doc.ID, err)
	}
	m.logger.DebugContext(ctx, "message indexed",
		"id", doc.ID,
		"thread_id", doc.ThreadID,
		"length", len(doc.Text),
	)
	return nil
}

// Delete removes a document from the index
func (m *MessageIndex) Delete(id string) error {
	return m.index.Delete(id)
}

// Search runs a match query against message text, best hits first
func (m *MessageIndex) Search(ctx context.Context, q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	matchQuery := bleve.NewMatchQuery(q)
	matchQuery.SetField("text")

	req := bleve.NewSearchRequestOptions(matchQuery, limit, 0, false)
	req.Fields = []string{"thread_id"}

	result, err := m.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		threadID, _ := h.Fields["thread_id"].(string)
		hits = append(hits, Hit{ID: h.ID, ThreadID: threadID, Score: h.Score})
	}

	m.logger.DebugContext(ctx, "message search complete",
		"terms", len(strings.Fields(q)),
		"hits", len(hits),
		"total", result.Total,
	)

	return hits, nil
}

// Count returns the number of indexed documents
func (m *MessageIndex) Count() (uint64, error) {
	return m.index.DocCount()
}

// Close releases the index
func (m *MessageIndex) Close() error {
	return m.index.Close()
}
