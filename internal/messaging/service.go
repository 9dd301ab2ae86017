package messaging

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kfreiman/piigate/internal/pii"
	"github.com/kfreiman/piigate/internal/redaction"
	"github.com/kfreiman/piigate/internal/search"
	"github.com/kfreiman/piigate/internal/storage"
)

// candidateDisplayName is used when a candidate sends without a name
const candidateDisplayName = "You"

// SearchIndex is the full-text index used for message search
type SearchIndex interface {
	Index(ctx context.Context, doc search.Document) error
	Search(ctx context.Context, query string, limit int) ([]search.Hit, error)
}

// Observer receives engine outcomes, typically for metrics
type Observer interface {
	ObserveVerdict(verdict pii.Verdict)
	ObserveBlocked(category pii.Category)
	ObserveRedactions(counts map[string]int)
}

type noopObserver struct{}

func (noopObserver) ObserveVerdict(pii.Verdict)       {}
func (noopObserver) ObserveBlocked(pii.Category)      {}
func (noopObserver) ObserveRedactions(map[string]int) {}

// Service gates candidate messages through the PII classifier and serves
// thread history, optionally redacted for display
type Service struct {
	store      Store
	classifier *pii.Classifier
	redactor   *redaction.PIIRedactor
	index      SearchIndex
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string

	// mu serializes thread read-modify-write cycles
	mu sync.Mutex
}

// NewService creates a messaging service on top of a store
func NewService(store Store) *Service {
	return &Service{
		store:      store,
		classifier: pii.Default,
		redactor:   redaction.DefaultRedactor,
		observer:   noopObserver{},
		logger:     slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// WithLogger sets the logger for the service
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	s.logger = logger
	return s
}

// WithIndex enables message search
func (s *Service) WithIndex(index SearchIndex) *Service {
	s.index = index
	return s
}

// WithObserver sets the observer notified of verdicts and redactions
func (s *Service) WithObserver(observer Observer) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	s.observer = observer
	return s
}

// WithClock overrides the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Check classifies a draft without sending it
func (s *Service) Check(text string) pii.Verdict {
	verdict := s.classifier.Classify(text)
	s.observer.ObserveVerdict(verdict)
	return verdict
}

// Redact returns a display-safe copy of text
func (s *Service) Redact(text string) string {
	s.observer.ObserveRedactions(s.redactor.CountMatches([]byte(text)))
	return s.redactor.RedactString(text)
}

// CreateThread registers a new thread with a recruiter
func (s *Service) CreateThread(ctx context.Context, thread Thread) (Thread, error) {
	if strings.TrimSpace(thread.RecruiterID) == "" {
		return Thread{}, &ValidationError{Field: "recruiter_id", Reason: "required"}
	}

	if thread.ID != "" {
		if err := storage.ValidateID(thread.ID); err != nil {
			return Thread{}, &ValidationError{Field: "id", Value: thread.ID, Reason: "must not contain '..', '/', '\\' or NUL"}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if thread.ID == "" {
		thread.ID = s.newID()
	} else if _, err := s.store.GetThread(ctx, thread.ID); err == nil {
		return Thread{}, &ValidationError{Field: "id", Value: thread.ID, Reason: "thread already exists"}
	} else if !IsNotFound(err) {
		return Thread{}, err
	}
	if thread.LastMessageTime.IsZero() {
		thread.LastMessageTime = s.now()
	}

	if err := s.store.SaveThread(ctx, thread); err != nil {
		return Thread{}, err
	}

	s.logger.InfoContext(ctx, "thread created",
		"thread_id", thread.ID,
		"recruiter_id", thread.RecruiterID,
	)
	return thread, nil
}

// Send stores a message. Candidate messages are classified first and a PII
// verdict rejects them with a BlockedError; nothing is stored in that case.
func (s *Service) Send(ctx context.Context, req SendRequest) (Message, error) {
	if req.ThreadID == "" {
		return Message{}, &ValidationError{Field: "thread_id", Reason: "required"}
	}
	if strings.TrimSpace(req.Content) == "" {
		return Message{}, &ValidationError{Field: "content", Reason: "message must not be empty"}
	}
	if req.SenderType == "" {
		req.SenderType = SenderCandidate
	}
	if !req.SenderType.Valid() {
		return Message{}, &ValidationError{Field: "sender_type", Value: string(req.SenderType), Reason: "must be 'candidate' or 'recruiter'"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	thread, err := s.store.GetThread(ctx, req.ThreadID)
	if err != nil {
		return Message{}, err
	}

	if req.SenderType == SenderCandidate {
		verdict := s.Check(req.Content)
		if verdict.HasPII {
			s.observer.ObserveBlocked(verdict.Category)
			s.logger.WarnContext(ctx, "message blocked",
				"thread_id", thread.ID,
				"category", verdict.Category.String(),
				"length", len(req.Content),
			)
			return Message{}, &BlockedError{Verdict: verdict}
		}
		if req.SenderName == "" {
			req.SenderName = candidateDisplayName
		}
	}

	msg := Message{
		ID:         s.newID(),
		ThreadID:   thread.ID,
		SenderID:   req.SenderID,
		SenderName: req.SenderName,
		SenderType: req.SenderType,
		Content:    req.Content,
		Timestamp:  s.now(),
		IsRead:     req.SenderType == SenderCandidate,
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return Message{}, err
	}

	thread.LastMessage = msg.Content
	thread.LastMessageTime = msg.Timestamp
	if !msg.IsRead {
		thread.UnreadCount++
	}
	if err := s.store.SaveThread(ctx, thread); err != nil {
		// A failed send leaves no stored message behind
		if delErr := s.store.DeleteMessage(ctx, msg.ThreadID, msg.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back message",
				"error", delErr,
				"message_id", msg.ID,
			)
		}
		return Message{}, err
	}

	s.indexMessage(ctx, msg)

	s.logger.InfoContext(ctx, "message sent",
		"thread_id", thread.ID,
		"message_id", msg.ID,
		"sender_type", msg.SenderType,
		"length", len(msg.Content),
	)
	return msg, nil
}

// indexMessage adds the redacted message text to the search index
func (s *Service) indexMessage(ctx context.Context, msg Message) {
	if s.index == nil {
		return
	}
	doc := search.Document{
		ID:       msg.ID,
		ThreadID: msg.ThreadID,
		Text:     s.redactor.RedactString(msg.Content),
	}
	if err := s.index.Index(ctx, doc); err != nil {
		s.logger.ErrorContext(ctx, "failed to index message",
			"error", err,
			"message_id", msg.ID,
		)
	}
}

// History returns the messages of a thread, oldest first
func (s *Service) History(ctx context.Context, threadID string, opts HistoryOptions) ([]Message, error) {
	if _, err := s.store.GetThread(ctx, threadID); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if opts.Redact {
		for i := range msgs {
			msgs[i].Content = s.Redact(msgs[i].Content)
		}
	}
	return msgs, nil
}

// ListThreads returns all threads, most recently active first, with the
// last message preview redacted
func (s *Service) ListThreads(ctx context.Context) ([]Thread, error) {
	threads, err := s.store.ListThreads(ctx)
	if err != nil {
		return nil, err
	}
	for i := range threads {
		threads[i].LastMessage = s.redactor.RedactString(threads[i].LastMessage)
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastMessageTime.After(threads[j].LastMessageTime)
	})
	return threads, nil
}

// GetThread returns a single thread with its preview redacted
func (s *Service) GetThread(ctx context.Context, threadID string) (Thread, error) {
	thread, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		return Thread{}, err
	}
	thread.LastMessage = s.redactor.RedactString(thread.LastMessage)
	return thread, nil
}

// MarkThreadAsRead marks every message in the thread read and resets the
// unread counter
func (s *Service) MarkThreadAsRead(ctx context.Context, threadID string) (Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		return Thread{}, err
	}
	msgs, err := s.store.ListMessages(ctx, threadID)
	if err != nil {
		return Thread{}, err
	}
	for _, msg := range msgs {
		if msg.IsRead {
			continue
		}
		msg.IsRead = true
		if err := s.store.SaveMessage(ctx, msg); err != nil {
			return Thread{}, err
		}
	}

	thread.UnreadCount = 0
	if err := s.store.SaveThread(ctx, thread); err != nil {
		return Thread{}, err
	}
	return thread, nil
}

// Search finds messages matching query and returns them redacted
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Message, error) {
	if s.index == nil {
		return nil, ErrSearchDisabled
	}
	hits, err := s.index.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	msgs := make([]Message, 0, len(hits))
	for _, hit := range hits {
		msg, err := s.store.GetMessage(ctx, hit.ThreadID, hit.ID)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		msg.Content = s.redactor.RedactString(msg.Content)
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Reindex rebuilds the search index from the store and returns the number of
// messages indexed
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, ErrSearchDisabled
	}
	threads, err := s.store.ListThreads(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, thread := range threads {
		msgs, err := s.store.ListMessages(ctx, thread.ID)
		if err != nil {
			return count, err
		}
		for _, msg := range msgs {
			s.indexMessage(ctx, msg)
			count++
		}
	}
	s.logger.InfoContext(ctx, "search index rebuilt", "messages", count)
	return count, nil
}
