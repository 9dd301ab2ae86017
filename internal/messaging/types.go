package messaging

import (
	"time"
)

// SenderType identifies which side of a thread wrote a message
type SenderType string

const (
	SenderCandidate SenderType = "candidate"
	SenderRecruiter SenderType = "recruiter"
)

// Valid reports whether the sender type is known
func (s SenderType) Valid() bool {
	return s == SenderCandidate || s == SenderRecruiter
}

// Thread is a conversation between the candidate and one recruiter
type Thread struct {
	ID               string    `json:"id"`
	RecruiterID      string    `json:"recruiter_id"`
	RecruiterName    string    `json:"recruiter_name"`
	RecruiterCompany string    `json:"recruiter_company"`
	LastMessage      string    `json:"last_message"`
	LastMessageTime  time.Time `json:"last_message_time"`
	UnreadCount      int       `json:"unread_count"`
}

// Message is a single stored message
type Message struct {
	ID         string     `json:"id"`
	ThreadID   string     `json:"thread_id"`
	SenderID   string     `json:"sender_id"`
	SenderName string     `json:"sender_name"`
	SenderType SenderType `json:"sender_type"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	IsRead     bool       `json:"is_read"`
}

// SendRequest carries a message to be gated and stored
type SendRequest struct {
	ThreadID   string     `json:"thread_id"`
	SenderID   string     `json:"sender_id"`
	SenderName string     `json:"sender_name"`
	SenderType SenderType `json:"sender_type"`
	Content    string     `json:"content"`
}

// HistoryOptions controls how thread history is rendered
type HistoryOptions struct {
	// Redact masks sensitive substrings in every returned message
	Redact bool
}
