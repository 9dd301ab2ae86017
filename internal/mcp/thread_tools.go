package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kfreiman/piigate/internal/messaging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ThreadTools handles the messaging tools backed by the message service
type ThreadTools struct {
	service *messaging.Service
	logger  *slog.Logger
}

// NewThreadTools creates the messaging tools
func NewThreadTools(service *messaging.Service) *ThreadTools {
	return &ThreadTools{
		service: service,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger for the tools
func (t *ThreadTools) WithLogger(logger *slog.Logger) *ThreadTools {
	t.logger = logger
	return t
}

// SendMessage implements the send_message tool
func (t *ThreadTools) SendMessage(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		ThreadID   string `json:"thread_id"`
		Content    string `json:"content"`
		SenderType string `json:"sender_type"`
		SenderID   string `json:"sender_id"`
		SenderName string `json:"sender_name"`
	}
	if err := parseArguments(request, &args); err != nil {
		return nil, err
	}

	msg, err := t.service.Send(ctx, messaging.SendRequest{
		ThreadID:   args.ThreadID,
		SenderID:   args.SenderID,
		SenderName: args.SenderName,
		SenderType: messaging.SenderType(args.SenderType),
		Content:    args.Content,
	})
	if err != nil {
		if verdict, blocked := messaging.IsBlocked(err); blocked {
			return errorResult("message not sent (%s): %s", verdict.Category, verdict.Message), nil
		}
		return t.failure(ctx, "send_message", err), nil
	}

	return textResult(fmt.Sprintf(`Message sent.

Thread: %s
Message ID: %s
Sent at: %s`, msg.ThreadID, msg.ID, msg.Timestamp.Format("2006-01-02 15:04:05 MST"))), nil
}

// ThreadHistory implements the thread_history tool
func (t *ThreadTools) ThreadHistory(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		ThreadID string `json:"thread_id"`
		Redact   *bool  `json:"redact"`
	}
	if err := parseArguments(request, &args); err != nil {
		return nil, err
	}
	if args.ThreadID == "" {
		return errorResult("'thread_id' parameter is required"), nil
	}

	redact := args.Redact == nil || *args.Redact
	msgs, err := t.service.History(ctx, args.ThreadID, messaging.HistoryOptions{Redact: redact})
	if err != nil {
		return t.failure(ctx, "thread_history", err), nil
	}
	return jsonResult(msgs)
}

// ListThreads implements the list_threads tool
func (t *ThreadTools) ListThreads(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threads, err := t.service.ListThreads(ctx)
	if err != nil {
		return t.failure(ctx, "list_threads", err), nil
	}
	if len(threads) == 0 {
		return textResult("No threads found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Threads (%d):\n\n", len(threads))
	for _, th := range threads {
		fmt.Fprintf(&b, "- thread://%s %s", th.ID, th.RecruiterName)
		if th.RecruiterCompany != "" {
			fmt.Fprintf(&b, " (%s)", th.RecruiterCompany)
		}
		if th.UnreadCount > 0 {
			fmt.Fprintf(&b, " [%d unread]", th.UnreadCount)
		}
		if th.LastMessage != "" {
			fmt.Fprintf(&b, ": %s", th.LastMessage)
		}
		b.WriteString("\n")
	}
	return textResult(b.String()), nil
}

// SearchMessages implements the search_messages tool
func (t *ThreadTools) SearchMessages(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := parseArguments(request, &args); err != nil {
		return nil, err
	}

	msgs, err := t.service.Search(ctx, args.Query, args.Limit)
	if err != nil {
		return t.failure(ctx, "search_messages", err), nil
	}
	return jsonResult(msgs)
}

// failure logs err and converts it to a tool error result
func (t *ThreadTools) failure(ctx context.Context, operation string, err error) *mcp.CallToolResult {
	switch {
	case messaging.IsValidation(err), messaging.IsNotFound(err), errors.Is(err, messaging.ErrSearchDisabled):
		t.logger.DebugContext(ctx, "tool request rejected",
			"error", err,
			"operation", operation,
		)
	default:
		t.logger.ErrorContext(ctx, "tool operation failed",
			"error", err,
			"operation", operation,
		)
	}
	return errorResult("%v", err)
}
