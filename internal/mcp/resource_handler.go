package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kfreiman/piigate/internal/messaging"
	"github.com/kfreiman/piigate/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ThreadResourceHandler handles thread:// resource requests
type ThreadResourceHandler struct {
	service *messaging.Service
	logger  *slog.Logger
}

// NewThreadResourceHandler creates a new thread resource handler
func NewThreadResourceHandler(service *messaging.Service) *ThreadResourceHandler {
	return &ThreadResourceHandler{
		service: service,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger for the handler
func (h *ThreadResourceHandler) WithLogger(logger *slog.Logger) *ThreadResourceHandler {
	h.logger = logger
	return h
}

// ReadResource renders the redacted transcript of a thread
func (h *ThreadResourceHandler) ReadResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI

	kind, id, err := storage.ParseURI(uri)
	if err != nil || kind != storage.RecordKindThread {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	thread, err := h.service.GetThread(ctx, id)
	if err != nil {
		if !messaging.IsNotFound(err) {
			h.logger.ErrorContext(ctx, "failed to read thread",
				"error", err,
				"thread_id", id,
			)
		}
		return nil, mcp.ResourceNotFoundError(uri)
	}

	msgs, err := h.service.History(ctx, id, messaging.HistoryOptions{Redact: true})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read thread history",
			"error", err,
			"thread_id", id,
		)
		return nil, mcp.ResourceNotFoundError(uri)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     RenderTranscript(thread, msgs),
		}},
	}, nil
}

// RenderTranscript formats a thread and its messages as markdown
func RenderTranscript(thread messaging.Thread, msgs []messaging.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Thread with %s", thread.RecruiterName)
	if thread.RecruiterCompany != "" {
		fmt.Fprintf(&b, " (%s)", thread.RecruiterCompany)
	}
	b.WriteString("\n\n")

	if len(msgs) == 0 {
		b.WriteString("No messages yet.\n")
		return b.String()
	}
	for _, m := range msgs {
		fmt.Fprintf(&b, "**%s** (%s, %s)\n\n%s\n\n",
			m.SenderName, m.SenderType, m.Timestamp.Format("2006-01-02 15:04"), m.Content)
	}
	return b.String()
}
