package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kfreiman/piigate/internal/messaging"
	"github.com/kfreiman/piigate/internal/pii"
	"github.com/kfreiman/piigate/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ComposeReplyPrompt handles the compose_reply prompt
type ComposeReplyPrompt struct {
	service *messaging.Service
	logger  *slog.Logger
}

// NewComposeReplyPrompt creates a new compose reply prompt
func NewComposeReplyPrompt(service *messaging.Service) *ComposeReplyPrompt {
	return &ComposeReplyPrompt{
		service: service,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger for the prompt
func (p *ComposeReplyPrompt) WithLogger(logger *slog.Logger) *ComposeReplyPrompt {
	p.logger = logger
	return p
}

// Handle implements the prompt handler interface
func (p *ComposeReplyPrompt) Handle(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments

	threadURI := args["thread_uri"]
	if threadURI == "" {
		return nil, fmt.Errorf("thread_uri parameter is required")
	}

	kind, id, err := storage.ParseURI(threadURI)
	if err != nil || kind != storage.RecordKindThread {
		return nil, fmt.Errorf("invalid thread URI: must be thread:// format")
	}

	thread, err := p.service.GetThread(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("thread not found: %s", threadURI)
	}
	msgs, err := p.service.History(ctx, id, messaging.HistoryOptions{Redact: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read thread history: %w", err)
	}

	var verdict *pii.Verdict
	if draft := args["draft"]; draft != "" {
		v := p.service.Check(draft)
		verdict = &v
	}

	p.logger.DebugContext(ctx, "compose_reply prompt built",
		"thread_id", id,
		"messages", len(msgs),
		"has_draft", verdict != nil,
	)

	return &mcp.GetPromptResult{
		Description: "Draft a PII-free reply",
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: BuildComposeReplyPrompt(RenderTranscript(thread, msgs), verdict),
				},
			},
		},
	}, nil
}

// BuildComposeReplyPrompt creates the reply drafting prompt. The transcript
// must already be redacted.
func BuildComposeReplyPrompt(transcript string, verdict *pii.Verdict) string {
	labels := make([]string, 0, len(pii.Categories()))
	for _, c := range pii.Categories() {
		labels = append(labels, c.String())
	}

	var b strings.Builder
	b.WriteString(`You are helping a job candidate reply to a recruiter on a cleared-jobs messaging platform.

## Conversation

`)
	b.WriteString(transcript)
	fmt.Fprintf(&b, `
## Rules

Every candidate message is checked before it is sent and rejected if it contains any of: %s.

- Do not include Social Security Numbers, dates of birth, passport or license numbers, or card numbers
- Do not share phone numbers, street addresses, or personal email addresses
- Avoid phrases like "my address" or "here's my number" even without the value
- Offer to continue the conversation through the platform instead
- Redacted markers such as [EMAIL REDACTED] stand for removed values; never guess them
`, strings.Join(labels, ", "))

	if verdict != nil {
		b.WriteString("\n## Current Draft\n\n")
		if verdict.HasPII {
			fmt.Fprintf(&b, "The draft was blocked (%s): %s\nRewrite it so the check passes while keeping its intent.\n", verdict.Category, verdict.Message)
		} else {
			b.WriteString("The draft passes the check. Suggest improvements only if they keep it free of personal information.\n")
		}
	}

	b.WriteString("\n## Response Format\n\nReturn only the reply text, ready to send with the send_message tool.\n")
	return b.String()
}
