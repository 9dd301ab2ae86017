package mcp

import (
	"context"
	"log/slog"

	"github.com/kfreiman/piigate/internal/messaging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ClassifyTool handles the classify_message tool
type ClassifyTool struct {
	service *messaging.Service
	logger  *slog.Logger
}

// NewClassifyTool creates a new classify tool
func NewClassifyTool(service *messaging.Service) *ClassifyTool {
	return &ClassifyTool{
		service: service,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger for the tool
func (t *ClassifyTool) WithLogger(logger *slog.Logger) *ClassifyTool {
	t.logger = logger
	return t
}

// Call implements the MCP tool interface
func (t *ClassifyTool) Call(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Text string `json:"text"`
	}
	if err := parseArguments(request, &args); err != nil {
		t.logger.ErrorContext(ctx, "failed to parse classify arguments",
			"error", err,
			"operation", "classify_message",
		)
		return nil, err
	}

	verdict := t.service.Check(args.Text)

	t.logger.DebugContext(ctx, "message classified via tool",
		"has_pii", verdict.HasPII,
		"category", verdict.Category.String(),
		"length", len(args.Text),
	)

	return jsonResult(verdict)
}

// RedactTool handles the redact_text tool
type RedactTool struct {
	service *messaging.Service
}

// NewRedactTool creates a new redact tool
func NewRedactTool(service *messaging.Service) *RedactTool {
	return &RedactTool{service: service}
}

// Call implements the MCP tool interface
func (t *RedactTool) Call(_ context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Text string `json:"text"`
	}
	if err := parseArguments(request, &args); err != nil {
		return nil, err
	}
	return textResult(t.service.Redact(args.Text)), nil
}
