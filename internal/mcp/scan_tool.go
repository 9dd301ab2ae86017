package mcp

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kfreiman/piigate/internal/scan"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ScanDocumentTool handles document PII scanning
type ScanDocumentTool struct {
	scanner      *scan.Scanner
	pathsEnabled bool
	logger       *slog.Logger
}

// NewScanDocumentTool creates a new scan document tool
func NewScanDocumentTool(scanner *scan.Scanner) *ScanDocumentTool {
	return &ScanDocumentTool{
		scanner: scanner,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger for the tool
func (t *ScanDocumentTool) WithLogger(logger *slog.Logger) *ScanDocumentTool {
	t.logger = logger
	return t
}

// WithPaths allows or forbids scanning files by path
func (t *ScanDocumentTool) WithPaths(enabled bool) *ScanDocumentTool {
	t.pathsEnabled = enabled
	return t
}

// Call implements the MCP tool interface
func (t *ScanDocumentTool) Call(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Path string `json:"path"`
		Text string `json:"text"`
	}
	if err := parseArguments(request, &args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(args.Path) == "" {
		if args.Text == "" {
			return errorResult("either 'path' or 'text' is required"), nil
		}
		return jsonResult(t.scanner.ScanText(ctx, "text", args.Text))
	}

	if !t.pathsEnabled {
		return errorResult("document paths are disabled on this server; pass 'text' instead"), nil
	}

	report, err := t.scanner.ScanFile(ctx, args.Path)
	if err != nil {
		t.logger.ErrorContext(ctx, "document scan failed",
			"error", err,
			"path", args.Path,
			"operation", "scan_document",
		)
		return errorResult("%v", err), nil
	}
	return jsonResult(report)
}
