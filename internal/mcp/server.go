package mcp

import (
	"log/slog"
	"net/http"

	"github.com/kfreiman/piigate/internal/messaging"
	"github.com/kfreiman/piigate/internal/scan"
	"github.com/kfreiman/piigate/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "piigate"
	serverVersion = "1.0.0"
)

// Deps holds the collaborators exposed through MCP
type Deps struct {
	Service *messaging.Service
	Scanner *scan.Scanner
	// ScanPaths lets scan_document read files through Scanner; otherwise it
	// only accepts inline text
	ScanPaths bool
	// StorageManager is nil with the in-memory store; cleanup_storage is
	// only registered when it is set
	StorageManager *storage.StorageManager
	Logger         *slog.Logger
}

// Server encapsulates the MCP server with all its dependencies
type Server struct {
	mcpServer      *mcp.Server
	service        *messaging.Service
	scanner        *scan.Scanner
	scanPaths      bool
	storageManager *storage.StorageManager
	logger         *slog.Logger
}

// NewServer creates an MCP server with every tool and resource registered
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service:        deps.Service,
		scanner:        deps.Scanner,
		scanPaths:      deps.ScanPaths,
		storageManager: deps.StorageManager,
		logger:         logger,
	}

	impl := &mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}
	s.mcpServer = mcp.NewServer(impl, &mcp.ServerOptions{
		Instructions: ServerInstructions,
	})

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// registerTools registers all tool handlers
func (s *Server) registerTools() {
	classifyTool := NewClassifyTool(s.service).WithLogger(s.logger)
	s.mcpServer.AddTool(ToolDefinitions["classify_message"], classifyTool.Call)

	redactTool := NewRedactTool(s.service)
	s.mcpServer.AddTool(ToolDefinitions["redact_text"], redactTool.Call)

	if s.scanner != nil {
		scanTool := NewScanDocumentTool(s.scanner).WithLogger(s.logger).WithPaths(s.scanPaths)
		s.mcpServer.AddTool(ToolDefinitions["scan_document"], scanTool.Call)
	}

	threadTools := NewThreadTools(s.service).WithLogger(s.logger)
	s.mcpServer.AddTool(ToolDefinitions["send_message"], threadTools.SendMessage)
	s.mcpServer.AddTool(ToolDefinitions["thread_history"], threadTools.ThreadHistory)
	s.mcpServer.AddTool(ToolDefinitions["list_threads"], threadTools.ListThreads)
	s.mcpServer.AddTool(ToolDefinitions["search_messages"], threadTools.SearchMessages)

	if s.storageManager != nil {
		cleanupTool := NewCleanupStorageTool(s.storageManager).WithLogger(s.logger)
		s.mcpServer.AddTool(ToolDefinitions["cleanup_storage"], cleanupTool.Call)
	}
}

// registerResources registers all resource handlers
func (s *Server) registerResources() {
	threadHandler := NewThreadResourceHandler(s.service).WithLogger(s.logger)
	for _, template := range ResourceTemplateDefinitions {
		s.mcpServer.AddResourceTemplate(template, threadHandler.ReadResource)
	}
}

// registerPrompts registers all prompt handlers
func (s *Server) registerPrompts() {
	composeReply := NewComposeReplyPrompt(s.service).WithLogger(s.logger)
	for _, promptDef := range PromptDefinitions {
		s.mcpServer.AddPrompt(promptDef, composeReply.Handle)
	}
}

// MCPServer returns the underlying SDK server
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// Handler returns the streamable HTTP transport handler
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		JSONResponse: true,
	})
}
