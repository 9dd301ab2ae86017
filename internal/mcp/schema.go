package mcp

import "github.com/modelcontextprotocol/go-sdk/mcp"

// ServerInstructions contains the MCP server instructions for clients
const ServerInstructions = `piigate - PII gate for candidate/recruiter messaging

This server checks candidate messages for personal information before they are
sent, masks sensitive substrings for display, and scans resumes for PII.

Detection is a heuristic advisory check, not a security boundary.

## Transport

This server uses streamable HTTP transport only. Connect via:
- POST /mcp  - Streamable HTTP transport

## Resources

- thread://{id}: Redacted transcript of a message thread

## Tools

### classify_message
Check a draft message for PII. Returns {"has_pii", "category", "message"}.
Categories are checked in order and the first match wins:
SSN, DOB, ID, Credit Card, Phone, Address, Email, Context.
Parameters:
- text: Message text

### redact_text
Mask SSNs, 9-digit IDs, emails and 16-digit card numbers for display.
Parameters:
- text: Text to redact

### scan_document
Scan a resume or other document for PII line by line.
Parameters (one of):
- path: Path of a .txt, .md, .pdf or .html file under the server's scan root
  (only when a scan root is configured)
- text: Raw document text

### send_message
Send a message in a thread. Candidate messages containing PII are rejected and
not stored.
Parameters:
- thread_id: Thread ID
- content: Message text
- sender_type: "candidate" (default) or "recruiter"
- sender_id, sender_name: Optional sender details

### thread_history
Messages of a thread, oldest first, redacted unless redact is false.
Parameters:
- thread_id: Thread ID
- redact: Optional, default true

### list_threads
All threads, most recently active first.

### search_messages
Full-text search over redacted message history.
Parameters:
- query: Search terms
- limit: Optional, default 20

### cleanup_storage
Remove stored records older than the TTL (file storage only).
Parameters:
- ttl: Time to live (e.g., "720h" or hours as number)
`

// ToolDefinitions contains the MCP tool definitions
var ToolDefinitions = map[string]*mcp.Tool{
	"classify_message": {
		Name:        "classify_message",
		Description: "Check a draft message for personal information. Returns the first matching PII category and a user-facing explanation, or a clean verdict.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Message text to check",
				},
			},
			"required": []string{"text"},
		},
	},
	"redact_text": {
		Name:        "redact_text",
		Description: "Mask SSNs, 9-digit ID numbers, email addresses and 16-digit card numbers with fixed placeholder tokens.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text to redact",
				},
			},
			"required": []string{"text"},
		},
	},
	"scan_document": {
		Name:        "scan_document",
		Description: "Scan a resume or other document for PII line by line. Returns findings with redacted excerpts.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path of a .txt, .md, .pdf or .html document under the server's scan root",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Raw document text, used when path is empty",
				},
			},
			"required": []string{},
		},
	},
	"send_message": {
		Name:        "send_message",
		Description: "Send a message in a thread. Candidate messages are checked for PII first and rejected without being stored when PII is found.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"thread_id": map[string]interface{}{
					"type":        "string",
					"description": "Thread ID",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Message text",
				},
				"sender_type": map[string]interface{}{
					"type":        "string",
					"description": "Who is sending the message",
					"enum":        []string{"candidate", "recruiter"},
					"default":     "candidate",
				},
				"sender_id": map[string]interface{}{
					"type":        "string",
					"description": "Optional sender ID",
				},
				"sender_name": map[string]interface{}{
					"type":        "string",
					"description": "Optional sender display name",
				},
			},
			"required": []string{"thread_id", "content"},
		},
	},
	"thread_history": {
		Name:        "thread_history",
		Description: "Return the messages of a thread, oldest first. Content is redacted unless redact is false.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"thread_id": map[string]interface{}{
					"type":        "string",
					"description": "Thread ID",
				},
				"redact": map[string]interface{}{
					"type":        "boolean",
					"description": "Mask sensitive substrings in message content",
					"default":     true,
				},
			},
			"required": []string{"thread_id"},
		},
	},
	"list_threads": {
		Name:        "list_threads",
		Description: "List all message threads, most recently active first, with redacted previews.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
			"required":   []string{},
		},
	},
	"search_messages": {
		Name:        "search_messages",
		Description: "Full-text search over message history. Only redacted text is indexed and returned.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search terms",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (default: 20)",
					"minimum":     1,
					"maximum":     100,
					"default":     20,
				},
			},
			"required": []string{"query"},
		},
	},
	"cleanup_storage": {
		Name:        "cleanup_storage",
		Description: "Remove stored threads and messages older than the specified TTL. Only available with file storage.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"ttl": map[string]interface{}{
					"type":        "string",
					"description": "Time to live (e.g., '720h' or hours as number). Uses default TTL if not specified.",
				},
			},
			"required": []string{},
		},
	},
}

// ResourceTemplateDefinitions contains the MCP resource template definitions
var ResourceTemplateDefinitions = []*mcp.ResourceTemplate{
	{
		URITemplate: "thread://{id}",
		Name:        "Message Thread",
		Description: "Redacted transcript of a message thread",
		MIMEType:    "text/markdown",
	},
}

// PromptDefinitions contains the MCP prompt definitions
var PromptDefinitions = []*mcp.Prompt{
	{
		Name:        "compose_reply",
		Description: "Draft a reply to a recruiter thread that will pass the PII check",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "thread_uri",
				Title:       "Thread URI",
				Description: "URI of the thread to reply to (thread://[id])",
				Required:    true,
			},
			{
				Name:        "draft",
				Title:       "Draft",
				Description: "Optional draft to revise; it is classified and the verdict included",
				Required:    false,
			},
		},
	},
}
