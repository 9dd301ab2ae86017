package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// parseArguments decodes tool arguments; absent arguments decode to the zero value
func parseArguments(request *mcp.CallToolRequest, v interface{}) error {
	if request.Params == nil || len(request.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(request.Params.Arguments, v); err != nil {
		return fmt.Errorf("invalid input format: %w", err)
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errorResult reports a tool-level failure to the client
func errorResult(format string, args ...interface{}) *mcp.CallToolResult {
	result := textResult("Error: " + fmt.Sprintf(format, args...))
	result.IsError = true
	return result
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return textResult(string(data)), nil
}
