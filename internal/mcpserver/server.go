// Package mcpserver exposes an editing session as MCP tools so agents can
// place, move and export annotations.
package mcpserver

import (
	"encoding/json"
	"fmt"
	"log"

	"caption-canvas/internal/app"
	"caption-canvas/internal/export"
	"caption-canvas/internal/version"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for one editing session.
type Server struct {
	mcp     *server.MCPServer
	session *app.Session

	// saver receives export_image output; nil means a DirSaver per call.
	saver export.Saver
}

// Option customizes New.
type Option func(*Server)

// WithSaver routes every export to s instead of the requested directory.
func WithSaver(s export.Saver) Option {
	return func(srv *Server) {
		srv.saver = s
	}
}

// New creates the server and registers its tools.
func New(session *app.Session, opts ...Option) *Server {
	s := &Server{session: session}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		"caption-canvas",
		version.Version,
		server.WithToolCapabilities(true),
	)
	s.registerElementTools()
	s.registerInputTools()
	s.registerExportTools()
	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func numberArg(args map[string]any, key string) (float64, error) {
	switch v := args[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%s is required and must be a number", key)
}
