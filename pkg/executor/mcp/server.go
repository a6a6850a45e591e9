package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/entrhq/scout/pkg/agent"
)

const serverName = "scout"

// Tool describes the contract for MCP tool implementations.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Server wires the MCP runtime to a Scout agent.
type Server struct {
	agent     agent.Agent
	driver    *driver
	tools     map[string]Tool
	mcpServer *mcpserver.MCPServer
	logger    *log.Logger
}

// ServerOption is a function that configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server's logger. Stdout carries the MCP protocol, so
// the logger must write somewhere else (a file, or stderr at a pinch).
func WithLogger(logger *log.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer constructs the Scout MCP server and registers all tools.
func NewServer(ag agent.Agent, version string, opts ...ServerOption) *Server {
	mcpSrv := mcpserver.NewMCPServer(
		serverName,
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
		mcpserver.WithRecovery(),
	)

	server := &Server{
		agent:     ag,
		driver:    newDriver(ag),
		tools:     make(map[string]Tool),
		mcpServer: mcpSrv,
		logger:    log.New(io.Discard, "", 0),
	}

	for _, opt := range opts {
		opt(server)
	}

	server.registerAllTools()
	return server
}

// Start launches the agent and serves MCP over stdio until the context is
// cancelled or stdin closes.
func (s *Server) Start(ctx context.Context) error {
	if err := s.agent.Start(ctx); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}
	s.driver.start(s.logger)
	defer s.driver.stop()

	s.logger.Printf("serving MCP over stdio")
	stdio := mcpserver.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// ExecuteTool executes a registered tool directly, bypassing the protocol
// layer. Used by tests.
func (s *Server) ExecuteTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	tool, exists := s.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool.Execute(ctx, args)
}

func (s *Server) registerAllTools() {
	// Session loading
	s.registerTool(&LoadURLTool{driver: s.driver})
	s.registerTool(&LoadDocumentTool{driver: s.driver})

	// Conversation
	s.registerTool(&AskTool{driver: s.driver})

	// Session inspection (no model calls)
	s.registerTool(&ListLinksTool{agent: s.agent})
	s.registerTool(&CurrentSourceTool{agent: s.agent})

	// Session lifecycle
	s.registerTool(&ResetTool{driver: s.driver})
}

func (s *Server) registerTool(tool Tool) {
	s.tools[tool.Name()] = tool

	schema, err := json.Marshal(tool.InputSchema())
	if err != nil {
		schema = json.RawMessage(`{"type":"object"}`)
	}

	mcpTool := mcp.NewToolWithRawSchema(tool.Name(), tool.Description(), schema)
	s.mcpServer.AddTool(mcpTool, s.wrapTool(tool))
}

func (s *Server) wrapTool(tool Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}

		s.logger.Printf("tool call: %s", tool.Name())
		result, err := tool.Execute(ctx, args)
		if err != nil {
			s.logger.Printf("tool %s failed: %v", tool.Name(), err)
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("tool %s failed: %v", tool.Name(), err))},
				IsError: true,
			}, nil
		}

		payload := marshalToolPayload(tool.Name(), result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(payload))},
			IsError: false,
		}, nil
	}
}

// marshalToolPayload renders a tool result as JSON, degrading to an error
// envelope rather than failing the protocol call.
func marshalToolPayload(toolName string, result interface{}) []byte {
	payload, marshalErr := json.Marshal(result)
	if marshalErr == nil {
		return payload
	}

	fallback := map[string]interface{}{
		"success": false,
		"error":   fmt.Sprintf("tool %s returned non-serializable payload: %v", toolName, marshalErr),
	}
	payload, fallbackErr := json.Marshal(fallback)
	if fallbackErr == nil {
		return payload
	}
	return []byte(`{"success":false,"error":"payload serialization failed"}`)
}
