package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/draftkit/sleeper-mcp/logger"
	"github.com/draftkit/sleeper-mcp/mcp/transport"
	"github.com/draftkit/sleeper-mcp/mcp/types"
	"github.com/draftkit/sleeper-mcp/tools"
)

// Server answers MCP requests over a transport, dispatching tools/call to
// the tool registry. One Server serves one host connection.
type Server struct {
	name      string
	version   string
	transport transport.Transport
	registry  *tools.Registry
	logger    logger.Logger
}

func NewServer(name, version string, t transport.Transport, registry *tools.Registry, log logger.Logger) *Server {
	return &Server{
		name:      name,
		version:   version,
		transport: t,
		registry:  registry,
		logger:    log,
	}
}

// Serve starts the transport and blocks until the context is cancelled or
// the transport closes.
func (s *Server) Serve(ctx context.Context) error {
	done := make(chan struct{})

	s.transport.SetMessageHandler(func(message *types.JSONRPCMessage) {
		s.handleMessage(ctx, message)
	})
	s.transport.SetErrorHandler(func(err error) {
		s.logger.Error("transport error: %v", err)
	})
	s.transport.SetCloseHandler(func() {
		close(done)
	})

	if err := s.transport.Start(ctx); err != nil {
		return err
	}
	s.logger.Info("%s %s listening", s.name, s.version)

	select {
	case <-ctx.Done():
		return s.transport.Close()
	case <-done:
		return nil
	}
}

func (s *Server) handleMessage(ctx context.Context, message *types.JSONRPCMessage) {
	if message.IsNotification() {
		// notifications/initialized and friends need no reply
		s.logger.Debug("notification: %s", message.Method)
		return
	}
	if !message.IsRequest() {
		return
	}

	switch message.Method {
	case "initialize":
		s.handleInitialize(ctx, message)
	case "ping":
		s.respondResult(ctx, message.ID, struct{}{})
	case "tools/list":
		s.handleListTools(ctx, message)
	case "tools/call":
		s.handleCallTool(ctx, message)
	default:
		s.respondError(ctx, message.ID, types.CodeMethodNotFound,
			fmt.Sprintf("method not found: %s", message.Method))
	}
}

func (s *Server) handleInitialize(ctx context.Context, message *types.JSONRPCMessage) {
	var params types.InitializeParams
	if len(message.Params) > 0 {
		if err := json.Unmarshal(message.Params, &params); err != nil {
			s.respondError(ctx, message.ID, types.CodeInvalidParams, "invalid initialize params")
			return
		}
	}

	s.logger.Info("initialize from %s %s", params.ClientInfo.Name, params.ClientInfo.Version)
	s.respondResult(ctx, message.ID, types.InitializeResult{
		ProtocolVersion: types.ProtocolVersion,
		Capabilities: types.ServerCapabilities{
			Tools: &types.ToolsCapability{},
		},
		ServerInfo: types.Implementation{
			Name:    s.name,
			Version: s.version,
		},
	})
}

func (s *Server) handleListTools(ctx context.Context, message *types.JSONRPCMessage) {
	registered := s.registry.List()
	list := types.ListToolsResult{Tools: make([]types.Tool, 0, len(registered))}
	for _, t := range registered {
		list.Tools = append(list.Tools, types.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	s.respondResult(ctx, message.ID, list)
}

func (s *Server) handleCallTool(ctx context.Context, message *types.JSONRPCMessage) {
	var params types.CallToolParams
	if err := json.Unmarshal(message.Params, &params); err != nil {
		s.respondError(ctx, message.ID, types.CodeInvalidParams, "invalid tools/call params")
		return
	}
	if params.Name == "" {
		s.respondError(ctx, message.ID, types.CodeInvalidParams, "tool name is required")
		return
	}

	text, err := s.registry.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		// tool failures are reported in-band so the host can show them
		s.logger.Warn("tool %s failed: %v", params.Name, err)
		s.respondResult(ctx, message.ID, types.CallToolResult{
			Content: []types.Content{{Type: types.ContentTypeText, Text: err.Error()}},
			IsError: true,
		})
		return
	}

	s.respondResult(ctx, message.ID, types.CallToolResult{
		Content: []types.Content{{Type: types.ContentTypeText, Text: text}},
	})
}

func (s *Server) respondResult(ctx context.Context, id interface{}, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		s.respondError(ctx, id, types.CodeInternalError, "marshaling result")
		return
	}
	s.send(ctx, &types.JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
		Result:  data,
	})
}

func (s *Server) respondError(ctx context.Context, id interface{}, code int, msg string) {
	s.send(ctx, &types.JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &types.JSONRPCError{Code: code, Message: msg},
	})
}

func (s *Server) send(ctx context.Context, message *types.JSONRPCMessage) {
	if err := s.transport.Send(ctx, message); err != nil {
		s.logger.Error("sending response: %v", err)
	}
}
