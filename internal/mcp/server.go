package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adsops/google-ads-mcp-server/internal/metrics"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
	"github.com/adsops/google-ads-mcp-server/internal/version"
)

const ProtocolVersion = "2024-11-05"

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Server handles MCP JSON-RPC requests against a toolbox.
type Server struct {
	toolbox *Toolbox
	name    string
	version string
	log     *logrus.Entry
	metrics *metrics.Metrics
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the server log entry.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records tool calls on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithInfo overrides the name and version reported by initialize.
func WithInfo(name, ver string) Option {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
		if ver != "" {
			s.version = ver
		}
	}
}

// NewServer wires a toolbox into an MCP server.
func NewServer(tb *Toolbox, opts ...Option) *Server {
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := &Server{
		toolbox: tb,
		name:    "google-ads-mcp-server",
		version: version.Get().Version,
		log:     logrus.NewEntry(l),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the metrics the server records on, if any.
func (s *Server) Metrics() *metrics.Metrics { return s.metrics }

// Handle routes a single request. Notifications are processed but produce a
// zero Response; transports must not write it (see IsNotification).
func (s *Server) Handle(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if err := validateJSONRPC(req); err != nil {
		return protocol.Response{JSONRPC: "2.0", ID: normalizeID(req.ID), Error: err}, nil
	}

	if IsNotification(req) {
		s.log.WithField("method", req.Method).Debug("notification")
		return protocol.Response{}, nil
	}

	switch req.Method {
	case "initialize":
		return protocol.Response{JSONRPC: "2.0", ID: normalizeID(req.ID), Result: protocol.InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      protocol.ServerInfo{Name: s.name, Version: s.version},
			Capabilities: map[string]any{
				"tools": map[string]any{},
			},
		}}, nil
	case "ping":
		return protocol.Response{JSONRPC: "2.0", ID: normalizeID(req.ID), Result: map[string]any{}}, nil
	case "tools/list":
		return protocol.Response{JSONRPC: "2.0", ID: normalizeID(req.ID), Result: protocol.ListResult{Tools: s.toolbox.Describe()}}, nil
	case "tools/call":
		var params protocol.CallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return protocol.Response{JSONRPC: "2.0", ID: normalizeID(req.ID), Error: &protocol.ResponseError{Code: CodeInvalidParams, Message: "invalid params"}}, nil
		}
		if params.Name == "" {
			return protocol.Response{JSONRPC: "2.0", ID: normalizeID(req.ID), Error: &protocol.ResponseError{Code: CodeInvalidParams, Message: "tool name required"}}, nil
		}
		result, toolErr := s.call(ctx, params)
		if toolErr != nil {
			return protocol.Response{JSONRPC: "2.0", ID: normalizeID(req.ID), Error: toolErr}, nil
		}
		return protocol.Response{JSONRPC: "2.0", ID: normalizeID(req.ID), Result: result}, nil
	default:
		return protocol.Response{JSONRPC: "2.0", ID: normalizeID(req.ID), Error: &protocol.ResponseError{Code: CodeMethodNotFound, Message: "method not found"}}, nil
	}
}

func (s *Server) call(ctx context.Context, params protocol.CallParams) (protocol.CallResult, *protocol.ResponseError) {
	start := time.Now()
	log := s.log.WithFields(logrus.Fields{"call_id": uuid.NewString(), "tool": params.Name})

	result, toolErr := s.toolbox.Call(ctx, params.Name, params.Args)

	outcome := "ok"
	switch {
	case toolErr != nil:
		outcome = "rpc_error"
	case result.IsError:
		outcome = "tool_error"
	}
	elapsed := time.Since(start)
	s.metrics.ObserveTool(params.Name, outcome, elapsed)

	log = log.WithFields(logrus.Fields{"outcome": outcome, "duration": elapsed.String()})
	if toolErr != nil {
		log.WithField("code", toolErr.Code).Warn(toolErr.Message)
	} else {
		log.Info("tool call")
	}
	return result, toolErr
}

// IsNotification reports whether req expects no response.
func IsNotification(req protocol.Request) bool {
	return strings.HasPrefix(req.Method, "notifications/")
}

// WriteError builds a response with an error and wraps encode issues.
func WriteError(id any, code int, message string, err error) protocol.Response {
	detail := message
	if err != nil {
		detail = fmt.Sprintf("%s: %v", message, err)
	}
	return protocol.Response{JSONRPC: "2.0", ID: normalizeID(id), Error: &protocol.ResponseError{Code: code, Message: detail}}
}

func validateJSONRPC(req protocol.Request) *protocol.ResponseError {
	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		return &protocol.ResponseError{Code: CodeInvalidRequest, Message: "invalid jsonrpc version"}
	}
	if req.Method == "" {
		return &protocol.ResponseError{Code: CodeInvalidRequest, Message: "method required"}
	}
	return nil
}

func normalizeID(id any) any {
	if id == nil {
		return "0"
	}
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return v
	case json.Number:
		return v
	case int, int32, int64, uint32, uint64:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
