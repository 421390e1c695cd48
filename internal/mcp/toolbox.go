package mcp

import (
	"context"
	"encoding/json"

	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

// Tool defines the behavior of a single MCP tool.
type Tool interface {
	Descriptor() protocol.ToolDescriptor
	Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError)
}

// Toolbox stores and dispatches tools by name. Describe keeps registration
// order; a later tool with the same name replaces the earlier one in place.
type Toolbox struct {
	tools map[string]Tool
	order []string
}

// NewToolbox constructs a toolbox with the provided tools.
func NewToolbox(tools ...Tool) *Toolbox {
	tb := &Toolbox{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		tb.Register(t)
	}
	return tb
}

// Register adds a tool.
func (tb *Toolbox) Register(t Tool) {
	name := t.Descriptor().Name
	if _, exists := tb.tools[name]; !exists {
		tb.order = append(tb.order, name)
	}
	tb.tools[name] = t
}

// Len is the number of registered tools.
func (tb *Toolbox) Len() int { return len(tb.order) }

// Describe returns all tool descriptors.
func (tb *Toolbox) Describe() []protocol.ToolDescriptor {
	list := make([]protocol.ToolDescriptor, 0, len(tb.order))
	for _, name := range tb.order {
		list = append(list, tb.tools[name].Descriptor())
	}
	return list
}

// Call invokes a named tool.
func (tb *Toolbox) Call(ctx context.Context, name string, args json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	tool, ok := tb.tools[name]
	if !ok {
		return protocol.CallResult{}, &protocol.ResponseError{Code: CodeMethodNotFound, Message: "tool not found"}
	}
	return tool.Invoke(ctx, args)
}
