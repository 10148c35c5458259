package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
)

// Handler executes a tool call and returns human-readable text for the host.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool is a callable surface exposed to the MCP host.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}

// Registry holds the registered tools in registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Duplicate names are a programming error.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return errors.Newf("tool already registered: %s", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// List returns every tool in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Call dispatches to a tool by name. Handler panics are recovered into
// errors so one bad call can't take down the server.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (result string, err error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return "", errors.Newf("unknown tool: %s", name)
	}

	defer func() {
		if p := recover(); p != nil {
			err = errors.Newf("tool %s panicked: %v", name, p)
		}
	}()
	return tool.Handler(ctx, args)
}

// argument helpers: tool inputs arrive as decoded JSON, so numbers are
// float64 and everything is optional until the schema says otherwise.

func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func requiredStringArg(args map[string]any, key string) (string, error) {
	if v, ok := args[key].(string); ok && v != "" {
		return v, nil
	}
	return "", errors.Newf("missing required argument: %s", key)
}

func requiredIntArg(args map[string]any, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, errors.Wrapf(err, "argument %s is not an integer", key)
		}
		return int(n), nil
	default:
		return 0, errors.Newf("missing required argument: %s", key)
	}
}

func schema(properties string, required ...string) json.RawMessage {
	req := "[]"
	if len(required) > 0 {
		buf, _ := json.Marshal(required)
		req = string(buf)
	}
	return json.RawMessage(fmt.Sprintf(`{"type":"object","properties":%s,"required":%s}`, properties, req))
}
