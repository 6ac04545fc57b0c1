package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Registry holds the toolkit's tools keyed by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds tools to the registry. Registering a name twice is an error.
func (r *Registry) Register(ts ...Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range ts {
		if t == nil {
			return fmt.Errorf("cannot register nil tool")
		}
		name := t.Name()
		if _, exists := r.tools[name]; exists {
			return fmt.Errorf("tool %q already registered", name)
		}
		r.tools[name] = t
	}
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result is the outcome of one dispatched tool call.
type Result struct {
	Tool     string                 `json:"tool"`
	Output   string                 `json:"output,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// Execute dispatches a parsed tool call to the registered tool.
// The returned error is non-nil only when the tool is unknown or
// rejected its arguments; the same message is also set on Result.Error.
func (r *Registry) Execute(ctx context.Context, call *ToolCall) (*Result, error) {
	if err := ValidateToolCall(call); err != nil {
		return nil, err
	}

	tool, ok := r.Get(call.ToolName)
	if !ok {
		return &Result{Tool: call.ToolName, Error: "unknown tool"}, fmt.Errorf("unknown tool %q", call.ToolName)
	}

	output, metadata, err := tool.Execute(ctx, call.GetArgumentsXML())
	result := &Result{
		Tool:     call.ToolName,
		Output:   output,
		Metadata: metadata,
	}
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("%s: %w", call.ToolName, err)
	}
	return result, nil
}

// RenderJSON renders an operation result object as indented JSON.
// It is how the toolkit's operations turn their result structs into
// tool output.
func RenderJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}
