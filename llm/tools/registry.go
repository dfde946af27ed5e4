// Package tools holds the named-capability registry the gateway invokes
// extraction through. Registration declares a tool's schema and timeout;
// execution is bounded and logged. Errors keep their concrete types so
// callers can tell a transport failure from a model-output failure.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clinsight/labtriage/llm"
)

// ToolFunc is the tool function signature.
type ToolFunc func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)

// Metadata describes a registered tool.
type Metadata struct {
	Schema      llm.ToolSchema
	Timeout     time.Duration // execution timeout, default 150s
	Description string
}

// Registry stores tools by name.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]ToolFunc
	metadata map[string]Metadata
	logger   *zap.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:    make(map[string]ToolFunc),
		metadata: make(map[string]Metadata),
		logger:   logger,
	}
}

// Register adds a tool under name.
func (r *Registry) Register(name string, fn ToolFunc, metadata Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	if metadata.Schema.Name == "" {
		metadata.Schema.Name = name
	}
	if metadata.Schema.Name != name {
		return fmt.Errorf("tool name mismatch: schema.Name=%s, register name=%s", metadata.Schema.Name, name)
	}
	if metadata.Timeout == 0 {
		// Local inference on cold models is slow; leave headroom over the
		// client's own 120s bound.
		metadata.Timeout = 150 * time.Second
	}

	r.tools[name] = fn
	r.metadata[name] = metadata
	r.logger.Info("tool registered", zap.String("name", name), zap.Duration("timeout", metadata.Timeout))
	return nil
}

// Get returns a registered tool and its metadata.
func (r *Registry) Get(name string) (ToolFunc, Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.tools[name]
	if !ok {
		return nil, Metadata{}, fmt.Errorf("tool %s not found", name)
	}
	return fn, r.metadata[name], nil
}

// List returns the schemas of all registered tools.
func (r *Registry) List() []llm.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make([]llm.ToolSchema, 0, len(r.metadata))
	for _, meta := range r.metadata {
		schemas = append(schemas, meta.Schema)
	}
	return schemas
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Execute runs one tool invocation under its registered timeout. Unlike a
// generic multi-call executor, the error is returned as-is: the caller
// decides retry behavior from the concrete error type.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	fn, meta, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	execCtx, cancel := context.WithTimeout(ctx, meta.Timeout)
	defer cancel()

	type outcome struct {
		res json.RawMessage
		err error
	}
	// Buffered so the goroutine can exit even if the timeout wins.
	done := make(chan outcome, 1)
	go func() {
		res, err := fn(execCtx, args)
		select {
		case done <- outcome{res, err}:
		case <-execCtx.Done():
		}
	}()

	start := time.Now()
	select {
	case out := <-done:
		if out.err != nil {
			r.logger.Warn("tool execution failed",
				zap.String("name", name),
				zap.Error(out.err),
				zap.Duration("duration", time.Since(start)))
			return nil, out.err
		}
		r.logger.Info("tool executed",
			zap.String("name", name),
			zap.Duration("duration", time.Since(start)))
		return out.res, nil

	case <-execCtx.Done():
		r.logger.Error("tool execution timeout",
			zap.String("name", name),
			zap.Duration("timeout", meta.Timeout))
		return nil, fmt.Errorf("tool %s timed out after %s: %w", name, meta.Timeout, execCtx.Err())
	}
}
