// Package observability provides hooks for instrumenting the synthesis
// pipeline without adding hard dependencies on any backend.
//
// The package uses a simple hooks pattern: a hook interface with a no-op
// default, replaceable at startup. Hooks are registered by main (or
// tests), never by library packages, which avoids import cycles and keeps
// the core free of observability frameworks.
//
// # Usage
//
//	func main() {
//	    observability.SetPipelineHooks(&myHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
)

// PipelineHooks receives events from the synthesis pipeline.
type PipelineHooks interface {
	// OnResolve fires after the target package is resolved to a path.
	OnResolve(ctx context.Context, target, path string)

	// OnParseFile fires after one submodule's source was parsed.
	OnParseFile(ctx context.Context, path string, callables int)

	// OnMerge fires after the init file was updated, with the line
	// bounds of the replaced region.
	OnMerge(ctx context.Context, initPath string, startLine, endLine int)
}

// NopPipelineHooks is a PipelineHooks implementation that does nothing.
type NopPipelineHooks struct{}

func (NopPipelineHooks) OnResolve(context.Context, string, string) {}

func (NopPipelineHooks) OnParseFile(context.Context, string, int) {}

func (NopPipelineHooks) OnMerge(context.Context, string, int, int) {}

var (
	mu            sync.RWMutex
	pipelineHooks PipelineHooks = NopPipelineHooks{}
)

// SetPipelineHooks registers the pipeline hooks implementation.
// Passing nil restores the no-op default.
func SetPipelineHooks(h PipelineHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = NopPipelineHooks{}
	}
	pipelineHooks = h
}

// Pipeline returns the registered pipeline hooks. Never nil.
func Pipeline() PipelineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return pipelineHooks
}
