// Package chorus provides a top-level convenience entry point for running
// queries through the consensus engine with minimal boilerplate.
//
// Usage:
//
//	import "github.com/chorus-ai/chorus"
//
//	c := chorus.New(chorus.DefaultConfig(), analyzer, roster, logger)
//	result, err := c.Run(ctx, "How many vacation days do I get?", "")
//
// This is a thin wrapper around [coordinator.New]; both produce identical
// results. Use this package when you prefer the shorter import path.
package chorus

import (
	"go.uber.org/zap"

	"github.com/chorus-ai/chorus/agent"
	"github.com/chorus-ai/chorus/agent/coordinator"
)

// Config configures the engine created by [New].
type Config = coordinator.Config

// Option configures optional engine components.
type Option = coordinator.Option

// Engine drives a query from analysis to consensus.
type Engine = coordinator.Coordinator

// DefaultConfig returns the engine defaults.
var DefaultConfig = coordinator.DefaultConfig

// New creates an [Engine] over the given analyzer and worker roster.
func New(cfg Config, analyzer agent.Analyzer, workers []agent.Worker, logger *zap.Logger, opts ...Option) *Engine {
	return coordinator.New(cfg, analyzer, workers, logger, opts...)
}

// Re-export component options so callers never need to import coordinator/.

// WithKnowledgeBase attaches a document store used for worker prefetch.
var WithKnowledgeBase = coordinator.WithKnowledgeBase

// WithSink attaches an audit sink receiving session snapshots.
var WithSink = coordinator.WithSink

// WithMetrics attaches a prometheus collector.
var WithMetrics = coordinator.WithMetrics

// WithMirrorFactory attaches a per-session ledger mirror factory.
var WithMirrorFactory = coordinator.WithMirrorFactory
