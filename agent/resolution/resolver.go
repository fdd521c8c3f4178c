package resolution

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chorus-ai/chorus/agent"
	"github.com/chorus-ai/chorus/agent/conflict"
	"github.com/chorus-ai/chorus/types"
)

// Config holds the resolution tunables.
type Config struct {
	// MaxAttempts bounds mediation retries per conflict. Default 2.
	MaxAttempts int `yaml:"max_attempts"`
}

// DefaultConfig returns the default resolution tunables.
func DefaultConfig() Config {
	return Config{MaxAttempts: 2}
}

// Outcome reports what resolution decided for one conflict. The
// resolver never writes to the report itself; the session applies the
// decision under its own lock.
type Outcome struct {
	Report *types.ConflictReport
	// Strategy and Notes are the decision to record on the conflict.
	Strategy types.ResolutionStrategy
	Notes    string
	// Resolved is true when the conflict is settled.
	Resolved bool
	// Mediated is the arbitrating response a mediator produced, to be
	// appended to the ledger by the coordinator. Nil for strategies
	// that settle on existing responses.
	Mediated *types.AgentResponse
	// Escalated is true when the conflict stays unresolved and is
	// carried into the output as acknowledged.
	Escalated bool
}

// Resolver applies level-based strategies to conflicts.
type Resolver struct {
	config   Config
	mediator agent.Worker
	logger   *zap.Logger
}

// New creates a resolver. The mediator is optional; without one,
// high-severity conflicts escalate directly.
func New(config Config, mediator agent.Worker, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 2
	}
	return &Resolver{
		config:   config,
		mediator: mediator,
		logger:   logger.With(zap.String("component", "resolver")),
	}
}

// ResolveAll settles every conflict in the list. Per-conflict failures
// are absorbed into escalations; the call itself never fails.
func (r *Resolver) ResolveAll(ctx context.Context, reports []*types.ConflictReport, ictx *agent.InvocationContext) []Outcome {
	outcomes := make([]Outcome, 0, len(reports))
	for _, report := range reports {
		outcomes = append(outcomes, r.resolve(ctx, report, ictx))
	}
	return outcomes
}

func (r *Resolver) resolve(ctx context.Context, report *types.ConflictReport, ictx *agent.InvocationContext) Outcome {
	level := conflict.ClassifyReport(report)

	var outcome Outcome
	switch level {
	case types.ConflictLow:
		outcome = r.merge(report)
	case types.ConflictMedium:
		outcome = r.keepHighestConfidence(report)
	case types.ConflictHigh:
		outcome = r.mediate(ctx, report, ictx)
	default:
		// Severity zero or negative should not reach the resolver.
		outcome = r.escalate(report, "unclassifiable severity")
	}

	r.logger.Info("conflict handled",
		zap.String("conflict_id", report.ConflictID),
		zap.String("level", string(level)),
		zap.String("strategy", string(outcome.Strategy)),
		zap.Bool("escalated", outcome.Escalated),
	)
	return outcome
}

// merge keeps both answers, annotating the conflict as settled by
// retaining the disagreement in the open.
func (r *Resolver) merge(report *types.ConflictReport) Outcome {
	return Outcome{
		Report:   report,
		Strategy: types.ResolveMerge,
		Notes:    "low severity: both answers retained and ranked by consensus",
		Resolved: true,
	}
}

// keepHighestConfidence settles on the stronger of the two responses.
func (r *Resolver) keepHighestConfidence(report *types.ConflictReport) Outcome {
	outcome := Outcome{
		Report:   report,
		Strategy: types.ResolveHighestConfidence,
		Resolved: true,
	}
	if best := pickStrongest(report.ConflictingResponses); best != nil {
		outcome.Notes = fmt.Sprintf(
			"medium severity: kept answer from %s (confidence %.2f)",
			best.WorkerID, best.Confidence)
	}
	return outcome
}

// mediate asks the conflict_resolver worker to arbitrate. Attempts are
// bounded; exhaustion escalates.
func (r *Resolver) mediate(ctx context.Context, report *types.ConflictReport, ictx *agent.InvocationContext) Outcome {
	if r.mediator == nil {
		return r.escalate(report, "no mediator registered")
	}

	prompt := mediationPrompt(report)
	var lastErr error
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return r.escalate(report, "cancelled before mediation completed")
		}
		mediated, err := r.mediator.Invoke(ctx, prompt, ictx)
		if err != nil {
			lastErr = err
			r.logger.Warn("mediation attempt failed",
				zap.String("conflict_id", report.ConflictID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}
		return Outcome{
			Report:   report,
			Strategy: types.ResolveMediate,
			Notes: fmt.Sprintf(
				"high severity: mediated by %s (confidence %.2f)",
				mediated.WorkerID, mediated.Confidence),
			Resolved: true,
			Mediated: mediated,
		}
	}
	return r.escalate(report, fmt.Sprintf("mediation failed after %d attempts: %v", r.config.MaxAttempts, lastErr))
}

// escalate flags the conflict as unresolved-but-acknowledged.
func (r *Resolver) escalate(report *types.ConflictReport, reason string) Outcome {
	return Outcome{
		Report:    report,
		Strategy:  types.ResolveEscalate,
		Notes:     "escalated: " + reason,
		Escalated: true,
	}
}

func pickStrongest(responses []*types.AgentResponse) *types.AgentResponse {
	var best *types.AgentResponse
	for _, r := range responses {
		if best == nil || r.Confidence > best.Confidence {
			best = r
		}
	}
	return best
}

func mediationPrompt(report *types.ConflictReport) string {
	prompt := "Two specialists disagree. Arbitrate and answer definitively.\n"
	for _, resp := range report.ConflictingResponses {
		prompt += fmt.Sprintf("\n[%s, confidence %.2f]: %s\n", resp.WorkerID, resp.Confidence, resp.Content)
	}
	return prompt
}
