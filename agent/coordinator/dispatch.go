package coordinator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chorus-ai/chorus/agent"
	"github.com/chorus-ai/chorus/agent/distributor"
	"github.com/chorus-ai/chorus/agent/session"
	"github.com/chorus-ai/chorus/types"
)

// execute dispatches the plan tier by tier. Tasks within a tier run
// concurrently under the fan-out limit; a tier only starts once the
// previous one has fully settled, so dependent tasks always see their
// dependencies' responses in the ledger.
func (c *Coordinator) execute(ctx context.Context, state *session.State, dist *distributor.Distribution, conversationContext string) error {
	if state.Phase() != session.PhaseExecution {
		if err := c.transition(state, session.PhaseExecution); err != nil {
			return err
		}
	}
	ctx, span := c.tracer.Start(ctx, "phase.execution")
	defer span.End()

	tiers, err := distributor.Tiers(dist.Tasks)
	if err != nil {
		return err
	}
	span.SetAttributes(
		attribute.Int("tasks", len(dist.Tasks)),
		attribute.Int("tiers", len(tiers)),
	)

	for _, tier := range tiers {
		if ctx.Err() != nil {
			c.failRemaining(tier)
			continue
		}
		c.dispatchTier(ctx, state, dist, tier, conversationContext)
	}

	c.persist(ctx, state)
	return nil
}

// dispatchTier runs one tier to completion. Worker failures are
// absorbed into failed tasks; the tier itself never errors.
func (c *Coordinator) dispatchTier(ctx context.Context, state *session.State, dist *distributor.Distribution, tier []*types.AgentTask, conversationContext string) {
	tierCtx, cancel := context.WithTimeout(ctx, c.config.TierTimeout)
	defer cancel()

	// Each tier's workers see the ledger as it stood when the tier
	// started; within a tier there is no ordering to rely on.
	prior := state.Ledger().AllLatest()

	g, gctx := errgroup.WithContext(tierCtx)
	if c.config.MaxConcurrentWorkers > 0 {
		g.SetLimit(c.config.MaxConcurrentWorkers)
	}
	for _, task := range tier {
		if !task.Ready(state.Tasks()) {
			// Unmet dependencies mean a dependency failed upstream.
			c.failTask(task, "dependency did not complete")
			continue
		}
		task := task
		g.Go(func() error {
			c.runTask(gctx, state, dist, task, prior, conversationContext)
			return nil
		})
	}
	_ = g.Wait()
}

// runTask invokes one worker and records the outcome on the task.
func (c *Coordinator) runTask(ctx context.Context, state *session.State, dist *distributor.Distribution, task *types.AgentTask, prior []*types.AgentResponse, conversationContext string) {
	worker, ok := c.registry[task.Role]
	if !ok {
		c.failTask(task, "no worker registered for role "+string(task.Role))
		return
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.failTask(task, "rate limit wait cancelled")
			return
		}
	}

	if err := task.Transition(types.TaskInProgress); err != nil {
		c.logger.Warn("task not dispatchable", zap.String("task_id", task.TaskID), zap.Error(err))
		return
	}

	roleCfg := dist.RoleConfigs[task.Role]
	timeout := roleCfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ictx := &agent.InvocationContext{
		SessionID:           state.ID(),
		ConversationContext: conversationContext,
		Documents:           c.prefetch(taskCtx, task, roleCfg.MaxDocuments),
		PriorResponses:      prior,
		Iteration:           state.Iteration(),
	}

	start := time.Now()
	resp, err := worker.Invoke(taskCtx, task.Description, ictx)
	elapsed := time.Since(start)
	if c.collector != nil {
		c.collector.RecordWorkerInvocation(string(task.Role), elapsed)
	}

	if err != nil {
		code := types.ErrWorkerFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = types.ErrWorkerTimeout
		}
		c.logger.Warn("worker invocation failed",
			zap.String("session_id", state.ID()),
			zap.String("task_id", task.TaskID),
			zap.String("role", string(task.Role)),
			zap.String("code", string(code)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		c.failTask(task, err.Error())
		return
	}

	task.Result = resp
	if err := state.Ledger().Append(resp.WorkerID, resp); err != nil {
		c.failTask(task, "response not recorded: "+err.Error())
		return
	}
	if err := task.Transition(types.TaskCompleted); err != nil {
		c.logger.Warn("task not marked completed", zap.String("task_id", task.TaskID), zap.Error(err))
		return
	}
	if c.collector != nil {
		c.collector.RecordTaskOutcome(string(task.Role), string(task.Status))
	}
	c.logger.Debug("task completed",
		zap.String("task_id", task.TaskID),
		zap.String("role", string(task.Role)),
		zap.Float64("confidence", resp.Confidence),
		zap.Duration("elapsed", elapsed),
	)
}

// prefetch pulls knowledge-base hits for the task's sub-query.
func (c *Coordinator) prefetch(ctx context.Context, task *types.AgentTask, limit int) []types.Document {
	if c.kb == nil {
		return nil
	}
	if limit <= 0 {
		limit = 5
	}
	docs, err := c.kb.Search(ctx, task.Description, limit)
	if err != nil {
		c.logger.Debug("knowledge prefetch failed",
			zap.String("task_id", task.TaskID),
			zap.Error(err),
		)
		return nil
	}
	return docs
}

// failTask transitions a task to failed and records the outcome.
func (c *Coordinator) failTask(task *types.AgentTask, reason string) {
	if err := task.Transition(types.TaskFailed); err != nil {
		c.logger.Warn("task not marked failed", zap.String("task_id", task.TaskID), zap.Error(err))
		return
	}
	if c.collector != nil {
		c.collector.RecordTaskOutcome(string(task.Role), string(task.Status))
	}
	c.logger.Warn("task failed",
		zap.String("task_id", task.TaskID),
		zap.String("role", string(task.Role)),
		zap.String("reason", reason),
	)
}

// failRemaining fails every still-pending task in a tier that will not
// be dispatched because the session context ended.
func (c *Coordinator) failRemaining(tier []*types.AgentTask) {
	for _, task := range tier {
		if task.Status == types.TaskPending {
			c.failTask(task, "session cancelled before dispatch")
		}
	}
}
