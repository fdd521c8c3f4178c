// Package coordinator drives a query through the fixed resolution
// lifecycle: analysis, delegation, execution, deliberation, resolution
// when conflicts surface, and synthesis. It owns the session state and
// is the only mutator of tasks and phases.
package coordinator

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chorus-ai/chorus/agent"
	"github.com/chorus-ai/chorus/agent/conflict"
	"github.com/chorus-ai/chorus/agent/consensus"
	"github.com/chorus-ai/chorus/agent/distributor"
	"github.com/chorus-ai/chorus/agent/ledger"
	"github.com/chorus-ai/chorus/agent/resolution"
	"github.com/chorus-ai/chorus/agent/session"
	"github.com/chorus-ai/chorus/internal/metrics"
	"github.com/chorus-ai/chorus/persistence"
	"github.com/chorus-ai/chorus/types"
)

// Config holds the coordination tunables.
type Config struct {
	// MaxIterations is the hard session iteration cap. Default 10.
	MaxIterations int `yaml:"max_iterations"`
	// AcceptanceThreshold is the consensus confidence at which the
	// session stops iterating. Default 0.6.
	AcceptanceThreshold float64 `yaml:"acceptance_threshold"`
	// TierTimeout bounds one dependency tier of concurrent tasks.
	// Default 60s.
	TierTimeout time.Duration `yaml:"tier_timeout"`
	// MaxConcurrentWorkers bounds fan-out within a tier; 0 is
	// unbounded.
	MaxConcurrentWorkers int `yaml:"max_concurrent_workers"`
	// WorkerRateLimit caps worker invocations per second across the
	// whole session; 0 disables.
	WorkerRateLimit float64 `yaml:"worker_rate_limit"`
}

// DefaultConfig returns the default coordination tunables.
func DefaultConfig() Config {
	return Config{
		MaxIterations:        10,
		AcceptanceThreshold:  0.6,
		TierTimeout:          60 * time.Second,
		MaxConcurrentWorkers: 8,
	}
}

// MirrorFactory builds a per-session ledger mirror. The session ID does
// not exist until the session is created, hence the indirection.
type MirrorFactory func(sessionID string) (ledger.Mirror, error)

// Coordinator orchestrates the full lifecycle for one query at a time;
// concurrent Run calls each get their own session state.
type Coordinator struct {
	config   Config
	analyzer agent.Analyzer
	registry map[types.WorkerRole]agent.Worker

	distributor *distributor.Distributor
	detector    *conflict.Detector
	builder     *consensus.Builder
	resolver    *resolution.Resolver

	kb            agent.KnowledgeBase
	sink          persistence.Sink
	collector     *metrics.Collector
	mirrorFactory MirrorFactory
	limiter       *rate.Limiter

	sessions sync.Map // session ID -> *session.State
	tracer   trace.Tracer
	logger   *zap.Logger
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithKnowledgeBase pre-fetches documents for every dispatched task.
func WithKnowledgeBase(kb agent.KnowledgeBase) Option {
	return func(c *Coordinator) { c.kb = kb }
}

// WithSink persists session snapshots at phase boundaries. Persist
// failures are logged, never surfaced.
func WithSink(sink persistence.Sink) Option {
	return func(c *Coordinator) { c.sink = sink }
}

// WithMetrics records Prometheus metrics. Nil disables recording.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Coordinator) { c.collector = collector }
}

// WithMirrorFactory mirrors every ledger append per session.
func WithMirrorFactory(factory MirrorFactory) Option {
	return func(c *Coordinator) { c.mirrorFactory = factory }
}

// WithDistributor replaces the default distributor.
func WithDistributor(d *distributor.Distributor) Option {
	return func(c *Coordinator) { c.distributor = d }
}

// WithDetector replaces the default conflict detector.
func WithDetector(d *conflict.Detector) Option {
	return func(c *Coordinator) { c.detector = d }
}

// WithBuilder replaces the default consensus builder.
func WithBuilder(b *consensus.Builder) Option {
	return func(c *Coordinator) { c.builder = b }
}

// WithResolver replaces the default conflict resolver.
func WithResolver(r *resolution.Resolver) Option {
	return func(c *Coordinator) { c.resolver = r }
}

// WithResolutionConfig rebuilds the resolver with the given tunables,
// keeping the mediator derived from the worker roster.
func WithResolutionConfig(cfg resolution.Config) Option {
	return func(c *Coordinator) {
		c.resolver = resolution.New(cfg, c.registry[types.RoleConflictResolver], c.logger)
	}
}

// New creates a coordinator over the registered workers. A worker with
// the conflict_resolver role becomes the mediator for high-severity
// conflicts.
func New(config Config, analyzer agent.Analyzer, workers []agent.Worker, logger *zap.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxIterations <= 0 {
		config.MaxIterations = 10
	}
	if config.AcceptanceThreshold <= 0 {
		config.AcceptanceThreshold = 0.6
	}
	if config.TierTimeout <= 0 {
		config.TierTimeout = 60 * time.Second
	}

	registry := make(map[types.WorkerRole]agent.Worker, len(workers))
	var mediator agent.Worker
	for _, w := range workers {
		registry[w.Role()] = w
		if w.Role() == types.RoleConflictResolver {
			mediator = w
		}
	}

	c := &Coordinator{
		config:      config,
		analyzer:    analyzer,
		registry:    registry,
		distributor: distributor.New(distributor.DefaultConfig(), logger),
		detector:    conflict.NewDetector(conflict.DefaultDetectorConfig(), logger),
		builder:     consensus.NewBuilder(consensus.DefaultBuilderConfig(), logger),
		resolver:    resolution.New(resolution.DefaultConfig(), mediator, logger),
		tracer:      otel.Tracer("chorus/coordinator"),
		logger:      logger.With(zap.String("component", "coordinator")),
	}
	if config.WorkerRateLimit > 0 {
		burst := int(config.WorkerRateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(config.WorkerRateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Roster returns the roles with a registered worker.
func (c *Coordinator) Roster() []types.WorkerRole {
	roster := make([]types.WorkerRole, 0, len(c.registry))
	for role := range c.registry {
		roster = append(roster, role)
	}
	return roster
}

// Snapshot returns the live state of a running (or finished but still
// tracked) session.
func (c *Coordinator) Snapshot(sessionID string) (*session.Snapshot, bool) {
	v, ok := c.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	return v.(*session.State).Snapshot(), true
}

// Run resolves one query end to end. It returns the accepted consensus
// or, when the iteration budget runs out first, the best consensus seen
// so far flagged as budget-exhausted.
func (c *Coordinator) Run(ctx context.Context, query, conversationContext string) (*session.FinalResult, error) {
	state := session.NewState(nil, c.config.MaxIterations, c.logger)
	c.sessions.Store(state.ID(), state)

	if c.mirrorFactory != nil {
		mirror, err := c.mirrorFactory(state.ID())
		if err != nil {
			c.logger.Warn("ledger mirror unavailable",
				zap.String("session_id", state.ID()),
				zap.Error(err),
			)
		} else {
			state.Ledger().SetMirror(mirror)
		}
	}

	ctx, span := c.tracer.Start(ctx, "session.run",
		trace.WithAttributes(attribute.String("session_id", state.ID())))
	defer span.End()

	result, err := c.run(ctx, state, query, conversationContext)
	if c.collector != nil {
		c.collector.RecordSessionIterations(state.Iteration())
	}
	return result, err
}

// run is the phase loop. Fatal contract violations abort; worker-level
// failures degrade.
func (c *Coordinator) run(ctx context.Context, state *session.State, query, conversationContext string) (*session.FinalResult, error) {
	analysis, err := c.analyze(ctx, state, query, conversationContext)
	if err != nil {
		return nil, err
	}

	for {
		dist, err := c.delegate(ctx, state, analysis)
		if err != nil {
			return nil, err
		}

		if err := c.execute(ctx, state, dist, conversationContext); err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			// The dispatcher already failed the in-flight tasks; skip
			// the remaining phases and degrade.
			c.logger.Warn("session cancelled, returning best-effort result",
				zap.String("session_id", state.ID()),
				zap.Int("iteration", state.Iteration()),
			)
			return c.bestEffort(state), ctx.Err()
		}

		reports, err := c.deliberate(ctx, state)
		if err != nil {
			return nil, err
		}

		if len(reports) > 0 {
			if err := c.resolve(ctx, state, reports); err != nil {
				return nil, err
			}
		}

		result, accepted, err := c.synthesize(ctx, state)
		if err != nil {
			return nil, err
		}
		if accepted {
			c.logger.Info("consensus accepted",
				zap.String("session_id", state.ID()),
				zap.Int("iterations", state.Iteration()),
				zap.Float64("consensus_confidence", result.ConsensusConfidence),
			)
			return state.Final(result), nil
		}

		if err := state.BeginIteration(); err != nil {
			// Budget exhausted: degrade to the best consensus so far.
			best := state.BestConsensus()
			c.logger.Warn("iteration budget exhausted, returning best-effort consensus",
				zap.String("session_id", state.ID()),
				zap.Int("iterations", state.Iteration()),
			)
			c.persist(ctx, state)
			return state.Final(best), nil
		}

		if err := c.transition(state, session.PhaseExecution); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return state.Final(state.BestConsensus()), err
		}
	}
}

// bestEffort ranks whatever responses made it into the ledger, falling
// back to the best prior consensus when none did.
func (c *Coordinator) bestEffort(state *session.State) *session.FinalResult {
	if latest := state.Ledger().AllLatest(); len(latest) > 0 {
		if result, err := c.builder.Build(latest); err == nil {
			state.AddConsensus(result)
			return state.Final(result)
		}
	}
	return state.Final(state.BestConsensus())
}

// analyze runs the analysis phase through the external analyzer.
func (c *Coordinator) analyze(ctx context.Context, state *session.State, query, conversationContext string) (*types.QueryAnalysis, error) {
	ctx, span := c.tracer.Start(ctx, "phase.analysis")
	defer span.End()

	analysis, err := c.analyzer.Analyze(ctx, query, conversationContext)
	if err != nil {
		return nil, err
	}
	c.logger.Info("query analyzed",
		zap.String("session_id", state.ID()),
		zap.String("query_type", string(analysis.QueryType)),
		zap.Float64("complexity", analysis.Complexity),
		zap.Strings("required_domains", analysis.RequiredDomains),
	)
	c.persist(ctx, state)
	return analysis, nil
}

// delegate builds the execution plan and registers its tasks. On
// re-iteration the distributor runs again, so every iteration gets
// fresh task IDs while earlier tasks stay in the session for audit.
func (c *Coordinator) delegate(ctx context.Context, state *session.State, analysis *types.QueryAnalysis) (*distributor.Distribution, error) {
	if state.Phase() == session.PhaseAnalysis {
		if err := c.transition(state, session.PhaseDelegation); err != nil {
			return nil, err
		}
	}
	ctx, span := c.tracer.Start(ctx, "phase.delegation")
	defer span.End()

	dist, err := c.distributor.Distribute(analysis, c.Roster())
	if err != nil {
		return nil, err
	}
	for _, task := range dist.Tasks {
		state.AddTask(task)
	}
	c.persist(ctx, state)
	return dist, nil
}

// deliberate detects conflicts over each worker's latest response.
func (c *Coordinator) deliberate(ctx context.Context, state *session.State) ([]*types.ConflictReport, error) {
	if err := c.transition(state, session.PhaseDeliberation); err != nil {
		return nil, err
	}
	ctx, span := c.tracer.Start(ctx, "phase.deliberation")
	defer span.End()

	comparison := state.Ledger().AllLatest()
	if len(comparison) == 0 {
		return nil, types.NewError(types.ErrWorkerFailed, "no worker produced a response")
	}

	reports := c.detector.Detect(comparison)
	state.AddConflicts(reports)
	if c.collector != nil {
		for _, r := range reports {
			c.collector.RecordConflict(string(conflict.ClassifyReport(r)))
		}
	}
	c.markConflicted(state, reports)
	span.SetAttributes(attribute.Int("conflicts", len(reports)))
	c.persist(ctx, state)
	return reports, nil
}

// resolve settles detected conflicts; mediated answers re-enter the
// ledger so the subsequent consensus ranks them with everything else.
func (c *Coordinator) resolve(ctx context.Context, state *session.State, reports []*types.ConflictReport) error {
	if err := c.transition(state, session.PhaseResolution); err != nil {
		return err
	}
	ctx, span := c.tracer.Start(ctx, "phase.resolution")
	defer span.End()

	ictx := &agent.InvocationContext{
		SessionID:      state.ID(),
		PriorResponses: state.Ledger().AllLatest(),
		Iteration:      state.Iteration(),
	}
	outcomes := c.resolver.ResolveAll(ctx, reports, ictx)
	for _, outcome := range outcomes {
		state.ResolveConflict(outcome.Report.ConflictID, outcome.Strategy, outcome.Notes, outcome.Resolved)
		if outcome.Mediated != nil {
			if err := state.Ledger().Append(outcome.Mediated.WorkerID, outcome.Mediated); err != nil {
				c.logger.Warn("mediated response not recorded", zap.Error(err))
			}
		}
		if outcome.Escalated && c.collector != nil {
			c.collector.RecordEscalation()
		}
	}
	c.markResolved(state)
	c.persist(ctx, state)
	return nil
}

// synthesize builds consensus and decides acceptance.
func (c *Coordinator) synthesize(ctx context.Context, state *session.State) (*types.ConsensusResult, bool, error) {
	if err := c.transition(state, session.PhaseSynthesis); err != nil {
		return nil, false, err
	}
	ctx, span := c.tracer.Start(ctx, "phase.synthesis")
	defer span.End()

	result, err := c.builder.Build(state.Ledger().AllLatest())
	if err != nil {
		return nil, false, err
	}
	state.AddConsensus(result)
	if c.collector != nil {
		c.collector.RecordConsensus(result.ConsensusConfidence)
	}
	span.SetAttributes(attribute.Float64("consensus_confidence", result.ConsensusConfidence))
	c.persist(ctx, state)

	return result, result.ConsensusConfidence >= c.config.AcceptanceThreshold, nil
}

// markConflicted transitions the tasks whose results are party to a
// conflict.
func (c *Coordinator) markConflicted(state *session.State, reports []*types.ConflictReport) {
	if len(reports) == 0 {
		return
	}
	involved := make(map[string]bool)
	for _, r := range reports {
		for _, id := range r.InvolvedWorkers {
			involved[id] = true
		}
	}
	for _, task := range state.Tasks() {
		if task.Result == nil || !involved[task.Result.WorkerID] {
			continue
		}
		if task.Status != types.TaskCompleted {
			continue
		}
		if err := task.Transition(types.TaskConflicted); err != nil {
			c.logger.Warn("task not marked conflicted", zap.String("task_id", task.TaskID), zap.Error(err))
		}
	}
}

// markResolved settles conflicted tasks after the resolution phase.
func (c *Coordinator) markResolved(state *session.State) {
	for _, task := range state.Tasks() {
		if task.Status != types.TaskConflicted {
			continue
		}
		if err := task.Transition(types.TaskResolved); err != nil {
			c.logger.Warn("task not marked resolved", zap.String("task_id", task.TaskID), zap.Error(err))
		}
	}
}

// transition moves the session phase and records phase metrics.
func (c *Coordinator) transition(state *session.State, to session.Phase) error {
	from := state.Phase()
	enteredAt, _ := state.PhaseEnteredAt(from)
	if err := state.Transition(to); err != nil {
		return err
	}
	if c.collector != nil {
		c.collector.RecordPhaseTransition(string(from), string(to))
		if !enteredAt.IsZero() {
			c.collector.RecordPhaseDuration(string(from), time.Since(enteredAt))
		}
	}
	return nil
}

// persist snapshots the session into the sink, best effort.
func (c *Coordinator) persist(ctx context.Context, state *session.State) {
	if c.sink == nil {
		return
	}
	if err := c.sink.Persist(ctx, state.Snapshot()); err != nil {
		c.logger.Warn("session snapshot not persisted",
			zap.String("session_id", state.ID()),
			zap.Error(err),
		)
	}
}
