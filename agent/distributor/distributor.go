package distributor

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chorus-ai/chorus/types"
)

// Strategy is the chosen execution strategy for a query.
type Strategy string

const (
	StrategySingleAgent Strategy = "single_agent"
	StrategyMultiAgent  Strategy = "multi_agent"
	StrategyToolOnly    Strategy = "tool_only"
	StrategyRAGOnly     Strategy = "rag_only"
)

// RoleConfig is the per-role execution configuration attached to a
// plan. Fields are explicit rather than a free-form map so every knob
// is enumerated.
type RoleConfig struct {
	// Timeout bounds one invocation of this role.
	Timeout time.Duration `yaml:"timeout"`
	// MaxDocuments caps knowledge-base hits handed to the worker.
	MaxDocuments int `yaml:"max_documents"`
	// Priority orders this role's task within its tier.
	Priority int `yaml:"priority"`
}

// Distribution is the materialized execution plan.
type Distribution struct {
	Strategy      Strategy                        `json:"strategy"`
	SelectedRoles []types.WorkerRole              `json:"selected_roles"`
	SubQueries    map[types.WorkerRole]string     `json:"sub_queries"`
	RoleConfigs   map[types.WorkerRole]RoleConfig `json:"role_configs"`
	Tasks         []*types.AgentTask              `json:"tasks"`
}

// Config holds the distribution tunables.
type Config struct {
	// SingleAgentComplexity: below it, a one-domain query goes to a
	// single agent. Default 0.5.
	SingleAgentComplexity float64 `yaml:"single_agent_complexity"`
	// DefaultTimeout bounds each worker invocation. Default 30s.
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	// MaxDocuments caps knowledge-base hits per sub-query. Default 5.
	MaxDocuments int `yaml:"max_documents"`
}

// DefaultConfig returns the default distribution tunables.
func DefaultConfig() Config {
	return Config{
		SingleAgentComplexity: 0.5,
		DefaultTimeout:        30 * time.Second,
		MaxDocuments:          5,
	}
}

// Distributor builds execution plans from query analyses.
type Distributor struct {
	config Config
	logger *zap.Logger
}

// New creates a distributor, filling config zero values with defaults.
func New(config Config, logger *zap.Logger) *Distributor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SingleAgentComplexity <= 0 {
		config.SingleAgentComplexity = 0.5
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = 30 * time.Second
	}
	if config.MaxDocuments <= 0 {
		config.MaxDocuments = 5
	}
	return &Distributor{
		config: config,
		logger: logger.With(zap.String("component", "distributor")),
	}
}

// Distribute chooses a strategy and materializes one pending AgentTask
// per selected role. Roster lists the roles with a registered worker;
// required domains without a matching roster role fall back to the
// general assistant when it is available.
func (d *Distributor) Distribute(analysis *types.QueryAnalysis, roster []types.WorkerRole) (*Distribution, error) {
	if analysis == nil || analysis.RefinedQuery == "" {
		return nil, types.NewError(types.ErrEmptyInput, "distribution requires an analyzed query")
	}
	if len(roster) == 0 {
		return nil, types.NewError(types.ErrEmptyInput, "distribution requires at least one available role")
	}

	available := make(map[types.WorkerRole]bool, len(roster))
	for _, r := range roster {
		available[r] = true
	}

	roles := d.selectRoles(analysis, available)
	if len(roles) == 0 {
		return nil, types.NewError(types.ErrEmptyInput, "no roster role can serve the required domains")
	}

	strategy := StrategyMultiAgent
	if len(analysis.RequiredDomains) <= 1 && analysis.Complexity < d.config.SingleAgentComplexity {
		strategy = StrategySingleAgent
		roles = roles[:1]
	}

	dist := &Distribution{
		Strategy:      strategy,
		SelectedRoles: roles,
		SubQueries:    make(map[types.WorkerRole]string, len(roles)),
		RoleConfigs:   make(map[types.WorkerRole]RoleConfig, len(roles)),
	}

	now := time.Now()
	domainTaskIDs := make([]string, 0, len(roles))
	for i, role := range roles {
		subQuery := d.subQueryFor(analysis, role)
		dist.SubQueries[role] = subQuery
		dist.RoleConfigs[role] = RoleConfig{
			Timeout:      d.config.DefaultTimeout,
			MaxDocuments: d.config.MaxDocuments,
			Priority:     len(roles) - i,
		}

		task := &types.AgentTask{
			TaskID:      uuid.New().String(),
			Role:        role,
			Description: subQuery,
			Priority:    len(roles) - i,
			Status:      types.TaskPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		dist.Tasks = append(dist.Tasks, task)
		domainTaskIDs = append(domainTaskIDs, task.TaskID)
	}

	// A cross-domain synthesis task waits for every domain task.
	if strategy == StrategyMultiAgent && analysis.NeedsSynthesis && available[types.RoleSynthesizer] {
		synthQuery := fmt.Sprintf("Synthesize the domain answers for: %s", analysis.RefinedQuery)
		dist.SelectedRoles = append(dist.SelectedRoles, types.RoleSynthesizer)
		dist.SubQueries[types.RoleSynthesizer] = synthQuery
		dist.RoleConfigs[types.RoleSynthesizer] = RoleConfig{
			Timeout:      d.config.DefaultTimeout,
			MaxDocuments: d.config.MaxDocuments,
		}
		dist.Tasks = append(dist.Tasks, &types.AgentTask{
			TaskID:      uuid.New().String(),
			Role:        types.RoleSynthesizer,
			Description: synthQuery,
			DependsOn:   domainTaskIDs,
			Status:      types.TaskPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	// Reject malformed graphs before anything is dispatched.
	if _, err := Tiers(dist.Tasks); err != nil {
		return nil, err
	}

	d.logger.Info("distribution built",
		zap.String("strategy", string(dist.Strategy)),
		zap.Int("roles", len(dist.SelectedRoles)),
		zap.Int("tasks", len(dist.Tasks)),
	)
	return dist, nil
}

// selectRoles maps required domains to roster roles, deduplicated and
// sorted for deterministic plans.
func (d *Distributor) selectRoles(analysis *types.QueryAnalysis, available map[types.WorkerRole]bool) []types.WorkerRole {
	seen := make(map[types.WorkerRole]bool)
	var roles []types.WorkerRole

	add := func(role types.WorkerRole) {
		if !seen[role] && available[role] {
			seen[role] = true
			roles = append(roles, role)
		}
	}

	for _, domain := range analysis.RequiredDomains {
		role := types.RoleForDomain(domain)
		if !available[role] {
			role = types.RoleGeneralAssistant
		}
		add(role)
	}
	if len(analysis.RequiredDomains) == 0 {
		add(types.RoleGeneralAssistant)
	}

	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// subQueryFor phrases the role-specific sub-query.
func (d *Distributor) subQueryFor(analysis *types.QueryAnalysis, role types.WorkerRole) string {
	switch role {
	case types.RoleHRSpecialist:
		return fmt.Sprintf("From an HR policy perspective: %s", analysis.RefinedQuery)
	case types.RoleFinanceSpecialist:
		return fmt.Sprintf("From a finance and budgeting perspective: %s", analysis.RefinedQuery)
	case types.RoleITSpecialist:
		return fmt.Sprintf("From an IT systems perspective: %s", analysis.RefinedQuery)
	default:
		return analysis.RefinedQuery
	}
}
