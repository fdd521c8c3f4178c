// =============================================================================
// 📦 Chorus 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("CHORUS").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"fmt"
	"time"
)

// Config is the complete engine configuration.
type Config struct {
	// Coordinator 协调器配置
	Coordinator CoordinatorConfig `yaml:"coordinator"`

	// Detector 冲突检测配置
	Detector DetectorConfig `yaml:"detector"`

	// Consensus 共识构建配置
	Consensus ConsensusConfig `yaml:"consensus"`

	// Distributor 任务分发配置
	Distributor DistributorConfig `yaml:"distributor"`

	// Resolution 冲突解决配置
	Resolution ResolutionConfig `yaml:"resolution"`

	// Redis 账本镜像与会话存储配置
	Redis RedisConfig `yaml:"redis"`

	// Database 审计落盘配置
	Database DatabaseConfig `yaml:"database"`

	// Log 日志配置
	Log LogConfig `yaml:"log"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Metrics 指标配置
	Metrics MetricsConfig `yaml:"metrics"`
}

// CoordinatorConfig tunes the phase coordinator.
type CoordinatorConfig struct {
	// MaxIterations is the hard session iteration cap.
	MaxIterations int `yaml:"max_iterations" env:"MAX_ITERATIONS"`
	// AcceptanceThreshold is the consensus confidence needed to stop iterating.
	AcceptanceThreshold float64 `yaml:"acceptance_threshold" env:"ACCEPTANCE_THRESHOLD"`
	// TierTimeout bounds one dependency tier of concurrent tasks.
	TierTimeout time.Duration `yaml:"tier_timeout" env:"TIER_TIMEOUT"`
	// MaxConcurrentWorkers bounds fan-out within a tier; 0 is unbounded.
	MaxConcurrentWorkers int `yaml:"max_concurrent_workers" env:"MAX_CONCURRENT_WORKERS"`
	// WorkerRateLimit caps worker invocations per second; 0 disables.
	WorkerRateLimit float64 `yaml:"worker_rate_limit" env:"WORKER_RATE_LIMIT"`
}

// DetectorConfig tunes pairwise conflict detection.
type DetectorConfig struct {
	// ConfidenceGapThreshold flags pairs whose confidence gap exceeds it.
	ConfidenceGapThreshold float64 `yaml:"confidence_gap_threshold" env:"CONFIDENCE_GAP_THRESHOLD"`
	// SimilarityThreshold flags pairs whose content similarity falls below it.
	SimilarityThreshold float64 `yaml:"similarity_threshold" env:"SIMILARITY_THRESHOLD"`
}

// ConsensusConfig tunes consensus building.
type ConsensusConfig struct {
	// HighConfidenceThreshold: responses above it count toward agreement.
	HighConfidenceThreshold float64 `yaml:"high_confidence_threshold" env:"HIGH_CONFIDENCE_THRESHOLD"`
	// LowConfidenceThreshold: responses below it become minority opinions.
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold" env:"LOW_CONFIDENCE_THRESHOLD"`
}

// DistributorConfig tunes strategy selection and task creation.
type DistributorConfig struct {
	// SingleAgentComplexity: below it, one-domain queries use a single agent.
	SingleAgentComplexity float64 `yaml:"single_agent_complexity" env:"SINGLE_AGENT_COMPLEXITY"`
	// DefaultTimeout bounds one worker invocation.
	DefaultTimeout time.Duration `yaml:"default_timeout" env:"DEFAULT_TIMEOUT"`
	// MaxDocuments caps knowledge-base hits per sub-query.
	MaxDocuments int `yaml:"max_documents" env:"MAX_DOCUMENTS"`
}

// ResolutionConfig tunes conflict resolution.
type ResolutionConfig struct {
	// MaxAttempts bounds mediation retries per conflict.
	MaxAttempts int `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
}

// RedisConfig configures the ledger mirror and session store.
type RedisConfig struct {
	// Enabled 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 地址 host:port
	Addr string `yaml:"addr" env:"ADDR"`
	// 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// 数据库编号
	DB int `yaml:"db" env:"DB"`
	// 键前缀
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
	// 镜像写超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 历史过期时间，0 表示永久保留
	TTL time.Duration `yaml:"ttl" env:"TTL"`
}

// DatabaseConfig configures the sqlite audit sink.
type DatabaseConfig struct {
	// Enabled 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// DSN sqlite 数据源，例如 chorus.db 或 file::memory:?cache=shared
	DSN string `yaml:"dsn" env:"DSN"`
}

// LogConfig configures zap.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json or console
	Format string `yaml:"format" env:"FORMAT"`
}

// TelemetryConfig configures the OTel SDK.
type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled" env:"ENABLED"`
	ServiceName  string `yaml:"service_name" env:"SERVICE_NAME"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// SampleRate is the trace sampling ratio in (0,1); values outside
	// that range sample every trace.
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// MetricsConfig configures the Prometheus namespace.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Coordinator.MaxIterations < 1 {
		return fmt.Errorf("coordinator.max_iterations must be >= 1, got %d", c.Coordinator.MaxIterations)
	}
	if c.Coordinator.AcceptanceThreshold < 0 || c.Coordinator.AcceptanceThreshold > 1 {
		return fmt.Errorf("coordinator.acceptance_threshold must be in [0,1], got %v", c.Coordinator.AcceptanceThreshold)
	}
	if t := c.Detector.ConfidenceGapThreshold; t <= 0 || t >= 1 {
		return fmt.Errorf("detector.confidence_gap_threshold must be in (0,1), got %v", t)
	}
	if t := c.Detector.SimilarityThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("detector.similarity_threshold must be in (0,1], got %v", t)
	}
	if c.Consensus.HighConfidenceThreshold <= c.Consensus.LowConfidenceThreshold {
		return fmt.Errorf("consensus.high_confidence_threshold must exceed low_confidence_threshold")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	if c.Database.Enabled && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when database is enabled")
	}
	return nil
}
