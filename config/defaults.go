package config

import "time"

// Default returns the baseline configuration. Values mirror the
// component-level defaults so a zero config file still runs.
func Default() *Config {
	return &Config{
		Coordinator: CoordinatorConfig{
			MaxIterations:        10,
			AcceptanceThreshold:  0.6,
			TierTimeout:          60 * time.Second,
			MaxConcurrentWorkers: 8,
			WorkerRateLimit:      0,
		},
		Detector: DetectorConfig{
			ConfidenceGapThreshold: 0.3,
			SimilarityThreshold:    0.5,
		},
		Consensus: ConsensusConfig{
			HighConfidenceThreshold: 0.7,
			LowConfidenceThreshold:  0.5,
		},
		Distributor: DistributorConfig{
			SingleAgentComplexity: 0.5,
			DefaultTimeout:        30 * time.Second,
			MaxDocuments:          5,
		},
		Resolution: ResolutionConfig{
			MaxAttempts: 2,
		},
		Redis: RedisConfig{
			Enabled:   false,
			Addr:      "localhost:6379",
			KeyPrefix: "chorus:",
			Timeout:   2 * time.Second,
		},
		Database: DatabaseConfig{
			Enabled: false,
			DSN:     "chorus.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "chorus",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Metrics: MetricsConfig{
			Namespace: "chorus",
		},
	}
}
