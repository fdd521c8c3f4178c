// =============================================================================
// Chorus 主入口
// =============================================================================
// 多智能体协作与共识引擎的命令行入口
//
// 使用方法:
//
//	chorus ask "How many vacation days do I get?"   # 解析一个查询
//	chorus ask --config config.yaml "..."            # 指定配置文件
//	chorus version                                   # 显示版本信息
//
// =============================================================================
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chorus-ai/chorus/agent"
	"github.com/chorus-ai/chorus/agent/conflict"
	"github.com/chorus-ai/chorus/agent/consensus"
	"github.com/chorus-ai/chorus/agent/coordinator"
	"github.com/chorus-ai/chorus/agent/distributor"
	"github.com/chorus-ai/chorus/agent/ledger"
	"github.com/chorus-ai/chorus/agent/resolution"
	"github.com/chorus-ai/chorus/agent/workers"
	"github.com/chorus-ai/chorus/config"
	"github.com/chorus-ai/chorus/internal/metrics"
	"github.com/chorus-ai/chorus/internal/telemetry"
	"github.com/chorus-ai/chorus/persistence"
	"github.com/chorus-ai/chorus/types"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ask":
		runAsk(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🎯 ask 命令
// =============================================================================

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	conversation := fs.String("context", "", "Prior conversation context")
	fs.Parse(args)

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "ask requires a query")
		os.Exit(1)
	}

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting Chorus",
		zap.String("version", Version),
		zap.String("git_commit", GitCommit),
	)

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	collector := metrics.NewCollector(cfg.Metrics.Namespace, logger)

	opts := []coordinator.Option{
		coordinator.WithMetrics(collector),
		coordinator.WithDistributor(distributor.New(distributor.Config{
			SingleAgentComplexity: cfg.Distributor.SingleAgentComplexity,
			DefaultTimeout:        cfg.Distributor.DefaultTimeout,
			MaxDocuments:          cfg.Distributor.MaxDocuments,
		}, logger)),
		coordinator.WithDetector(conflict.NewDetector(conflict.DetectorConfig{
			ConfidenceGapThreshold: cfg.Detector.ConfidenceGapThreshold,
			SimilarityThreshold:    cfg.Detector.SimilarityThreshold,
		}, logger)),
		coordinator.WithBuilder(consensus.NewBuilder(consensus.BuilderConfig{
			HighConfidenceThreshold: cfg.Consensus.HighConfidenceThreshold,
			LowConfidenceThreshold:  cfg.Consensus.LowConfidenceThreshold,
		}, logger)),
		coordinator.WithResolutionConfig(resolution.Config{
			MaxAttempts: cfg.Resolution.MaxAttempts,
		}),
	}

	// 审计落盘（可选）
	if cfg.Database.Enabled {
		sink, err := persistence.NewSQLiteSink(cfg.Database.DSN)
		if err != nil {
			logger.Warn("audit database not available", zap.Error(err))
		} else {
			defer sink.Close()
			opts = append(opts, coordinator.WithSink(sink))
		}
	}

	// 账本镜像（可选）
	if cfg.Redis.Enabled {
		mirrorCfg := ledger.RedisMirrorConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			Timeout:   cfg.Redis.Timeout,
			TTL:       cfg.Redis.TTL,
		}
		opts = append(opts, coordinator.WithMirrorFactory(func(sessionID string) (ledger.Mirror, error) {
			return ledger.NewRedisMirror(mirrorCfg, sessionID)
		}))
	}

	kb := demoKnowledgeBase()
	opts = append(opts, coordinator.WithKnowledgeBase(kb))

	c := coordinator.New(coordinator.Config{
		MaxIterations:        cfg.Coordinator.MaxIterations,
		AcceptanceThreshold:  cfg.Coordinator.AcceptanceThreshold,
		TierTimeout:          cfg.Coordinator.TierTimeout,
		MaxConcurrentWorkers: cfg.Coordinator.MaxConcurrentWorkers,
		WorkerRateLimit:      cfg.Coordinator.WorkerRateLimit,
	}, workers.NewKeywordAnalyzer(), demoWorkers(kb), logger, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := c.Run(ctx, query, *conversation)
	if err != nil {
		logger.Error("query resolution failed", zap.Error(err))
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("result not serializable", zap.Error(err))
		os.Exit(1)
	}
	fmt.Println(string(out))

	if otelProviders != nil {
		if err := otelProviders.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}
}

// =============================================================================
// 👥 演示工作者
// =============================================================================

// demoWorkers builds the built-in specialist roster. Real deployments
// register their own agent.Worker implementations instead.
func demoWorkers(kb agent.KnowledgeBase) []agent.Worker {
	hr := workers.NewStatic(types.RoleHRSpecialist, []workers.CannedAnswer{
		{
			Keywords:   []string{"vacation", "leave", "pto"},
			Content:    "Employees accrue 20 vacation days per year, available after the probation period.",
			Confidence: 0.9,
			Evidence:   []string{"HR handbook section 4.2"},
			Sources:    []string{"hr-handbook"},
		},
		{
			Keywords:   []string{"onboarding"},
			Content:    "Onboarding takes five business days and is scheduled by the HR team.",
			Confidence: 0.85,
			Sources:    []string{"hr-handbook"},
		},
	})

	finance := workers.NewStatic(types.RoleFinanceSpecialist, []workers.CannedAnswer{
		{
			Keywords:   []string{"expense", "reimbursement"},
			Content:    "Expense reports are reimbursed within 30 days of approval.",
			Confidence: 0.85,
			Sources:    []string{"finance-wiki"},
		},
		{
			Keywords:   []string{"budget"},
			Content:    "Departmental budgets are reviewed quarterly by the finance team.",
			Confidence: 0.8,
			Sources:    []string{"finance-wiki"},
		},
	})

	it := workers.NewKnowledge(types.RoleITSpecialist, kb)
	general := workers.NewKnowledge(types.RoleGeneralAssistant, kb)

	synthesizer := workers.NewStatic(types.RoleSynthesizer, nil,
		workers.WithFallback(workers.CannedAnswer{
			Content:    "Combined guidance from the involved specialist teams.",
			Confidence: 0.75,
		}))
	mediator := workers.NewStatic(types.RoleConflictResolver, nil,
		workers.WithFallback(workers.CannedAnswer{
			Content:    "Arbitrated: follow the documented policy; exceptions need manager approval.",
			Confidence: 0.8,
		}))

	return []agent.Worker{hr, finance, it, general, synthesizer, mediator}
}

func demoKnowledgeBase() agent.KnowledgeBase {
	return workers.NewMemoryKnowledgeBase([]types.Document{
		{ID: "it-001", Title: "vpn setup", Content: "VPN access is requested through the service desk portal and granted within one business day.", Source: "it-kb"},
		{ID: "it-002", Title: "password reset", Content: "Passwords are reset from the self-service portal; accounts lock after five failed attempts.", Source: "it-kb"},
		{ID: "it-003", Title: "laptop provisioning", Content: "New laptops are provisioned during onboarding and refreshed every three years.", Source: "it-kb"},
		{ID: "gen-001", Title: "office hours", Content: "The office is open from 8am to 8pm on weekdays; badge access applies after hours.", Source: "facilities"},
	})
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("Chorus %s\n", Version)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`Chorus - Multi-Agent Collaboration & Consensus Engine

Usage:
  chorus <command> [options]

Commands:
  ask       Resolve a query through the specialist roster
  version   Show version information
  help      Show this help message

Options for 'ask':
  --config <path>    Path to configuration file (YAML)
  --context <text>   Prior conversation context

Examples:
  chorus ask "How many vacation days do I get?"
  chorus ask --config /etc/chorus/config.yaml "What is the laptop budget?"
  chorus version`)
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
