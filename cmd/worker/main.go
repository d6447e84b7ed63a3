package main

import (
	"log"
	"os"
	"strings"

	tactivity "go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/yourorg/market-metrics/internal/activities"
	"github.com/yourorg/market-metrics/internal/db"
	mmetrics "github.com/yourorg/market-metrics/internal/metrics"
	"github.com/yourorg/market-metrics/internal/workflow"
)

func main() {
	taddr := getenv("TEMPORAL_TARGET_HOST", getenv("TEMPORAL_ADDRESS", "localhost:7233"))
	ns := getenv("TEMPORAL_NAMESPACE", "default")
	q := getenv("TEMPORAL_TASK_QUEUE", "market-metrics")
	tmpDir := getenv("MM_TMP_DIR", "/var/market-metrics")
	_ = os.MkdirAll(tmpDir, 0o777)

	zl := newZap(getenv("LOG_LEVEL", "info"))
	defer zl.Sync()

	mmetrics.Init()
	go func() {
		addr := mmetrics.AddrFromEnv()
		_ = mmetrics.Serve(addr)
	}()

	// Run history is optional: without a reachable database the worker still
	// aggregates, it just records nothing.
	var runs db.RunRepository
	if database, err := db.NewDatabase(db.FromEnv()); err != nil {
		zl.Warn("run history disabled", zap.Error(err))
	} else {
		defer database.Close()
		runs = db.NewRunRepo(database.DB)
	}

	c, err := client.Dial(client.Options{HostPort: taddr, Namespace: ns})
	if err != nil {
		log.Fatal("temporal client:", err)
	}
	defer c.Close()

	w := worker.New(c, q, worker.Options{})
	acts := activities.New(activities.Config{ScratchDir: tmpDir}, zl, runs)
	// Register activities with explicit names matching workflow.ExecuteActivity calls
	w.RegisterActivityWithOptions(acts.AggregateCategory, tactivity.RegisterOptions{Name: "Activities.AggregateCategory"})
	w.RegisterActivityWithOptions(acts.FetchMarketList, tactivity.RegisterOptions{Name: "Activities.FetchMarketList"})
	w.RegisterActivityWithOptions(acts.CleanupScratch, tactivity.RegisterOptions{Name: "Activities.CleanupScratch"})
	w.RegisterWorkflow(workflow.MarketMetricsWorkflow)
	w.RegisterWorkflow(workflow.FetchMarketsWorkflow)

	zl.Info("worker started", zap.String("namespace", ns), zap.String("taskQueue", q), zap.String("tmp", tmpDir), zap.String("metrics", getenv("METRICS_ADDR", ":9090")))
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal("worker failed:", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func newZap(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
