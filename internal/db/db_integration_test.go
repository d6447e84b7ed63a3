package db_test

import (
	"context"
	"testing"

	"github.com/yourorg/market-metrics/internal/db"
	"github.com/yourorg/market-metrics/internal/models"
	"github.com/yourorg/market-metrics/internal/types"
)

func connect(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.NewDatabase(db.FromEnv())
	if err != nil {
		t.Skipf("skipping integration test; cannot connect to DB: %v", err)
	}
	return database
}

func TestRunLifecycle(t *testing.T) {
	database := connect(t)
	defer database.Close()

	ctx := context.Background()
	repo := db.NewRunRepo(database.DB)

	rec, err := repo.Start(ctx, "spot", "wf-test-1")
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if rec.Status != models.RunRunning {
		t.Fatalf("status after start: %q", rec.Status)
	}

	res := types.CategoryResult{
		Category:    "spot",
		Days:        31,
		Identifiers: 1200,
		Shards:      2,
		Skipped:     []types.ShardFailure{{Shard: "trades_2024_2.json", DaysKept: 3, Reason: "shard truncated"}},
		OutputURI:   "file:///tmp/spot.json",
	}
	if err := repo.Finish(ctx, rec.ID, res, ""); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	got, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Status != models.RunCompleted || got.Days != 31 || got.ShardsSkip != 1 {
		t.Fatalf("finished record: %+v", got)
	}
	if got.FinishedAt == nil {
		t.Fatal("finished_at not set")
	}

	runs, total, err := repo.List(ctx, "spot", 10, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if total < 1 || len(runs) == 0 {
		t.Fatalf("list: total=%d len=%d", total, len(runs))
	}
}

func TestRunFailureRecorded(t *testing.T) {
	database := connect(t)
	defer database.Close()

	ctx := context.Background()
	repo := db.NewRunRepo(database.DB)

	rec, err := repo.Start(ctx, "derivative", "wf-test-2")
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if err := repo.Finish(ctx, rec.ID, types.CategoryResult{Category: "derivative"}, "shard enumeration failed"); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	got, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Status != models.RunFailed || got.Error == "" {
		t.Fatalf("failed record: %+v", got)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	database := connect(t)
	defer database.Close()

	err := db.NewRunRepo(database.DB).Finish(context.Background(), 0, types.CategoryResult{}, "")
	if err != db.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
