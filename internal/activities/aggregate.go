package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.uber.org/zap"

	"github.com/yourorg/market-metrics/internal/pipeline"
	"github.com/yourorg/market-metrics/internal/types"
)

// AggregateCategory runs one category's full aggregation. Heartbeats after
// every shard; a run record is written when a database is configured.
func (a *Activities) AggregateCategory(ctx context.Context, p types.CategoryParams) (types.CategoryResult, error) {
	pl := pipeline.New(a.log, a.cfg.ScratchDir)
	pl.OnShard = func(category, shard string, days int) {
		activity.RecordHeartbeat(ctx, map[string]any{
			"category": category,
			"shard":    shard,
			"days":     days,
		})
	}

	var runID uint
	if a.runs != nil {
		info := activity.GetInfo(ctx)
		if rec, err := a.runs.Start(ctx, p.Category, info.WorkflowExecution.ID); err == nil {
			runID = rec.ID
		} else {
			a.log.Warn("run record not created", zap.Error(err))
		}
	}

	res, err := pl.RunCategory(ctx, p)

	if a.runs != nil && runID != 0 {
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		if ferr := a.runs.Finish(context.Background(), runID, res, msg); ferr != nil {
			a.log.Warn("run record not finalized", zap.Error(ferr))
		}
	}
	return res, err
}
