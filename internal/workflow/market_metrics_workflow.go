package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yourorg/market-metrics/internal/types"
)

// MarketMetricsWorkflow aggregates every requested category, one after
// another. A category's classification is an order-dependent state machine;
// categories share no state with each other. One category failing is recorded
// in its outcome and the rest still run.
func MarketMetricsWorkflow(ctx workflow.Context, p types.RunParams) (types.RunResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 4 * time.Hour,
		HeartbeatTimeout:    5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	scratch := p.ScratchSubdir
	if scratch == "" {
		scratch = workflow.GetInfo(ctx).WorkflowExecution.ID
	}

	var rr types.RunResult
	for _, cp := range p.Categories {
		if cp.ScratchSubdir == "" {
			cp.ScratchSubdir = scratch
		}
		var res types.CategoryResult
		oc := types.CategoryOutcome{Category: cp.Category}
		if err := workflow.ExecuteActivity(ctx, "Activities.AggregateCategory", cp).Get(ctx, &res); err != nil {
			oc.Error = err.Error()
		}
		oc.Result = res
		rr.Outcomes = append(rr.Outcomes, oc)
	}

	if !p.KeepScratch {
		// Cleanup is best effort; a leftover scratch dir is not a run failure.
		cleanupAO := workflow.ActivityOptions{
			StartToCloseTimeout: 5 * time.Minute,
			RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
		}
		cctx := workflow.WithActivityOptions(ctx, cleanupAO)
		_ = workflow.ExecuteActivity(cctx, "Activities.CleanupScratch", types.CleanupParams{
			ScratchSubdir: scratch,
		}).Get(cctx, nil)
	}

	return rr, nil
}
