package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yourorg/market-metrics/internal/types"
)

// FetchMarketsWorkflow retrieves market list documents and stores them as
// files. Each fetch is independent; a failed one is reported and the rest
// still run.
func FetchMarketsWorkflow(ctx workflow.Context, fetches []types.FetchParams) ([]types.FetchResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		HeartbeatTimeout:    2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	logger := workflow.GetLogger(ctx)
	results := make([]types.FetchResult, len(fetches))
	for i, fp := range fetches {
		if err := workflow.ExecuteActivity(ctx, "Activities.FetchMarketList", fp).Get(ctx, &results[i]); err != nil {
			logger.Error("fetch failed", "url", fp.URL, "error", err)
		}
	}
	return results, nil
}
