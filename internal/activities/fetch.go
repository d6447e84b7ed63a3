package activities

import (
	"context"

	"go.temporal.io/sdk/activity"
	"go.uber.org/zap"

	"github.com/yourorg/market-metrics/internal/types"
)

// FetchMarketList retrieves a market document and persists it at the
// destination URI in the requested format.
func (a *Activities) FetchMarketList(ctx context.Context, p types.FetchParams) (types.FetchResult, error) {
	activity.RecordHeartbeat(ctx, p.URL)
	res, err := a.fetcher.FetchAndPersist(ctx, p)
	if err != nil {
		return types.FetchResult{}, err
	}
	a.log.Info("market list persisted",
		zap.String("url", p.URL),
		zap.String("destination", res.DestinationURI),
		zap.Int("bytes", res.Bytes),
	)
	return res, nil
}
