// Package pipeline drives one category end to end: enumerate shards, stream
// each one, classify days against the category's seen-set, and flush the
// result document. Strictly sequential: shards in chronological order, days
// in file order, because every day's split depends on all prior days.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yourorg/market-metrics/internal/aggregate"
	"github.com/yourorg/market-metrics/internal/metrics"
	"github.com/yourorg/market-metrics/internal/shards"
	"github.com/yourorg/market-metrics/internal/sink"
	"github.com/yourorg/market-metrics/internal/storage"
	"github.com/yourorg/market-metrics/internal/stream"
	"github.com/yourorg/market-metrics/internal/types"
)

type Pipeline struct {
	log     *zap.Logger
	scratch string // root for badger seen-sets

	// OnShard, when set, is called after every shard attempt. The worker hooks
	// activity heartbeats here; the CLI leaves it nil.
	OnShard func(category, shard string, days int)
}

func New(log *zap.Logger, scratchDir string) *Pipeline {
	return &Pipeline{log: log, scratch: scratchDir}
}

// Run processes every category in params. A category failing is recorded in
// its outcome and never aborts the remaining categories.
func (p *Pipeline) Run(ctx context.Context, params types.RunParams) types.RunResult {
	var rr types.RunResult
	for _, cp := range params.Categories {
		if cp.ScratchSubdir == "" {
			cp.ScratchSubdir = params.ScratchSubdir
		}
		res, err := p.RunCategory(ctx, cp)
		oc := types.CategoryOutcome{Category: cp.Category, Result: res}
		if err != nil {
			oc.Error = err.Error()
			metrics.RunsFailed.Inc()
			p.log.Error("category run failed", zap.String("category", cp.Category), zap.Error(err))
		}
		rr.Outcomes = append(rr.Outcomes, oc)
	}
	return rr
}

// RunCategory aggregates one category. Enumeration and naming failures,
// ordering violations (strict mode) and output-write failures are fatal for
// the category; a truncated or malformed shard only costs that shard's
// unparsed remainder.
func (p *Pipeline) RunCategory(ctx context.Context, params types.CategoryParams) (types.CategoryResult, error) {
	res := types.CategoryResult{Category: params.Category, OutputURI: params.OutputURI}

	list, err := shards.List(params.InputDir)
	if err != nil {
		return res, err
	}

	seen, err := p.openSeen(params)
	if err != nil {
		return res, fmt.Errorf("open seen-set: %w", err)
	}
	defer seen.Close()

	agg := aggregate.New(seen, params.StrictOrder)
	snk := sink.New(p.log.With(zap.String("category", params.Category)))

	for _, sh := range list {
		p.log.Info("processing shard", zap.String("category", params.Category), zap.String("shard", sh.Name))
		kept, err := p.processShard(ctx, sh, agg, snk)
		if err != nil {
			if errors.Is(err, stream.ErrShardTruncated) || errors.Is(err, stream.ErrRecordFormat) {
				// Partial-failure policy: keep the days already classified,
				// drop the rest of this shard, move on.
				metrics.ShardsSkipped.Inc()
				res.Skipped = append(res.Skipped, types.ShardFailure{
					Shard:    sh.Name,
					DaysKept: kept,
					Reason:   err.Error(),
				})
				p.log.Warn("shard abandoned, continuing with next",
					zap.String("shard", sh.Name), zap.Int("days_kept", kept), zap.Error(err))
				if p.OnShard != nil {
					p.OnShard(params.Category, sh.Name, snk.Days())
				}
				continue
			}
			return res, fmt.Errorf("shard %s: %w", sh.Name, err)
		}
		metrics.ShardsProcessed.Inc()
		res.Shards++
		if p.OnShard != nil {
			p.OnShard(params.Category, sh.Name, snk.Days())
		}
	}

	res.Days = snk.Days()
	res.Identifiers = agg.SeenCount()

	if err := snk.Flush(ctx, params.OutputURI); err != nil {
		return res, err
	}
	metrics.RunsCompleted.Inc()
	return res, nil
}

// processShard streams one shard into the aggregator. Returns how many days
// this shard contributed, whether or not it ended in an error.
func (p *Pipeline) processShard(ctx context.Context, sh shards.Shard, agg *aggregate.Aggregator, snk *sink.Sink) (int, error) {
	rc, _, err := storage.Open(ctx, sh.Path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	r := stream.NewReader(rc)
	days := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return days, nil
		}
		if err != nil {
			return days, err
		}
		m, err := agg.Classify(rec)
		if err != nil {
			return days, err
		}
		metrics.DaysClassified.Inc()
		metrics.NewIdentifiers.Add(float64(m.NewUsers))
		snk.Append(m)
		days++
	}
}

func (p *Pipeline) openSeen(params types.CategoryParams) (aggregate.SeenSet, error) {
	if params.SeenStore == types.SeenBadger {
		dir := p.scratch
		if params.ScratchSubdir != "" {
			dir = filepath.Join(dir, filepath.Clean(params.ScratchSubdir))
		}
		return aggregate.NewBadgerSeen(filepath.Join(dir, params.Category+".seen.badger"))
	}
	return aggregate.NewMemorySeen(), nil
}
