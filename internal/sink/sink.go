// Package sink collects the ordered per-day metrics for one category and
// writes them out as a single document once the run is over. Nothing touches
// the output location until Flush, so an aborted run leaves no partial file.
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/market-metrics/internal/storage"
	"github.com/yourorg/market-metrics/internal/types"
)

type Sink struct {
	log  *zap.Logger
	days []types.DailyMetrics
}

func New(log *zap.Logger) *Sink {
	return &Sink{log: log, days: make([]types.DailyMetrics, 0, 64)}
}

// Append records one classified day and emits its progress line.
func (s *Sink) Append(m types.DailyMetrics) {
	s.days = append(s.days, m)
	s.log.Info("day classified",
		zap.String("date", m.Date),
		zap.Int("dau", m.DAU),
		zap.Int("returning", m.Returning),
		zap.Int("new", m.NewUsers),
	)
}

// Days returns the number of days collected so far.
func (s *Sink) Days() int { return len(s.days) }

// Flush serializes the full ordered list to uri as one indented JSON document.
// An empty run writes an empty list, not an error.
func (s *Sink) Flush(ctx context.Context, uri string) error {
	doc, err := json.MarshalIndent(s.days, "", "    ")
	if err != nil {
		return fmt.Errorf("encode result document: %w", err)
	}
	w, closer, err := storage.Create(ctx, uri)
	if err != nil {
		return fmt.Errorf("create %s: %w", uri, err)
	}
	if _, err := w.Write(doc); err != nil {
		closer.Close()
		return fmt.Errorf("write %s: %w", uri, err)
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("close %s: %w", uri, err)
	}
	s.log.Info("result document written", zap.String("uri", uri), zap.Int("days", len(s.days)))
	return nil
}
