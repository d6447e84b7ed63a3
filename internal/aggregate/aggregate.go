// Package aggregate implements the order-dependent DAU/DRU/new-user state
// machine. The seen-set is injected so the classifier can be tested in
// isolation and backed by memory or disk.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/yourorg/market-metrics/internal/types"
)

// ErrOutOfOrder signals a monotonic-date violation. Only raised when the
// strict-order assertion is enabled; by default shard and record order is
// trusted and no check is performed.
var ErrOutOfOrder = errors.New("day records out of chronological order")

// SeenSet is the ever-seen identifier accumulator for one category. It grows
// monotonically for the lifetime of a run and is never shared across
// categories.
type SeenSet interface {
	Contains(id string) (bool, error)
	Add(id string) error
	Len() uint64
	Close() error
}

// Aggregator consumes day records in chronological order and classifies each
// day's identifiers against everything seen on prior days.
type Aggregator struct {
	seen     SeenSet
	strict   bool
	lastDate string
}

// New returns an aggregator over the given seen-set. strictOrder enables the
// opt-in monotonic date assertion.
func New(seen SeenSet, strictOrder bool) *Aggregator {
	return &Aggregator{seen: seen, strict: strictOrder}
}

// Classify computes the day's metrics and folds its identifiers into the
// seen-set. Order-sensitive: the returning count depends on every previously
// classified day, so records must arrive in ascending date order across all
// shards combined.
func (a *Aggregator) Classify(rec types.DayRecord) (types.DailyMetrics, error) {
	if a.strict && a.lastDate != "" && rec.Date <= a.lastDate {
		return types.DailyMetrics{}, fmt.Errorf("%w: %q after %q", ErrOutOfOrder, rec.Date, a.lastDate)
	}

	// Duplicates within the source collapse here.
	current := make(map[string]struct{}, len(rec.SubaccountIDs))
	for _, id := range rec.SubaccountIDs {
		current[id] = struct{}{}
	}
	dau := len(current)

	// Membership checks must all happen before any insert, otherwise two
	// first-time identifiers on the same day could shadow each other.
	returning := 0
	for id := range current {
		ok, err := a.seen.Contains(id)
		if err != nil {
			return types.DailyMetrics{}, err
		}
		if ok {
			returning++
		}
	}

	for id := range current {
		if err := a.seen.Add(id); err != nil {
			return types.DailyMetrics{}, err
		}
	}

	a.lastDate = rec.Date
	return types.DailyMetrics{
		Date:      rec.Date,
		DAU:       dau,
		Returning: returning,
		NewUsers:  dau - returning,
	}, nil
}

// SeenCount exposes the current seen-set cardinality.
func (a *Aggregator) SeenCount() uint64 { return a.seen.Len() }
