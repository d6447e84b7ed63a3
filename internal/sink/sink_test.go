package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/yourorg/market-metrics/internal/types"
)

func TestFlushWritesOrderedDocument(t *testing.T) {
	s := New(zap.NewNop())
	s.Append(types.DailyMetrics{Date: "2024-01-01", DAU: 2, Returning: 0, NewUsers: 2})
	s.Append(types.DailyMetrics{Date: "2024-01-02", DAU: 2, Returning: 1, NewUsers: 1})

	out := filepath.Join(t.TempDir(), "spot_dau.json")
	if err := s.Flush(context.Background(), "file://"+out); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var got []types.DailyMetrics
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 2 || got[0].Date != "2024-01-01" || got[1].Date != "2024-01-02" {
		t.Fatalf("document order: %+v", got)
	}
	if got[1].Returning != 1 {
		t.Fatalf("round-trip: %+v", got[1])
	}
}

func TestFlushEmptyRunWritesEmptyList(t *testing.T) {
	s := New(zap.NewNop())
	out := filepath.Join(t.TempDir(), "empty.json")
	if err := s.Flush(context.Background(), "file://"+out); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	b, _ := os.ReadFile(out)
	var got []types.DailyMetrics
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty list, got %v (raw %q)", got, string(b))
	}
}

func TestFlushFailurePropagates(t *testing.T) {
	s := New(zap.NewNop())
	s.Append(types.DailyMetrics{Date: "2024-01-01", DAU: 1, NewUsers: 1})
	// Parent of the output path is a file, so the create must fail.
	parent := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(parent, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(context.Background(), "file://"+filepath.Join(parent, "out.json")); err == nil {
		t.Fatal("expected write failure")
	}
}
