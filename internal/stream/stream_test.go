package stream

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yourorg/market-metrics/internal/types"
)

func drain(t *testing.T, r *Reader) ([]types.DayRecord, error) {
	t.Helper()
	var recs []types.DayRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}

func TestNextYieldsAllRecords(t *testing.T) {
	in := `[
		{"date": "2024-01-01", "subaccountIds": ["a", "b"]},
		{"date": "2024-01-02", "subaccountIds": []},
		{"date": "2024-01-03", "subaccountIds": ["c"]}
	]`
	recs, err := drain(t, NewReader(strings.NewReader(in)))
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0].Date != "2024-01-01" || len(recs[0].SubaccountIDs) != 2 {
		t.Fatalf("first record: %+v", recs[0])
	}
	if len(recs[1].SubaccountIDs) != 0 {
		t.Fatalf("empty id list should parse as zero identifiers: %+v", recs[1])
	}
}

func TestNextEmptyArray(t *testing.T) {
	recs, err := drain(t, NewReader(strings.NewReader("[]")))
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("got %d records, want 0", len(recs))
	}
}

func TestTruncatedMidRecord(t *testing.T) {
	in := `[
		{"date": "2024-01-01", "subaccountIds": ["a"]},
		{"date": "2024-01-02", "subaccountIds": ["b",`
	recs, err := drain(t, NewReader(strings.NewReader(in)))
	if !errors.Is(err, ErrShardTruncated) {
		t.Fatalf("want ErrShardTruncated, got %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records before the cut must survive: got %d, want 1", len(recs))
	}
	if recs[0].Date != "2024-01-01" {
		t.Fatalf("kept record: %+v", recs[0])
	}
}

func TestTruncatedMissingClosingBracket(t *testing.T) {
	in := `[{"date": "2024-01-01", "subaccountIds": ["a"]}`
	recs, err := drain(t, NewReader(strings.NewReader(in)))
	if !errors.Is(err, ErrShardTruncated) {
		t.Fatalf("want ErrShardTruncated, got %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
}

func TestTruncatedEmptyStream(t *testing.T) {
	_, err := NewReader(strings.NewReader("")).Next()
	if !errors.Is(err, ErrShardTruncated) {
		t.Fatalf("want ErrShardTruncated, got %v", err)
	}
}

func TestRecordMissingDate(t *testing.T) {
	in := `[
		{"date": "2024-01-01", "subaccountIds": ["a"]},
		{"subaccountIds": ["b"]},
		{"date": "2024-01-03", "subaccountIds": ["c"]}
	]`
	recs, err := drain(t, NewReader(strings.NewReader(in)))
	if !errors.Is(err, ErrRecordFormat) {
		t.Fatalf("want ErrRecordFormat, got %v", err)
	}
	// Same policy as truncation: keep what came before, drop the rest.
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
}

func TestRecordMissingIdentifiers(t *testing.T) {
	in := `[{"date": "2024-01-01"}]`
	_, err := NewReader(strings.NewReader(in)).Next()
	if !errors.Is(err, ErrRecordFormat) {
		t.Fatalf("want ErrRecordFormat, got %v", err)
	}
}

func TestNotAnArray(t *testing.T) {
	_, err := NewReader(strings.NewReader(`{"date": "2024-01-01"}`)).Next()
	if !errors.Is(err, ErrRecordFormat) {
		t.Fatalf("want ErrRecordFormat, got %v", err)
	}
}

func TestErrorIsSticky(t *testing.T) {
	r := NewReader(strings.NewReader(`[{"date"`))
	_, err1 := r.Next()
	_, err2 := r.Next()
	if !errors.Is(err1, ErrShardTruncated) || !errors.Is(err2, ErrShardTruncated) {
		t.Fatalf("sticky error: first %v, second %v", err1, err2)
	}
}
