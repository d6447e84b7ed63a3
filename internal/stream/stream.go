// Package stream decodes one shard file as a lazy sequence of day records.
//
// A shard is a JSON array of day objects. The array is walked with the
// decoder's token API so peak memory is bounded by one day's record, not the
// whole file; a single shard can hold months of days with large identifier
// sets.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/yourorg/market-metrics/internal/types"
)

var (
	// ErrShardTruncated indicates the byte stream ended before the array
	// structure was complete. Records yielded before the failure point remain
	// valid; the remainder of the shard is lost.
	ErrShardTruncated = errors.New("shard truncated")
	// ErrRecordFormat indicates a record is missing a required field or is not
	// a day object at all. Treated like truncation: the rest of the shard is
	// abandoned, earlier records stand.
	ErrRecordFormat = errors.New("malformed day record")
)

// Reader yields day records from one shard, one per Next call. Single-pass,
// not safe for concurrent use.
type Reader struct {
	dec     *json.Decoder
	started bool
	err     error
}

// NewReader wraps r, which must produce a JSON array of day objects.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: json.NewDecoder(r)}
}

// Next returns the next day record. io.EOF signals a clean end of the shard;
// ErrShardTruncated and ErrRecordFormat abort the shard (the error is sticky).
func (r *Reader) Next() (types.DayRecord, error) {
	if r.err != nil {
		return types.DayRecord{}, r.err
	}
	rec, err := r.next()
	if err != nil {
		r.err = err
	}
	return rec, err
}

func (r *Reader) next() (types.DayRecord, error) {
	if !r.started {
		tok, err := r.dec.Token()
		if err != nil {
			return types.DayRecord{}, truncated(err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			return types.DayRecord{}, fmt.Errorf("%w: shard is not a JSON array", ErrRecordFormat)
		}
		r.started = true
	}

	if r.dec.More() {
		// Pointer fields distinguish a missing key from an empty value.
		var raw struct {
			Date          *string   `json:"date"`
			SubaccountIDs *[]string `json:"subaccountIds"`
		}
		if err := r.dec.Decode(&raw); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return types.DayRecord{}, fmt.Errorf("%w: %v", ErrRecordFormat, err)
			}
			return types.DayRecord{}, truncated(err)
		}
		if raw.Date == nil {
			return types.DayRecord{}, fmt.Errorf("%w: missing date", ErrRecordFormat)
		}
		if raw.SubaccountIDs == nil {
			return types.DayRecord{}, fmt.Errorf("%w: missing subaccountIds", ErrRecordFormat)
		}
		return types.DayRecord{Date: *raw.Date, SubaccountIDs: *raw.SubaccountIDs}, nil
	}

	// Consume the closing bracket; its absence means the stream was cut off
	// after the last complete record.
	if _, err := r.dec.Token(); err != nil {
		return types.DayRecord{}, truncated(err)
	}
	return types.DayRecord{}, io.EOF
}

func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: unexpected end of stream", ErrShardTruncated)
	}
	return fmt.Errorf("%w: %v", ErrShardTruncated, err)
}
