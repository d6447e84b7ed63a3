// Package shards enumerates a category's shard files in chronological order.
//
// Shards follow a fixed positional naming convention, e.g.
// exchangeV2.spot_trades_2024_3.json: the year is the second-to-last
// underscore-separated field and the month is the last one (before the
// extension). Ordering across shards is what makes the downstream
// classification correct, so a filename that does not encode a key is fatal
// for the whole category rather than best-effort skipped.
package shards

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrEnumeration indicates the category's input directory cannot be listed.
	ErrEnumeration = errors.New("shard enumeration failed")
	// ErrNamingConvention indicates a shard filename does not encode a
	// parseable (year, month) key.
	ErrNamingConvention = errors.New("shard filename violates naming convention")
)

// Shard is one candidate input file with its extracted chronological key.
type Shard struct {
	Name  string // base filename within the category directory
	Path  string // full path
	Year  int
	Month int
}

// List returns the category directory's .json shards sorted ascending by
// (year, month). A missing directory is ErrEnumeration; an empty directory is
// an empty slice and nil error; downstream stages simply produce no output.
func List(dir string) ([]Shard, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEnumeration, dir, err)
	}

	var out []Shard
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		year, month, err := chronoKey(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, Shard{
			Name:  e.Name(),
			Path:  filepath.Join(dir, e.Name()),
			Year:  year,
			Month: month,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

// chronoKey extracts (year, month) from a shard filename. Positional: split on
// '_', year is the second-to-last field, month the last field minus ".json".
func chronoKey(name string) (int, int, error) {
	parts := strings.Split(strings.TrimSuffix(name, ".json"), "_")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: %s", ErrNamingConvention, name)
	}
	year, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: bad year field", ErrNamingConvention, name)
	}
	month, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: bad month field", ErrNamingConvention, name)
	}
	return year, month, nil
}
