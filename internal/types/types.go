package types

// DayRecord is one day's activity as found in a shard file. Immutable once
// parsed; identifiers are opaque strings (subaccount ids on this exchange).
type DayRecord struct {
	Date          string   `json:"date"`
	SubaccountIDs []string `json:"subaccountIds"`
}

// DailyMetrics is the classification result for one day.
// Invariant: DAU == Returning + NewUsers.
type DailyMetrics struct {
	Date      string `json:"date"`
	DAU       int    `json:"dau"`
	Returning int    `json:"returningAddresses"`
	NewUsers  int    `json:"newUsers"`
}

// Seen-set backings selectable per category run.
const (
	SeenMemory = "memory"
	SeenBadger = "badger"
)

// CategoryParams drives one category's aggregation run.
type CategoryParams struct {
	Category  string `json:"category"`   // e.g. "spot", "derivative"
	InputDir  string `json:"input_dir"`  // directory holding the category's shard files
	OutputURI string `json:"output_uri"` // file:// or s3:// destination for the result document
	// StrictOrder enables the opt-in monotonic date assertion. Off by default:
	// shard and record order is trusted as delivered.
	StrictOrder bool   `json:"strict_order"`
	SeenStore   string `json:"seen_store"` // "memory" (default) or "badger"
	// Relative subdirectory under the scratch root for this run's badger
	// seen-set. Usually the workflow id; empty means the scratch root itself.
	ScratchSubdir string `json:"scratch_subdir,omitempty"`
}

// ShardFailure records a shard that was abandoned mid-parse. Days yielded
// before the failure point were kept.
type ShardFailure struct {
	Shard    string `json:"shard"`
	DaysKept int    `json:"days_kept"`
	Reason   string `json:"reason"`
}

// CategoryResult summarizes one category's run.
type CategoryResult struct {
	Category    string         `json:"category"`
	Days        int            `json:"days"`
	Identifiers uint64         `json:"identifiers"` // final seen-set cardinality
	Shards      int            `json:"shards"`
	Skipped     []ShardFailure `json:"skipped,omitempty"`
	OutputURI   string         `json:"output_uri"`
}

// RunParams drives a multi-category run.
type RunParams struct {
	Categories []CategoryParams `json:"categories"`
	// Optional relative subdirectory under the scratch root for badger
	// seen-sets. If empty, the scratch root is used directly.
	ScratchSubdir string `json:"scratch_subdir"`
	KeepScratch   bool   `json:"keep_scratch"`
}

// CategoryOutcome pairs a category with its result or failure. A failed
// category never aborts the others.
type CategoryOutcome struct {
	Category string         `json:"category"`
	Result   CategoryResult `json:"result"`
	Error    string         `json:"error,omitempty"`
}

// RunResult is the outcome of a multi-category run.
type RunResult struct {
	Outcomes []CategoryOutcome `json:"outcomes"`
}

// FetchParams drives the fetch/persist collaborator.
type FetchParams struct {
	URL            string            `json:"url"`
	Headers        map[string]string `json:"headers,omitempty"`
	DestinationURI string            `json:"destination_uri"`
	Format         string            `json:"format"` // "json", "text" or "csv"
}

// FetchResult reports what the fetch collaborator wrote.
type FetchResult struct {
	DestinationURI string `json:"destination_uri"`
	Bytes          int    `json:"bytes"`
}

// CleanupParams instructs the cleanup activity which subdir to remove.
type CleanupParams struct {
	ScratchSubdir string `json:"scratch_subdir"`
}
