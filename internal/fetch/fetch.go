// Package fetch retrieves market documents over HTTP and persists them as
// files. It produces the inputs the aggregation pipeline consumes; the
// pipeline itself never talks to the network.
package fetch

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/yourorg/market-metrics/internal/storage"
	"github.com/yourorg/market-metrics/internal/types"
)

// Supported persist formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatCSV  = "csv"
)

var ErrUnsupportedFormat = errors.New("unsupported persist format")

type Fetcher struct {
	client  *http.Client
	headers map[string]string
}

func New(headers map[string]string) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: 60 * time.Second},
		headers: headers,
	}
}

// FetchDocument GETs the URL and returns the response body, which must be
// valid JSON. Non-2xx statuses are errors.
func (f *Fetcher) FetchDocument(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch %s: response is not valid JSON", url)
	}
	return body, nil
}

// Persist writes doc to uri in the requested format. CSV requires the
// document to be an array of flat objects; the header row comes from the
// first object's keys.
func (f *Fetcher) Persist(ctx context.Context, doc json.RawMessage, uri, format string) (types.FetchResult, error) {
	var out []byte
	switch format {
	case FormatJSON, FormatText, "":
		// Text is the same bytes with no JSON extension expectations; both
		// re-indent for readability.
		var v any
		if err := json.Unmarshal(doc, &v); err != nil {
			return types.FetchResult{}, err
		}
		b, err := json.MarshalIndent(v, "", "    ")
		if err != nil {
			return types.FetchResult{}, err
		}
		out = b
	case FormatCSV:
		b, err := toCSV(doc)
		if err != nil {
			return types.FetchResult{}, err
		}
		out = b
	default:
		return types.FetchResult{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	w, closer, err := storage.Create(ctx, uri)
	if err != nil {
		return types.FetchResult{}, err
	}
	if _, err := w.Write(out); err != nil {
		closer.Close()
		return types.FetchResult{}, err
	}
	if err := closer.Close(); err != nil {
		return types.FetchResult{}, err
	}
	return types.FetchResult{DestinationURI: uri, Bytes: len(out)}, nil
}

// FetchAndPersist is the one-call collaborator surface used by the activity.
func (f *Fetcher) FetchAndPersist(ctx context.Context, p types.FetchParams) (types.FetchResult, error) {
	doc, err := f.FetchDocument(ctx, p.URL)
	if err != nil {
		return types.FetchResult{}, err
	}
	return f.Persist(ctx, doc, p.DestinationURI, p.Format)
}

func toCSV(doc json.RawMessage) ([]byte, error) {
	var rows []map[string]any
	if err := json.Unmarshal(doc, &rows); err != nil {
		return nil, fmt.Errorf("csv persist requires an array of objects: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Deterministic column order: first object's keys, sorted.
	header := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		header = append(header, k)
	}
	sort.Strings(header)

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	rec := make([]string, len(header))
	for _, row := range rows {
		for i, k := range header {
			rec[i] = stringify(row[k])
		}
		if err := cw.Write(rec); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
