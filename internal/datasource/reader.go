package datasource

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dca-dashboard/internal/api"
	"dca-dashboard/internal/logger"
	"dca-dashboard/internal/metrics"
	"dca-dashboard/internal/types"
)

// maxLineBytes bounds a single NDJSON record. Snapshots carry every open
// position so they can be much longer than bufio's 64KiB default.
const maxLineBytes = 16 << 20

// Reader fetches bot files relative to the client's base URL.
type Reader struct {
	client *api.Client
}

func NewReader(client *api.Client) *Reader {
	return &Reader{client: client}
}

// Path returns the URL a resource name resolves to.
func (r *Reader) Path(name string) string {
	return r.client.URL(name)
}

// FetchJSON reads a single JSON document. Absence is an error here: the
// singleton files are expected whenever the bot is running.
func FetchJSON[T any](ctx context.Context, r *Reader, name string) (T, error) {
	var out T
	start := time.Now()

	resp, err := r.client.GET(ctx, name)
	if err != nil {
		derr := transportError(name, err)
		metrics.ObserveFetch(name, fetchResult(derr.Kind), time.Since(start))
		return out, derr
	}

	if err := json.Unmarshal(resp.Body, &out); err != nil {
		metrics.ObserveFetch(name, metrics.FetchParsing, time.Since(start))
		return out, &DataError{
			Kind:    KindParsing,
			File:    name,
			Message: fmt.Sprintf("Failed to parse JSON from %s", name),
			Details: err.Error(),
			Err:     err,
		}
	}

	metrics.ObserveFetch(name, metrics.FetchOK, time.Since(start))
	return out, nil
}

// FetchNDJSON reads a newline-delimited stream. A missing file yields an
// empty slice; each line decodes on its own and bad lines are skipped.
// Records come back in file order.
func FetchNDJSON[T any](ctx context.Context, r *Reader, name string, opts types.StreamOptions) ([]T, error) {
	start := time.Now()
	results := make([]T, 0)

	resp, err := r.client.GET(ctx, name)
	if err != nil {
		if api.IsNotFound(err) {
			metrics.ObserveFetch(name, metrics.FetchAbsent, time.Since(start))
			return results, nil
		}
		derr := transportError(name, err)
		metrics.ObserveFetch(name, fetchResult(derr.Kind), time.Since(start))
		return nil, derr
	}

	sc := bufio.NewScanner(bytes.NewReader(resp.Body))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		rec, err := decodeLine[T](line)
		if err != nil {
			metrics.SkipLine(name)
			logger.MalformedLine(ctx, name, lineNo, err, "content", truncate(line, 200))
			continue
		}

		if (opts.From != nil || opts.To != nil) && !inWindow(line, opts) {
			continue
		}

		results = append(results, rec)
		if opts.Limit > 0 && len(results) >= opts.Limit {
			break
		}
	}
	if err := sc.Err(); err != nil {
		// A line longer than maxLineBytes ends the scan; keep what was read.
		metrics.SkipLine(name)
		logger.MalformedLine(ctx, name, lineNo+1, err)
	}

	metrics.AddRecords(name, len(results))
	metrics.ObserveFetch(name, metrics.FetchOK, time.Since(start))
	return results, nil
}

// Exists probes a resource with HEAD. Any failure counts as absent.
func Exists(ctx context.Context, r *Reader, name string) bool {
	_, err := r.client.HEAD(ctx, name)
	return err == nil
}

var errNullRecord = errors.New("null record")

func decodeLine[T any](line []byte) (T, error) {
	var rec T
	if bytes.Equal(line, []byte("null")) {
		return rec, errNullRecord
	}
	err := json.Unmarshal(line, &rec)
	return rec, err
}

// inWindow applies From/To to records that carry a parseable ts. Records
// without one are kept.
func inWindow(line []byte, opts types.StreamOptions) bool {
	var probe struct {
		Ts *string `json:"ts"`
	}
	if err := json.Unmarshal(line, &probe); err != nil || probe.Ts == nil {
		return true
	}
	ts, ok := types.ParseTimestamp(*probe.Ts)
	if !ok {
		return true
	}
	if opts.From != nil && ts.Before(*opts.From) {
		return false
	}
	if opts.To != nil && ts.After(*opts.To) {
		return false
	}
	return true
}

func transportError(name string, err error) *DataError {
	var se *api.StatusError
	if errors.As(err, &se) {
		kind := KindNetwork
		if api.IsNotFound(err) {
			kind = KindNotFound
		}
		return &DataError{
			Kind:    kind,
			File:    name,
			Message: fmt.Sprintf("Failed to fetch %s: %s", name, se.Status),
			Err:     err,
		}
	}
	return &DataError{
		Kind:    KindNetwork,
		File:    name,
		Message: fmt.Sprintf("Network error fetching %s", name),
		Details: err.Error(),
		Err:     err,
	}
}

func fetchResult(kind Kind) string {
	switch kind {
	case KindNotFound:
		return metrics.FetchNotFound
	case KindParsing:
		return metrics.FetchParsing
	default:
		return metrics.FetchNetwork
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
