// Package source defines the adapter contract between the fetch layer and
// the reconciler. Adapters hand over raw records already deserialized into
// field maps; nothing in this module issues network calls.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	GoogleBooks = "googlebooks"
	OpenLibrary = "openlibrary"
)

// Record is one raw source record: a source tag, the source-local
// identifier and a flat map of named fields holding scalars and arrays.
type Record struct {
	Source    string         `json:"source"`
	SourceID  string         `json:"source_id"`
	FetchedAt time.Time      `json:"fetched_at"`
	Fields    map[string]any `json:"fields"`
}

func (r Record) Ref() string {
	return r.Source + ":" + r.SourceID
}

// Str returns the named field as a string, "" when absent or not a string.
func (r Record) Str(name string) string {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Num returns the named field as a float64, handling the numeric types a
// JSON decode or a mapper may have produced.
func (r Record) Num(name string) (float64, bool) {
	switch v := r.Fields[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func (r Record) Bool(name string) (bool, bool) {
	v, ok := r.Fields[name].(bool)
	return v, ok
}

// Strs returns the named field as a string slice; scalar strings are
// promoted to a one-element slice.
func (r Record) Strs(name string) []string {
	switch v := r.Fields[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// Maps returns the named field as a slice of field maps (e.g. authors).
func (r Record) Maps(name string) []map[string]any {
	switch v := r.Fields[name].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		return []map[string]any{v}
	default:
		return nil
	}
}

func (r Record) Map(name string) map[string]any {
	m, _ := r.Fields[name].(map[string]any)
	return m
}

func (r Record) Has(name string) bool {
	v, ok := r.Fields[name]
	return ok && v != nil
}

// Source yields a lazy, finite sequence of raw records. The pipeline
// consumes the sequence exactly once per run.
type Source interface {
	Name() string
	Each(ctx context.Context, fn func(Record) error) error
}

// SliceSource adapts an in-memory batch of records, mainly for tests and
// for payloads the fetch layer already holds fully materialized.
type SliceSource struct {
	SourceName string
	Items      []Record
}

func (s *SliceSource) Name() string { return s.SourceName }

func (s *SliceSource) Each(ctx context.Context, fn func(Record) error) error {
	for _, rec := range s.Items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// Mapper turns one raw payload object into a Record.
type Mapper func(payload map[string]any, fetchedAt time.Time) (Record, error)

// JSONFileSource streams a JSON array of raw payload objects from disk,
// mapping each element as it is decoded. It stands in for the out-of-scope
// HTTP fetch layer: a fetch run dumps its responses, a load run reads them.
type JSONFileSource struct {
	SourceName string
	Path       string
	Map        Mapper
	FetchedAt  time.Time
}

func (s *JSONFileSource) Name() string { return s.SourceName }

func (s *JSONFileSource) Each(ctx context.Context, fn func(Record) error) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("source %s: open %s: %w", s.SourceName, s.Path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("source %s: read %s: %w", s.SourceName, s.Path, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return fmt.Errorf("source %s: %s: expected a JSON array", s.SourceName, s.Path)
	}

	fetchedAt := s.FetchedAt
	if fetchedAt.IsZero() {
		if info, err := f.Stat(); err == nil {
			fetchedAt = info.ModTime().UTC()
		} else {
			fetchedAt = time.Now().UTC()
		}
	}

	for dec.More() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var payload map[string]any
		if err := dec.Decode(&payload); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("source %s: decode %s: %w", s.SourceName, s.Path, err)
		}
		rec, err := s.Map(payload, fetchedAt)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}
