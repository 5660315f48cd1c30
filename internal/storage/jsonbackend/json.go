package jsonbackend

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/FranksOps/serpkeep/internal/storage"
)

// ensure jsonBackend implements storage.Backend
var _ storage.Backend = (*jsonBackend)(nil)

type jsonBackend struct {
	mu    sync.Mutex
	file  *os.File
	table *storage.Table
}

// record is the on-disk line format; fetched_at is epoch seconds.
type record struct {
	Rank      int     `json:"rank"`
	Title     string  `json:"title"`
	Link      string  `json:"link"`
	Snippet   *string `json:"snippet"`
	Query     string  `json:"query"`
	FetchedAt int64   `json:"fetched_at"`
}

// New creates a new NDJSON-backed storage.Backend. Existing lines are loaded
// so that later saves upsert against them.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filePath, err)
	}

	b := &jsonBackend{
		file:  f,
		table: storage.NewTable(),
	}

	if err := b.load(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return b, nil
}

func (b *jsonBackend) load() error {
	scanner := bufio.NewScanner(b.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("decode line %d: %w", lineNo, err)
		}
		if rec.Link == "" {
			return fmt.Errorf("line %d: empty link", lineNo)
		}

		r := &storage.Result{
			Rank:      rec.Rank,
			Title:     rec.Title,
			Link:      rec.Link,
			Query:     rec.Query,
			FetchedAt: time.Unix(rec.FetchedAt, 0).UTC(),
		}
		if rec.Snippet != nil {
			r.Snippet = *rec.Snippet
		}
		b.table.Upsert(r)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read lines: %w", err)
	}
	return nil
}

func (b *jsonBackend) Save(ctx context.Context, result *storage.Result) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.table.Upsert(result)
	return b.rewrite()
}

// rewrite replaces the file contents with one line per stored link.
func (b *jsonBackend) rewrite() error {
	if err := b.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	w := bufio.NewWriter(b.file)
	enc := json.NewEncoder(w)
	for _, r := range b.table.Rows() {
		rec := record{
			Rank:      r.Rank,
			Title:     r.Title,
			Link:      r.Link,
			Query:     r.Query,
			FetchedAt: r.FetchedAt.Unix(),
		}
		if r.Snippet != "" {
			snippet := r.Snippet
			rec.Snippet = &snippet
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode %s: %w", r.Link, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (b *jsonBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.table.Select(filter), nil
}

func (b *jsonBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
