package csvbackend

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/FranksOps/serpkeep/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu    sync.Mutex
	file  *os.File
	table *storage.Table
}

// headers defines the CSV column order
var headers = []string{
	"rank",
	"title",
	"link",
	"snippet",
	"query",
	"fetched_at",
}

// New creates a new CSV-backed storage.Backend. Existing rows are loaded so
// that later saves upsert against them. A non-empty file whose header or rows
// do not match the results layout is rejected and left untouched.
func New(filePath string) (storage.Backend, error) {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filePath, err)
	}

	b := &csvBackend{
		file:  f,
		table: storage.NewTable(),
	}

	if err := b.load(); err != nil {
		_ = f.Close()
		return nil, err
	}

	// Write the header row even before the first save, but only into a
	// file that was empty.
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}
	if info.Size() == 0 {
		if err := b.rewrite(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return b, nil
}

func (b *csvBackend) load() error {
	r := csv.NewReader(b.file)
	r.FieldsPerRecord = len(headers)

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if !slices.Equal(header, headers) {
		return fmt.Errorf("unexpected header %q, want %q", header, headers)
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		line, _ := r.FieldPos(0)

		rank, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("line %d: rank: %w", line, err)
		}
		fetchedAt, err := strconv.ParseInt(rec[5], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: fetched_at: %w", line, err)
		}
		if rec[2] == "" {
			return fmt.Errorf("line %d: empty link", line)
		}

		b.table.Upsert(&storage.Result{
			Rank:      rank,
			Title:     rec[1],
			Link:      rec[2],
			Snippet:   rec[3],
			Query:     rec[4],
			FetchedAt: time.Unix(fetchedAt, 0).UTC(),
		})
	}

	return nil
}

func (b *csvBackend) Save(ctx context.Context, result *storage.Result) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.table.Upsert(result)
	return b.rewrite()
}

// rewrite replaces the file contents with the header and one row per link.
func (b *csvBackend) rewrite() error {
	if err := b.file.Truncate(0); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	w := csv.NewWriter(b.file)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range b.table.Rows() {
		record := []string{
			strconv.Itoa(r.Rank),
			r.Title,
			r.Link,
			r.Snippet,
			r.Query,
			strconv.FormatInt(r.FetchedAt.Unix(), 10),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", r.Link, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.table.Select(filter), nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
