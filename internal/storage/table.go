package storage

import "sort"

// Table is an in-memory, link-keyed set of results that preserves first
// insertion order. File-backed backends keep one in memory and rewrite the
// whole file from it after every Save.
type Table struct {
	rows  []*Result
	index map[string]int
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Upsert inserts r, or replaces the row that has the same link.
func (t *Table) Upsert(r *Result) {
	cp := *r
	if i, ok := t.index[r.Link]; ok {
		t.rows[i] = &cp
		return
	}
	t.index[r.Link] = len(t.rows)
	t.rows = append(t.rows, &cp)
}

// Rows returns the stored rows in insertion order.
func (t *Table) Rows() []*Result {
	return t.rows
}

// Len returns the number of distinct links.
func (t *Table) Len() int {
	return len(t.rows)
}

// Select applies filter and returns copies ordered by FetchedAt descending,
// then Rank ascending, matching the SQL backends.
func (t *Table) Select(filter Filter) []*Result {
	var out []*Result
	for _, r := range t.rows {
		if filter.Match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].FetchedAt.Equal(out[j].FetchedAt) {
			return out[i].FetchedAt.After(out[j].FetchedAt)
		}
		return out[i].Rank < out[j].Rank
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*Result{}
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out
}
