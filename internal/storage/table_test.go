package storage

import (
	"testing"
	"time"
)

func TestTable_UpsertKeepsOneRowPerLink(t *testing.T) {
	tbl := NewTable()
	now := time.Unix(1700000000, 0).UTC()

	tbl.Upsert(&Result{Rank: 1, Title: "A", Link: "https://a.example", FetchedAt: now})
	tbl.Upsert(&Result{Rank: 2, Title: "B", Link: "https://b.example", FetchedAt: now})
	tbl.Upsert(&Result{Rank: 5, Title: "A2", Link: "https://a.example", FetchedAt: now.Add(time.Minute)})

	if tbl.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Len())
	}

	rows := tbl.Rows()
	if rows[0].Title != "A2" || rows[0].Rank != 5 {
		t.Errorf("expected replaced row in original position, got %+v", rows[0])
	}
}

func TestTable_UpsertCopiesInput(t *testing.T) {
	tbl := NewTable()
	r := &Result{Rank: 1, Title: "A", Link: "https://a.example"}
	tbl.Upsert(r)
	r.Title = "mutated"

	if got := tbl.Rows()[0].Title; got != "A" {
		t.Errorf("expected stored copy to be unaffected, got %q", got)
	}
}

func TestTable_SelectOrderingAndPaging(t *testing.T) {
	tbl := NewTable()
	older := time.Unix(1700000000, 0).UTC()
	newer := older.Add(time.Hour)

	tbl.Upsert(&Result{Rank: 1, Link: "https://old.example/1", FetchedAt: older})
	tbl.Upsert(&Result{Rank: 2, Link: "https://new.example/2", FetchedAt: newer})
	tbl.Upsert(&Result{Rank: 1, Link: "https://new.example/1", FetchedAt: newer})

	all := tbl.Select(Filter{})
	want := []string{"https://new.example/1", "https://new.example/2", "https://old.example/1"}
	if len(all) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(all))
	}
	for i, w := range want {
		if all[i].Link != w {
			t.Errorf("row %d: expected %s, got %s", i, w, all[i].Link)
		}
	}

	paged := tbl.Select(Filter{Offset: 1, Limit: 1})
	if len(paged) != 1 || paged[0].Link != "https://new.example/2" {
		t.Errorf("unexpected page: %+v", paged)
	}

	if got := tbl.Select(Filter{Offset: 10}); len(got) != 0 {
		t.Errorf("expected empty slice for large offset, got %d", len(got))
	}
}
