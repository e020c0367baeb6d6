package paging

import (
	"net/http/httptest"
	"slices"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestFromRequest(t *testing.T) {
	tests := []struct {
		target string
		want   Params
	}{
		{"/organisations", Params{Start: 1}},
		{"/organisations?after=abc&start=26", Params{After: "abc", Start: 26}},
		{"/organisations?before=xyz&start=0", Params{Before: "xyz", Start: 1}},
		{"/organisations?start=nope", Params{Start: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got := FromRequest(httptest.NewRequest("GET", tt.target, nil))
			if got != tt.want {
				t.Errorf("FromRequest(%q) = %+v, want %+v", tt.target, got, tt.want)
			}
		})
	}
}

func TestTrimPage(t *testing.T) {
	full := seq(PageSize + 1)
	tests := []struct {
		name          string
		rows          []int
		before, after string
		wantFirst     int
		wantLen       int
		want          Result
	}{
		{"first page, short", seq(3), "", "", 0, 3, Result{}},
		{"first page, more follow", full, "", "", 0, PageSize, Result{HasNext: true}},
		{"after cursor, more follow", full, "", "c", 0, PageSize, Result{HasPrev: true, HasNext: true}},
		{"after cursor, last page", seq(3), "", "c", 0, 3, Result{HasPrev: true}},
		{"before cursor, earlier exist", full, "c", "", 1, PageSize, Result{HasPrev: true, HasNext: true}},
		{"before cursor, reached start", seq(3), "c", "", 0, 3, Result{HasNext: true}},
		{"empty", []int{}, "", "", 0, 0, Result{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := slices.Clone(tt.rows)
			got := TrimPage(&rows, tt.before, tt.after)
			if got != tt.want {
				t.Errorf("TrimPage() = %+v, want %+v", got, tt.want)
			}
			if len(rows) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(rows), tt.wantLen)
			}
			if len(rows) > 0 && rows[0] != tt.wantFirst {
				t.Errorf("first row = %d, want %d", rows[0], tt.wantFirst)
			}
		})
	}
}

func TestComputeRange(t *testing.T) {
	tests := []struct {
		name         string
		start, shown int
		want         Range
	}{
		{"no results", 1, 0, Range{PrevStart: 1, NextStart: 1}},
		{"first page", 1, PageSize, Range{Start: 1, End: PageSize, PrevStart: 1, NextStart: PageSize + 1}},
		{"partial", 1, 4, Range{Start: 1, End: 4, PrevStart: 1, NextStart: 5}},
		{"third page", 2*PageSize + 1, 3, Range{Start: 2*PageSize + 1, End: 2*PageSize + 3, PrevStart: PageSize + 1, NextStart: 2*PageSize + 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeRange(tt.start, tt.shown); got != tt.want {
				t.Errorf("ComputeRange(%d, %d) = %+v, want %+v", tt.start, tt.shown, got, tt.want)
			}
		})
	}
}

func TestConfigureKeyset(t *testing.T) {
	tests := []struct {
		name, before, after string
		wantDir             Direction
		wantOrder           int
	}{
		{"first page", "", "", Forward, 1},
		{"after", "", "x", Forward, 1},
		{"before", "x", "", Backward, -1},
		{"before wins", "x", "y", Backward, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfigureKeyset(tt.before, tt.after)
			if got.Direction != tt.wantDir || got.SortOrder != tt.wantOrder {
				t.Errorf("ConfigureKeyset() = {%v %d}, want {%v %d}", got.Direction, got.SortOrder, tt.wantDir, tt.wantOrder)
			}
		})
	}

	if w := ConfigureKeyset("", "").KeysetWindow("name_ci"); w != nil {
		t.Errorf("KeysetWindow without cursor = %v, want nil", w)
	}
}

func TestReverse(t *testing.T) {
	for n := 0; n < 5; n++ {
		rows := seq(n)
		Reverse(rows)
		want := seq(n)
		slices.Reverse(want)
		if !slices.Equal(rows, want) {
			t.Errorf("Reverse(seq(%d)) = %v, want %v", n, rows, want)
		}
	}
}

type row struct {
	NameCI string
	ID     primitive.ObjectID
}

func TestBuildCursors(t *testing.T) {
	key := func(r row) string { return r.NameCI }
	id := func(r row) primitive.ObjectID { return r.ID }

	if prev, next := BuildCursors([]row{}, key, id); prev != "" || next != "" {
		t.Errorf("empty rows: got (%q, %q)", prev, next)
	}

	one := []row{{"acme", primitive.NewObjectID()}}
	prev, next := BuildCursors(one, key, id)
	if prev == "" || prev != next {
		t.Errorf("single row: got (%q, %q), want equal non-empty cursors", prev, next)
	}

	two := []row{{"acme", primitive.NewObjectID()}, {"zenith", primitive.NewObjectID()}}
	prev, next = BuildCursors(two, key, id)
	if prev == "" || next == "" || prev == next {
		t.Errorf("two rows: got (%q, %q), want distinct cursors", prev, next)
	}

	c := ConfigureKeyset("", next)
	if c.Cursor == nil || c.Cursor.CI != "zenith" || c.Cursor.ID != two[1].ID {
		t.Errorf("next cursor does not decode to the last row: %+v", c.Cursor)
	}
}
