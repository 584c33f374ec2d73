package search

import (
	"testing"

	"github.com/tbourn/go-font-catalogue/internal/domain"
)

func TestScore_WholeNameTiers(t *testing.T) {
	cases := []struct {
		query, name string
		want        float64
	}{
		{"Roboto", "Roboto", 10.0},
		{"rob", "Roboto", 5.0},
		{"oboto", "Roboto", 3.0},
		{"foo", "Foo Bar", 5.0},
		{"ROBOTO", "roboto", 10.0},
		{"xyz", "Roboto", 0},
	}
	for _, c := range cases {
		if got := Score(c.query, c.name, "", ""); got != c.want {
			t.Fatalf("Score(%q, %q) = %v; want %v", c.query, c.name, got, c.want)
		}
	}
}

func TestScore_MultiWordTokens(t *testing.T) {
	// whole name: prefix (5) ; tokens: "open" exact (2), "sa" partial (1)
	if got := Score("open sa", "Open Sans", "", ""); got != 8.0 {
		t.Fatalf("got %v; want 8", got)
	}
	// whole name: none ; tokens: "sans" exact (2), "mon" partial of "mono" (1), "zzz" nothing
	if got := Score("sans mon zzz", "Roboto Mono Sans", "", ""); got != 3.0 {
		t.Fatalf("got %v; want 3", got)
	}
	// whole name: exact (10) ; tokens: both exact (2+2)
	if got := Score("open sans", "Open Sans", "", ""); got != 14.0 {
		t.Fatalf("got %v; want 14", got)
	}
}

func TestScore_DesignerAndManufacturer(t *testing.T) {
	if got := Score("adobe", "Source Serif", "Frank Grießhammer", "Adobe Systems"); got != 1.0 {
		t.Fatalf("manufacturer only: got %v; want 1", got)
	}
	if got := Score("frank", "Source Serif", "Frank Grießhammer", "Frank Type"); got != 2.5 {
		t.Fatalf("designer and manufacturer: got %v; want 2.5", got)
	}
	// case folding beyond ASCII
	if got := Score("ÉCOLE", "Source Serif", "atelier école", ""); got != 1.5 {
		t.Fatalf("folded designer: got %v; want 1.5", got)
	}
}

func TestScore_EmptyQuery(t *testing.T) {
	if got := Score("   ", "Anything", "Someone", "Foundry"); got != 0 {
		t.Fatalf("empty query should score 0, got %v", got)
	}
}

func TestRank_OrderAndTieBreaks(t *testing.T) {
	entries := []domain.CatalogueEntry{
		{Slug: "roboto-slab", FontName: "Roboto Slab", DownloadCount: 1},
		{Slug: "roboto", FontName: "Roboto"},
		{Slug: "b-roboto-mono", FontName: "Roboto Mono", DownloadCount: 9},
		{Slug: "a-roboto-mono", FontName: "Roboto Mono", DownloadCount: 9},
		{Slug: "xroboto", FontName: "XRoboto", DownloadCount: 100},
	}
	got := Rank("roboto", entries)
	wantOrder := []string{"roboto", "a-roboto-mono", "b-roboto-mono", "roboto-slab", "xroboto"}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d results, got %d", len(wantOrder), len(got))
	}
	for i, slug := range wantOrder {
		if got[i].Entry.Slug != slug {
			t.Fatalf("position %d: got %q want %q (all: %+v)", i, got[i].Entry.Slug, slug, got)
		}
	}
	if got[0].Score != 10 || got[1].Score != 5 || got[4].Score != 3 {
		t.Fatalf("unexpected scores %+v", got)
	}
}

func TestRank_Options(t *testing.T) {
	entries := []domain.CatalogueEntry{
		{Slug: "a", FontName: "Alpha"},
		{Slug: "b", FontName: "Beta", Designer: "alpha studio"},
		{Slug: "c", FontName: "Gamma"},
	}
	if got := Rank("alpha", entries, WithMinScore(2)); len(got) != 1 || got[0].Entry.Slug != "a" {
		t.Fatalf("min score: %+v", got)
	}
	if got := Rank("alpha", entries, WithLimit(2)); len(got) != 2 || got[1].Entry.Slug != "b" {
		t.Fatalf("limit: %+v", got)
	}
	// negative/zero options are ignored
	if got := Rank("alpha", entries, WithMinScore(-1), WithLimit(0)); len(got) != 3 {
		t.Fatalf("ignored options should keep all: %+v", got)
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank("x", nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
