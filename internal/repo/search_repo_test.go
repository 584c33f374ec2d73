package repo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-font-catalogue/internal/domain"
)

func TestCreateSearchQuery_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	q, err := CreateSearchQuery(context.Background(), db, 1, "arial")
	if err == nil || q != nil {
		t.Fatalf("expected error creating without table, got q=%v err=%v", q, err)
	}
}

func TestCreateFoundFont_KeepsRawRecord(t *testing.T) {
	db := newCatalogueDB(t)
	ctx := context.Background()

	q, err := CreateSearchQuery(ctx, db, 7, "roboto")
	if err != nil {
		t.Fatalf("CreateSearchQuery: %v", err)
	}
	if q.ID == 0 || q.SearchedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", q)
	}

	rec := domain.ExternalFontRecord{Slug: "roboto", FontName: "Roboto", Designer: "Christian Robertson", ContributorName: "Bob"}
	ff, err := CreateFoundFont(ctx, db, q.ID, rec, "https://dl/roboto.zip")
	if err != nil {
		t.Fatalf("CreateFoundFont: %v", err)
	}

	var got domain.FoundFont
	if err := db.First(&got, ff.ID).Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.SearchQueryID != q.ID || got.Slug != "roboto" || got.DownloadURL != "https://dl/roboto.zip" || got.ContributorName != "Bob" {
		t.Fatalf("unexpected row %+v", got)
	}
	var raw domain.ExternalFontRecord
	if err := json.Unmarshal(got.Raw, &raw); err != nil {
		t.Fatalf("raw json: %v", err)
	}
	if raw != rec {
		t.Fatalf("raw record mismatch: %+v vs %+v", raw, rec)
	}
}

func TestSearchHistory_RoundTrip(t *testing.T) {
	db := newCatalogueDB(t)
	ctx := context.Background()

	if _, err := UpsertUser(ctx, db, 1, "u", "User One"); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	older := &domain.SearchQuery{UserID: 1, Query: "old", SearchedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := db.Create(older).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	newer, err := CreateSearchQuery(ctx, db, 1, "new")
	if err != nil {
		t.Fatalf("CreateSearchQuery: %v", err)
	}
	other, _ := CreateSearchQuery(ctx, db, 2, "someone else")

	recs := []domain.ExternalFontRecord{
		{Slug: "a", FontName: "A", Designer: "d1"},
		{Slug: "b", FontName: "B", Manufacturer: "m2"},
		{Slug: "a", FontName: "A", Designer: "d1"},
	}
	for _, r := range recs {
		if _, err := CreateFoundFont(ctx, db, newer.ID, r, domain.DownloadURL("", r.Slug)); err != nil {
			t.Fatalf("CreateFoundFont: %v", err)
		}
	}
	if _, err := CreateFoundFont(ctx, db, other.ID, recs[0], ""); err != nil {
		t.Fatalf("CreateFoundFont: %v", err)
	}

	hist, err := ListUserSearchHistory(ctx, db, 1, 0)
	if err != nil {
		t.Fatalf("ListUserSearchHistory: %v", err)
	}
	if len(hist) != 2 || hist[0].ID != newer.ID || hist[1].ID != older.ID {
		t.Fatalf("expected newest first for user 1 only, got %+v", hist)
	}
	if len(hist[0].Fonts) != 3 || len(hist[1].Fonts) != 0 {
		t.Fatalf("unexpected fonts per search: %d, %d", len(hist[0].Fonts), len(hist[1].Fonts))
	}

	det, err := GetSearchDetails(ctx, db, newer.ID)
	if err != nil {
		t.Fatalf("GetSearchDetails: %v", err)
	}
	if det.User == nil || det.User.DisplayName != "User One" {
		t.Fatalf("expected joined user, got %+v", det.User)
	}
	if det.Search.Query != "new" || len(det.Fonts) != 3 {
		t.Fatalf("unexpected details %+v", det)
	}
	for i, r := range recs {
		f := det.Fonts[i]
		if f.Slug != r.Slug || f.FontName != r.FontName || f.Designer != r.Designer || f.Manufacturer != r.Manufacturer {
			t.Fatalf("font %d mismatch: %+v vs %+v", i, f, r)
		}
	}

	limited, _ := ListUserSearchHistory(ctx, db, 1, 1)
	if len(limited) != 1 || limited[0].ID != newer.ID {
		t.Fatalf("limit not applied: %+v", limited)
	}
}

func TestGetSearchDetails_NotFoundAndUnregisteredUser(t *testing.T) {
	db := newCatalogueDB(t)
	ctx := context.Background()

	if _, err := GetSearchDetails(ctx, db, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	q, _ := CreateSearchQuery(ctx, db, 5, "ghost")
	det, err := GetSearchDetails(ctx, db, q.ID)
	if err != nil {
		t.Fatalf("GetSearchDetails: %v", err)
	}
	if det.User != nil {
		t.Fatalf("expected nil user for unregistered id, got %+v", det.User)
	}
	if det.Fonts == nil || len(det.Fonts) != 0 {
		t.Fatalf("expected empty non-nil fonts, got %#v", det.Fonts)
	}
}

func TestListSearches_CountsAndLimit(t *testing.T) {
	db := newCatalogueDB(t)
	ctx := context.Background()

	q1 := &domain.SearchQuery{UserID: 1, Query: "one", SearchedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	q2 := &domain.SearchQuery{UserID: 2, Query: "two", SearchedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)}
	q3 := &domain.SearchQuery{UserID: 1, Query: "three", SearchedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)}
	for _, q := range []*domain.SearchQuery{q1, q2, q3} {
		if err := db.Create(q).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		_, _ = CreateFoundFont(ctx, db, q2.ID, domain.ExternalFontRecord{Slug: "s", FontName: "S"}, "")
	}

	out, err := ListSearches(ctx, db, 2)
	if err != nil {
		t.Fatalf("ListSearches: %v", err)
	}
	if len(out) != 2 || out[0].ID != q3.ID || out[1].ID != q2.ID {
		t.Fatalf("unexpected order/limit: %+v", out)
	}
	if out[0].FontCount != 0 || out[1].FontCount != 2 {
		t.Fatalf("unexpected counts: %d, %d", out[0].FontCount, out[1].FontCount)
	}

	n, err := CountSearchQueries(ctx, db)
	if err != nil || n != 3 {
		t.Fatalf("CountSearchQueries = %d, %v; want 3", n, err)
	}
}
