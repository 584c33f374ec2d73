package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/repo"
)

func TestStatsService_LocalSearchSummary_Empty(t *testing.T) {
	svc := &StatsService{DB: newServiceDB(t)}
	agg, err := svc.LocalSearchSummary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, agg.TotalSearches)
	assert.Zero(t, agg.AvgResults)
	assert.NotNil(t, agg.TopQueries)
	assert.Empty(t, agg.TopQueries)
}

func TestStatsService_LocalSearchSummary_TopQueries(t *testing.T) {
	ctx := context.Background()
	db := newServiceDB(t)
	cat := NewCatalogueService(db, nil, nil)
	_, _, err := cat.Refresh(ctx, rec("arial", "Arial"), nil)
	require.NoError(t, err)

	runs := []struct {
		user  int64
		query string
	}{
		{1, "arial"}, {2, "arial"}, {1, "arial"},
		{3, "roboto"}, {3, "roboto"},
		{4, "a"}, {5, "b"}, {6, "c"}, {7, "d"},
	}
	for _, r := range runs {
		_, err := cat.Search(ctx, r.user, r.query)
		require.NoError(t, err)
	}

	svc := &StatsService{DB: db}
	agg, err := svc.LocalSearchSummary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 9, agg.TotalSearches)
	assert.EqualValues(t, 7, agg.DistinctUsers)
	assert.EqualValues(t, 6, agg.DistinctQueries)
	require.Len(t, agg.TopQueries, DefaultTopQueries)
	assert.Equal(t, repo.QueryCount{Query: "arial", Count: 3}, agg.TopQueries[0])
	assert.Equal(t, repo.QueryCount{Query: "roboto", Count: 2}, agg.TopQueries[1])
	assert.Equal(t, "a", agg.TopQueries[2].Query)

	// "arial" matched once per run, and "a" matched "arial" too.
	assert.InDelta(t, 4.0/9.0, agg.AvgResults, 1e-9)
}

func TestStatsService_Overview(t *testing.T) {
	ctx := context.Background()
	db := newServiceDB(t)
	cat := NewCatalogueService(db, newFakeFiles(), nil)

	_, err := repo.UpsertUser(ctx, db, 1, "ann", "Ann")
	require.NoError(t, err)
	_, err = repo.UpsertUser(ctx, db, 2, "bob", "Bob")
	require.NoError(t, err)
	require.NoError(t, repo.SetAdmin(ctx, db, 2, true))

	q := mustSearch(t, db, 1, "x")
	_, _, err = cat.RecordFoundFont(ctx, q.ID, rec("x", "X"))
	require.NoError(t, err)
	_, err = cat.RecordUploadedFont(ctx, 2, rec("y", "Y"), "/fonts/y.ttf")
	require.NoError(t, err)

	svc := &StatsService{DB: db}
	ov, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, ov.Users)
	assert.EqualValues(t, 1, ov.Admins)
	assert.EqualValues(t, 1, ov.RemoteSearches)
	assert.EqualValues(t, 2, ov.Entries)
	assert.EqualValues(t, 1, ov.Documents)
	assert.EqualValues(t, 2, ov.Catalogue.TotalFonts)
	assert.EqualValues(t, 1, ov.Catalogue.TotalDocuments)
	assert.NotNil(t, ov.LocalSearch)
}

func TestStatsService_RebuildRepairsTamperedRow(t *testing.T) {
	ctx := context.Background()
	db := newServiceDB(t)
	cat := NewCatalogueService(db, newFakeFiles(), nil)

	e, _, err := cat.Refresh(ctx, rec("a", "A"), nil)
	require.NoError(t, err)
	_, err = cat.RecordUploadedFont(ctx, 1, rec("b", "B"), "/fonts/b.otf")
	require.NoError(t, err)
	_, err = cat.IncrementDownload(ctx, EntryRef{ID: e.ID})
	require.NoError(t, err)
	_, err = cat.Search(ctx, 1, "a")
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.CatalogueStats{}).
		Where("id = ?", domain.StatsRowID).
		Updates(map[string]any{"total_fonts": 99, "total_documents": 42, "total_downloads": 0, "local_searches": 0}).Error)

	svc := &StatsService{DB: db, Writer: cat.WriteLock()}
	st, err := svc.Rebuild(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.TotalFonts)
	assert.EqualValues(t, 1, st.TotalDocuments)
	assert.EqualValues(t, 1, st.TotalDownloads)
	assert.EqualValues(t, 1, st.LocalSearches)

	got, err := svc.Catalogue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.TotalFonts)
}
