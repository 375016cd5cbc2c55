package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotesync-io/quotesync/internal/domain"
)

func testMirror(t *testing.T, path string) *Mirror {
	t.Helper()

	m, err := New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return m
}

func TestMirror_LoadQuotes_EmptyMirror(t *testing.T) {
	m := testMirror(t, ":memory:")

	records, ok, err := m.LoadQuotes(context.Background())

	require.NoError(t, err)
	assert.False(t, ok, "never-written mirror reports absent")
	assert.Nil(t, records)
}

func TestMirror_SaveLoadQuotes_RoundTrip(t *testing.T) {
	m := testMirror(t, ":memory:")
	ctx := context.Background()

	in := []domain.QuoteRecord{
		{ID: "a", Text: "first", Category: "One", Source: domain.SourceLocal, UpdatedAt: 1},
		{ID: "b", Text: "second", Category: "Two", Source: domain.SourceServer, UpdatedAt: 2},
	}

	require.NoError(t, m.SaveQuotes(ctx, in))

	out, ok, err := m.LoadQuotes(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestMirror_SaveQuotes_OverwritesWholesale(t *testing.T) {
	m := testMirror(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, m.SaveQuotes(ctx, []domain.QuoteRecord{
		{ID: "a", Text: "first", Category: "One", Source: domain.SourceLocal, UpdatedAt: 1},
	}))
	require.NoError(t, m.SaveQuotes(ctx, []domain.QuoteRecord{
		{ID: "b", Text: "second", Category: "Two", Source: domain.SourceLocal, UpdatedAt: 2},
	}))

	out, ok, err := m.LoadQuotes(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)
}

func TestMirror_SaveQuotes_EmptyCollection(t *testing.T) {
	m := testMirror(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, m.SaveQuotes(ctx, nil))

	out, ok, err := m.LoadQuotes(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "an emptied collection is still a written mirror")
	assert.Empty(t, out)
}

func TestMirror_CorruptedValueIsAnError(t *testing.T) {
	m := testMirror(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, m.save(ctx, keyQuotes, "{not json"))

	_, ok, err := m.LoadQuotes(ctx)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestMirror_FilterRoundTrip(t *testing.T) {
	m := testMirror(t, ":memory:")
	ctx := context.Background()

	got, err := m.LoadFilter(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "unset preference reads as empty")

	require.NoError(t, m.SaveFilter(ctx, "Wisdom"))
	require.NoError(t, m.SaveFilter(ctx, "all"))

	got, err = m.LoadFilter(ctx)
	require.NoError(t, err)
	assert.Equal(t, "all", got)
}

func TestMirror_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.db")
	ctx := context.Background()

	first := testMirror(t, path)
	require.NoError(t, first.SaveQuotes(ctx, []domain.QuoteRecord{
		{ID: "a", Text: "durable", Category: "Disk", Source: domain.SourceLocal, UpdatedAt: 1},
	}))
	require.NoError(t, first.SaveFilter(ctx, "Disk"))
	require.NoError(t, first.Close())

	second := testMirror(t, path)

	out, ok, err := second.LoadQuotes(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "durable", out[0].Text)

	filter, err := second.LoadFilter(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Disk", filter)
}

func TestMirror_HealthCheck(t *testing.T) {
	m := testMirror(t, ":memory:")

	assert.Equal(t, "sqlite-mirror", m.Name())
	assert.NoError(t, m.Check(context.Background()))

	require.NoError(t, m.Close())
	assert.Error(t, m.Check(context.Background()))
}
