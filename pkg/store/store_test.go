package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tilecalc/pkg/errors"
	"github.com/matzehuels/tilecalc/pkg/tile"
)

func record(t *testing.T, p tile.Pattern) *tile.Record {
	t.Helper()
	rec, err := tile.ComputeLayout(
		tile.Room{LengthM: 5.5, WidthM: 4.2},
		tile.TileSpec{LengthCm: 30, WidthCm: 30, SpacingMm: 2},
		p,
	)
	require.NoError(t, err)
	return rec
}

func calc(t *testing.T, name string, p tile.Pattern, created time.Time) *Calculation {
	t.Helper()
	c, err := New(name, record(t, p))
	require.NoError(t, err)
	c.CreatedAt = created
	return c
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	kitchen := calc(t, "Kitchen", tile.Grid, base)
	bath := calc(t, "Bathroom", tile.Herringbone, base.Add(time.Hour))
	bath.Status = StatusInProgress
	living := calc(t, "Living Room", tile.Grid, base.Add(2*time.Hour))
	living.Status = StatusDraft

	for _, c := range []*Calculation{kitchen, bath, living} {
		require.NoError(t, s.Save(ctx, c))
	}

	got, err := s.Get(ctx, kitchen.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", got.Name)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.True(t, kitchen.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.Record)
	assert.Equal(t, 266, got.Record.Result.TilesNeeded)
	assert.Len(t, got.Record.Cells, 266)

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{living.ID, bath.ID, kitchen.ID}, ids(all), "newest first")

	grids, err := s.List(ctx, ListOptions{Pattern: tile.Grid})
	require.NoError(t, err)
	assert.Equal(t, []string{living.ID, kitchen.ID}, ids(grids))

	drafts, err := s.List(ctx, ListOptions{Status: StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, []string{living.ID}, ids(drafts))

	paged, err := s.List(ctx, ListOptions{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{bath.ID}, ids(paged))

	// Save replaces by ID.
	kitchen.Status = StatusInProgress
	require.NoError(t, s.Save(ctx, kitchen))
	got, err = s.Get(ctx, kitchen.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, got.Status)

	require.NoError(t, s.Delete(ctx, bath.ID))
	_, err = s.Get(ctx, bath.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)
	err = s.Delete(ctx, bath.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)

	all, err = s.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func ids(calcs []*Calculation) []string {
	out := make([]string, len(calcs))
	for i, c := range calcs {
		out[i] = c.ID
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	c := calc(t, "Hall", tile.Brick, time.Now())
	require.NoError(t, s.Save(ctx, c))

	want := *c.Record
	want.Cells = append([]tile.Cell(nil), c.Record.Cells...)
	require.NotEmpty(t, want.Cells)

	c.Name = "changed"
	c.Record.Result.TilesNeeded = -1
	c.Record.Cells[0].Class = tile.Corner
	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hall", got.Name)
	assert.Equal(t, want, *got.Record, "mutating the saved value should not reach the store")

	got.Record.Result.WholeTiles = -1
	got.Record.Cells[0].XM = 99
	listed, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, want, *listed[0].Record, "mutating a returned value should not reach the store")

	listed[0].Record.Cells = nil
	again, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, again.Record.Cells, len(want.Cells))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "calcs"))
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestFileStoreRejectsBadID(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(ctx, "../../etc/passwd")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidID), "got %v", err)

	c := calc(t, "x", tile.Grid, time.Now())
	c.ID = "not-a-uuid"
	assert.True(t, errors.Is(s.Save(ctx, c), errors.ErrCodeInvalidID))
}

func TestFileStoreWritesAtomically(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	c := calc(t, "Bath", tile.Grid, time.Now())
	require.NoError(t, s.Save(ctx, c))
	c.Name = "Bath, renamed"
	require.NoError(t, s.Save(ctx, c))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the calculation file should remain")
	assert.Equal(t, c.ID+".json", entries[0].Name())

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bath, renamed", got.Name)
}

func TestFileStoreSkipsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, calc(t, "ok", tile.Grid, time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0600))

	all, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TILECALC_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TILECALC_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "tilecalc_test", Collection: "calc_" + time.Now().Format("150405")})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.coll.Drop(context.Background())
		_ = s.Close()
	})
	exerciseStore(t, s)
}

func TestNew(t *testing.T) {
	rec := record(t, tile.Diagonal)

	c, err := New("", rec)
	require.NoError(t, err)
	assert.Equal(t, "5.5 x 4.2 m diagonal", c.Name)
	assert.Equal(t, StatusCompleted, c.Status)
	assert.NoError(t, errors.ValidateCalculationID(c.ID))
	assert.False(t, c.CreatedAt.IsZero())

	other, err := New("", rec)
	require.NoError(t, err)
	assert.NotEqual(t, c.ID, other.ID)

	_, err = New("bad\x00name", rec)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = New("no record", nil)
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"", StatusCompleted, true},
		{"draft", StatusDraft, true},
		{" In-Progress ", StatusInProgress, true},
		{"completed", StatusCompleted, true},
		{"archived", "", false},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, "In Progress", StatusInProgress.Label())
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	a := calc(t, "a", tile.Grid, now)
	b := calc(t, "b", tile.Grid, now)
	b.Status = StatusDraft
	c := calc(t, "c", tile.Brick, now)
	empty := &Calculation{ID: "d", Status: StatusInProgress}

	s := Summarize([]*Calculation{a, b, c, empty})
	assert.Equal(t, 4, s.TotalCalculations)
	assert.Equal(t, 2, s.CompletedProjects)
	assert.Equal(t, 293*3, s.TotalTiles)
	assert.Equal(t, 0, s.SavedTiles)
	assert.InDelta(t, 3*23.1, s.TotalAreaM2, 1e-9)
	assert.Equal(t, map[tile.Pattern]int{tile.Grid: 2, tile.Brick: 1}, s.ByPattern)
	assert.Equal(t, 1, s.ByStatus[StatusDraft])
	assert.Equal(t, 1, s.ByStatus[StatusInProgress])

	zero := Summarize(nil)
	assert.Equal(t, 0, zero.TotalCalculations)
	assert.NotNil(t, zero.ByPattern)
}
