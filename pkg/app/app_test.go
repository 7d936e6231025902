package app

import (
	"context"
	"errors"
	"testing"

	"chainview/pkg/backend"
	"chainview/pkg/models"
	"chainview/pkg/tableview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	statuses []string
	errors   []string
}

func (r *recorder) Status(msg string) { r.statuses = append(r.statuses, msg) }
func (r *recorder) Error(msg string)  { r.errors = append(r.errors, msg) }

func TestNewBuildsEveryTable(t *testing.T) {
	a := New(DemoSources(backend.NewDemo(0)), Options{})
	defer a.Close()

	sums := a.Summarizers()
	for _, k := range []string{
		"names/all", "names/custom", "names/deleted", "gallery",
		"monitors", "abis", "exports/transactions", "exports/balances",
		"chunks/index", "chunks/stats",
	} {
		assert.Contains(t, sums, k)
	}
	assert.Len(t, sums, 10)
	assert.Equal(t, GalleryPageSize, a.Gallery.Pagination().PageSize)
	assert.Equal(t, 10, a.Monitors.Pagination().PageSize)
}

func TestFacetsLoadTheirOwnRows(t *testing.T) {
	a := New(DemoSources(backend.NewDemo(0)), Options{PageSize: 5})
	ctx := context.Background()

	require.NoError(t, a.Names[backend.FacetCustom].Load(ctx))
	require.NoError(t, a.Names[backend.FacetAll].Load(ctx))

	assert.Equal(t, 19, a.Names[backend.FacetCustom].Pagination().TotalItems)
	assert.Equal(t, 57, a.Names[backend.FacetAll].Pagination().TotalItems)
	assert.Len(t, a.Names[backend.FacetAll].Items(), 5)
	assert.Equal(t, tableview.ModeRows, a.Names[backend.FacetAll].Props().Mode)
}

func TestRemoveOfLiveNameRollsBack(t *testing.T) {
	rec := &recorder{}
	a := New(DemoSources(backend.NewDemo(0)), Options{Status: rec})
	ctx := context.Background()
	names := a.Names[backend.FacetAll]
	require.NoError(t, names.Load(ctx))

	before := names.Items()
	live := before[1]
	require.False(t, live.Deleted)

	err := names.Remove(live).Wait(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, backend.ErrNotDeleted))
	assert.Equal(t, before, names.Items())
	assert.Len(t, rec.errors, 1)
}

func TestDeleteThenRemove(t *testing.T) {
	rec := &recorder{}
	demo := backend.NewDemo(0)
	a := New(DemoSources(demo), Options{Status: rec})
	ctx := context.Background()
	names := a.Names[backend.FacetAll]
	require.NoError(t, names.Load(ctx))

	target := names.Items()[1]
	flip := func(n models.Name) models.Name { n.Deleted = !n.Deleted; return n }
	require.NoError(t, names.Toggle(models.OpDelete, target, flip).Wait(ctx))
	require.NoError(t, names.Remove(flip(target)).Wait(ctx))

	assert.Equal(t, 56, demo.Names.Len())
	assert.Equal(t, 56, names.Pagination().TotalItems)
	assert.Empty(t, rec.errors)
}

func TestUndeleteOnLastDeletedPageMovesBack(t *testing.T) {
	rec := &recorder{}
	a := New(DemoSources(backend.NewDemo(0)), Options{Status: rec, PageSize: 5})
	ctx := context.Background()
	deleted := a.Names[backend.FacetDeleted]
	require.NoError(t, deleted.Load(ctx))
	require.Equal(t, 6, deleted.Pagination().TotalItems)

	deleted.GoToPage(1)
	require.NoError(t, deleted.Load(ctx))
	require.Len(t, deleted.Items(), 1)

	last := deleted.Items()[0]
	flip := func(n models.Name) models.Name {
		n.Deleted = !n.Deleted
		return n
	}
	require.NoError(t, deleted.Toggle(models.OpUndelete, last, flip).Wait(ctx))

	pg := deleted.Pagination()
	assert.True(t, pg.Valid())
	assert.Equal(t, 0, pg.CurrentPage)
	assert.Equal(t, 5, pg.TotalItems)
	assert.Len(t, deleted.Items(), 5)
	assert.Empty(t, rec.errors)
}

func TestRemoteSources(t *testing.T) {
	c, err := backend.NewClient("http://127.0.0.1:1")
	require.NoError(t, err)
	src, err := RemoteSources(c)
	require.NoError(t, err)
	assert.NotNil(t, src.ChunkStats)

	a := New(src, Options{})
	err = a.Abis.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, tableview.ModeError, a.Abis.Props().Mode)
}
