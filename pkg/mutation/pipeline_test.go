package mutation

import (
	"context"
	"errors"
	"testing"

	"chainview/pkg/models"
	"chainview/pkg/viewstate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID      string
	Deleted bool
}

func itemKey(it item) string { return it.ID }

func flipDeleted(it item) item {
	it.Deleted = !it.Deleted
	return it
}

type MockStatus struct {
	mock.Mock
}

func (m *MockStatus) Status(msg string) { m.Called(msg) }
func (m *MockStatus) Error(msg string)  { m.Called(msg) }

type fakePager struct {
	store   *viewstate.PaginationStore
	key     viewstate.Key
	reloads []int
	reload  func(page int) error
}

func newFakePager(pageSize int) *fakePager {
	return &fakePager{
		store: viewstate.NewPaginationStore(pageSize),
		key:   viewstate.NewKey("test", ""),
	}
}

func (f *fakePager) Pagination() viewstate.PaginationState { return f.store.Get(f.key) }
func (f *fakePager) GoToPage(page int)                     { f.store.GoToPage(f.key, page) }

func (f *fakePager) Reload(ctx context.Context) error {
	page := f.Pagination().CurrentPage
	f.reloads = append(f.reloads, page)
	if f.reload != nil {
		return f.reload(page)
	}
	return nil
}

func TestToggleRollbackOnFailure(t *testing.T) {
	items := viewstate.NewCollection[item]()
	items.SetItems([]item{{ID: "1", Deleted: false}})
	pager := newFakePager(10)

	status := new(MockStatus)
	status.On("Error", mock.Anything).Return()

	p := New(items, pager, itemKey, Options[item]{
		Mutate: func(ctx context.Context, op models.Operation, it item) error {
			assert.Equal(t, models.OpDelete, op)
			assert.True(t, items.Items()[0].Deleted, "optimistic state visible during the call")
			return errors.New("backend refused")
		},
		Status:     status,
		Processing: NewProcessingSet(0),
	})

	inflight := p.Start(Toggle[item]{Op: models.OpDelete, Item: item{ID: "1"}, Flip: flipDeleted})
	assert.Equal(t, []item{{ID: "1", Deleted: true}}, items.Items())
	assert.True(t, p.Processing().Has("1"))

	err := inflight.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend refused")

	assert.Equal(t, []item{{ID: "1", Deleted: false}}, items.Items())
	status.AssertNumberOfCalls(t, "Error", 1)
	status.AssertNotCalled(t, "Status", mock.Anything)
	assert.False(t, p.Processing().Has("1"))
	assert.Empty(t, pager.reloads)
}

func TestSuccessRefetches(t *testing.T) {
	items := viewstate.NewCollection[item]()
	items.SetItems([]item{{ID: "1"}, {ID: "2"}})
	pager := newFakePager(10)
	pager.reload = func(int) error {
		items.SetItems([]item{{ID: "1", Deleted: true}, {ID: "2"}})
		return nil
	}

	status := new(MockStatus)
	status.On("Status", "delete 1").Return()

	p := New(items, pager, itemKey, Options[item]{
		Mutate:     func(context.Context, models.Operation, item) error { return nil },
		Status:     status,
		Processing: NewProcessingSet(0),
	})

	err := p.Do(context.Background(), Toggle[item]{Op: models.OpDelete, Item: item{ID: "1"}, Flip: flipDeleted})
	require.NoError(t, err)

	assert.Equal(t, []int{0}, pager.reloads)
	assert.True(t, items.Items()[0].Deleted)
	status.AssertExpectations(t)
}

func TestRemovingLastRowOnPageGoesBack(t *testing.T) {
	pager := newFakePager(10)
	pager.store.SetTotalItems(pager.key, 21)
	pager.GoToPage(2)

	items := viewstate.NewCollection[item]()
	items.SetItems([]item{{ID: "z"}})
	pager.reload = func(page int) error {
		pager.store.SetTotalItems(pager.key, 21)
		if page == 2 {
			items.SetItems(nil)
			return nil
		}
		items.SetItems([]item{{ID: "a"}, {ID: "b"}})
		return nil
	}

	p := New(items, pager, itemKey, Options[item]{
		Mutate:     func(context.Context, models.Operation, item) error { return nil },
		Processing: NewProcessingSet(0),
	})

	inflight := p.Start(Remove[item]{Item: item{ID: "z"}})
	assert.Empty(t, items.Items())
	require.NoError(t, inflight.Wait(context.Background()))

	assert.Equal(t, []int{2, 1}, pager.reloads)
	assert.Equal(t, 1, pager.Pagination().CurrentPage)
	assert.Len(t, items.Items(), 2)
}

func TestRemovingLastRowKeepsPageClampedByReload(t *testing.T) {
	pager := newFakePager(10)
	pager.store.SetTotalItems(pager.key, 21)
	pager.GoToPage(2)

	items := viewstate.NewCollection[item]()
	items.SetItems([]item{{ID: "z"}})
	// the reload sees 20 rows and clamps page 2 back to page 1 itself
	pager.reload = func(page int) error {
		pager.store.SetTotalItems(pager.key, 20)
		if pg := pager.Pagination(); !pg.Valid() {
			pager.GoToPage(pg.ClampPage(page))
		}
		items.SetItems([]item{{ID: "a"}, {ID: "b"}})
		return nil
	}

	p := New(items, pager, itemKey, Options[item]{
		Mutate:     func(context.Context, models.Operation, item) error { return nil },
		Processing: NewProcessingSet(0),
	})
	require.NoError(t, p.Do(context.Background(), Remove[item]{Item: item{ID: "z"}}))

	assert.Equal(t, []int{2}, pager.reloads)
	assert.Equal(t, 1, pager.Pagination().CurrentPage)
}

func TestRemoveOnFirstPageStays(t *testing.T) {
	pager := newFakePager(10)
	items := viewstate.NewCollection[item]()
	items.SetItems([]item{{ID: "only"}})

	p := New(items, pager, itemKey, Options[item]{
		Mutate:     func(context.Context, models.Operation, item) error { return nil },
		Processing: NewProcessingSet(0),
	})
	require.NoError(t, p.Do(context.Background(), Remove[item]{Item: item{ID: "only"}}))
	assert.Equal(t, []int{0}, pager.reloads)
}

func TestMissingMutatorRollsBack(t *testing.T) {
	items := viewstate.NewCollection[item]()
	items.SetItems([]item{{ID: "1"}})
	p := New(items, newFakePager(10), itemKey, Options[item]{Processing: NewProcessingSet(0)})

	err := p.Do(context.Background(), Remove[item]{Item: item{ID: "1"}})
	assert.ErrorIs(t, err, ErrNoMutator)
	assert.Len(t, items.Items(), 1)
}

func TestCleanReloadsAndClampsPage(t *testing.T) {
	pager := newFakePager(10)
	pager.store.SetTotalItems(pager.key, 30)
	pager.GoToPage(2)
	pager.reload = func(int) error {
		pager.store.SetTotalItems(pager.key, 12)
		return nil
	}

	status := new(MockStatus)
	status.On("Status", "cleaned 2 items").Return()

	var cleaned []string
	p := New(viewstate.NewCollection[item](), pager, itemKey, Options[item]{
		Clean: func(ctx context.Context, ids []string) error {
			cleaned = ids
			return nil
		},
		Status: status,
	})

	require.NoError(t, p.Clean(context.Background(), []string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, cleaned)
	assert.Equal(t, []int{2, 1}, pager.reloads)
	status.AssertExpectations(t)
}

func TestCleanFailureEmitsError(t *testing.T) {
	pager := newFakePager(10)
	status := new(MockStatus)
	status.On("Error", mock.Anything).Return()

	p := New(viewstate.NewCollection[item](), pager, itemKey, Options[item]{
		Clean:  func(context.Context, []string) error { return errors.New("locked") },
		Status: status,
	})

	err := p.Clean(context.Background(), nil)
	assert.Error(t, err)
	status.AssertNumberOfCalls(t, "Error", 1)
	assert.Empty(t, pager.reloads)

	p = New(viewstate.NewCollection[item](), pager, itemKey, Options[item]{})
	assert.ErrorIs(t, p.Clean(context.Background(), nil), ErrNoCleaner)
}
