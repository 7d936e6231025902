package viewstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionLifecycle(t *testing.T) {
	c := NewCollection[string]()
	changes := 0
	unsubscribe := c.Subscribe(func() { changes++ })

	c.BeginLoad()
	assert.True(t, c.Snapshot().Loading)

	c.SetItems([]string{"a", "b"})
	st := c.Snapshot()
	assert.False(t, st.Loading)
	assert.Equal(t, []string{"a", "b"}, st.Items)

	c.BeginLoad()
	c.Fail("backend down")
	st = c.Snapshot()
	assert.False(t, st.Loading)
	assert.Equal(t, "backend down", st.Error)
	assert.Equal(t, 2, c.Len())

	c.BeginLoad()
	assert.Empty(t, c.Snapshot().Error)

	unsubscribe()
	c.SetItems(nil)
	assert.Equal(t, 5, changes)
}

func TestCollectionCopies(t *testing.T) {
	c := NewCollection[int]()
	in := []int{1, 2, 3}
	c.SetItems(in)
	in[0] = 99

	out := c.Items()
	assert.Equal(t, []int{1, 2, 3}, out)
	out[1] = 42
	assert.Equal(t, 2, c.Items()[1])

	c.Restore([]int{7})
	assert.Equal(t, []int{7}, c.Items())
}
