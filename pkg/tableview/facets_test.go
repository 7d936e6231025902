package tableview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFacetCycling(t *testing.T) {
	facets := []string{"transactions", "balances"}

	assert.Equal(t, "balances", NextFacet(facets, "transactions"))
	assert.Equal(t, "transactions", NextFacet(facets, "balances"))
	assert.Equal(t, "balances", PrevFacet(facets, "transactions"))
	assert.Equal(t, "transactions", NextFacet(facets, "unknown"))
	assert.Equal(t, "x", NextFacet(nil, "x"))
	assert.Equal(t, facets, []string{"transactions", "balances"})
}
