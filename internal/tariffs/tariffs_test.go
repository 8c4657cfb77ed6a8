package tariffs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	cat := Catalog()
	require.Len(t, cat, 4)

	want := map[int]int{30: 100, 90: 250, 180: 450, 365: 800}
	for _, tr := range cat {
		assert.Equal(t, want[tr.Days], tr.Price, "price for %d days", tr.Days)
		assert.NotEmpty(t, tr.Label)
	}
}

func TestByDays(t *testing.T) {
	tr, ok := ByDays(90)
	require.True(t, ok)
	assert.Equal(t, 250, tr.Price)
	assert.Equal(t, "3 months", tr.Label)

	_, ok = ByDays(45)
	assert.False(t, ok)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "1 month", Label(30))
	assert.Equal(t, "12 months", Label(365))
	assert.Equal(t, "45 days", Label(45))
}
