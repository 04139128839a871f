package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{"": "", "new": CategoryNew, " TOP ": CategoryTop, "Sale": CategorySale} {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseCategory("clearance")
	assert.Error(t, err)
}

func TestProduct_Matches(t *testing.T) {
	p := Product{Name: "Office Desk", Description: "Ergonomic office desk with storage"}

	assert.True(t, p.Matches("desk"))
	assert.True(t, p.Matches("ERGONOMIC"))
	assert.True(t, p.Matches(""))
	assert.False(t, p.Matches("sofa"))
}

func TestSampleProducts(t *testing.T) {
	products := SampleProducts()
	require.Len(t, products, 6)

	seen := map[string]bool{}
	for _, p := range products {
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
		assert.True(t, p.Price.IsPositive())
		if p.OldPrice != nil {
			assert.True(t, p.OldPrice.GreaterThan(p.Price), p.Name)
		}
	}
	assert.Equal(t, "89.99", products[4].Price.StringFixed(2))
}

func TestProduct_CartLine(t *testing.T) {
	p := SampleProducts()[0]
	l := p.CartLine(2)

	assert.Equal(t, p.ID, l.ID)
	assert.Equal(t, p.Name, l.Name)
	assert.True(t, p.Price.Equal(l.Price))
	assert.Equal(t, p.Image, l.Image)
	assert.Equal(t, 2, l.Quantity)
	assert.Equal(t, "200", l.Subtotal().String())
}
