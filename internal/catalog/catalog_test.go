package catalog

import (
	"testing"

	"github.com/srujanab94/acp-commerce/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	c := NewStaticCatalog([]Product{
		{ID: "prod_1", Name: "Widget", Price: domain.Money{Amount: 100, Currency: "usd"}, Availability: InStock},
		{ID: "prod_2", Name: "Gadget", Price: domain.Money{Amount: 200, Currency: "usd"}, Availability: OutOfStock},
	})

	p, ok := c.Lookup("prod_1")
	require.True(t, ok)
	assert.Equal(t, "Widget", p.Name)
	assert.True(t, p.InStock())

	p, ok = c.Lookup("prod_2")
	require.True(t, ok)
	assert.False(t, p.InStock())

	_, ok = c.Lookup("prod_missing")
	assert.False(t, ok)
}

func TestLookupReturnsCopy(t *testing.T) {
	c := NewStaticCatalog([]Product{
		{ID: "prod_1", Name: "Widget", Availability: InStock},
	})

	p, ok := c.Lookup("prod_1")
	require.True(t, ok)
	p.Name = "changed"

	again, _ := c.Lookup("prod_1")
	assert.Equal(t, "Widget", again.Name)
}

func TestListPreservesFeedOrder(t *testing.T) {
	c := NewStaticCatalog([]Product{
		{ID: "prod_b"},
		{ID: "prod_a"},
		{ID: "prod_c"},
	})

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, "prod_b", list[0].ID)
	assert.Equal(t, "prod_a", list[1].ID)
	assert.Equal(t, "prod_c", list[2].ID)
}

func TestSeedFeed(t *testing.T) {
	c := Seed()
	list := c.List()
	require.NotEmpty(t, list)

	var outOfStock int
	for _, p := range list {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.Positive(t, p.Price.Amount)
		assert.Equal(t, "usd", p.Price.Currency)
		if !p.InStock() {
			outOfStock++
		}
	}
	// the feed keeps one unavailable product around for demos
	assert.Equal(t, 1, outOfStock)
}
