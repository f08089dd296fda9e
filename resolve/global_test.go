package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/palette/entity"
)

func TestSearchWeightsByTypePriority(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.insert(t, entity.Entity{Type: entity.User, Name: "Acme"})
	f.insert(t, entity.Entity{Type: entity.Project, Name: "Acme"})
	f.insert(t, entity.Entity{Type: entity.Client, Name: "Acme"})
	f.insert(t, entity.Entity{Type: entity.Ticket, Title: "Acme"})

	res := f.r.Search(context.Background(), "acme", nil, tenant)
	require.Len(t, res.Items, 4)
	assert.Empty(t, res.Message)

	var order []entity.Type
	for _, c := range res.Items {
		order = append(order, c.Entity.Type)
	}
	assert.Equal(t, []entity.Type{entity.Client, entity.Ticket, entity.Project, entity.User}, order)
	assert.InDelta(t, 24.0, res.Items[0].Score, 1e-9)
	assert.InDelta(t, 14.0, res.Items[3].Score, 1e-9)
}

func TestSearchLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ResultLimit = 7
	f := newFixture(t, cfg)
	for i := 0; i < 8; i++ {
		f.insert(t, entity.Entity{Type: entity.Ticket, Title: fmt.Sprintf("printer %d", i)})
		f.insert(t, entity.Entity{Type: entity.Asset, Name: fmt.Sprintf("printer %d", i)})
	}

	res := f.r.Search(context.Background(), "printer", []entity.Type{entity.Ticket}, tenant)
	assert.Len(t, res.Items, 5, "per-type cap")

	res = f.r.Search(context.Background(), "printer", nil, tenant)
	assert.Len(t, res.Items, 7, "merged cap")
	for _, c := range res.Items[:5] {
		assert.Equal(t, entity.Ticket, c.Entity.Type, "ticket priority outranks asset")
	}
}

func TestSearchNoResults(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	res := f.r.Search(context.Background(), "initech", nil, tenant)
	assert.True(t, res.Empty())
	assert.Equal(t, `No results for "initech"`, res.Message)
	assert.Equal(t, "initech", res.Query)

	res = f.r.Search(context.Background(), "initech", nil, entity.Context{})
	assert.True(t, res.Empty(), "no tenant, no results")
	assert.NotEmpty(t, res.Message)
}

func TestSearchSkipsFailingTypes(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.store.failType = entity.Ticket
	f.insert(t, entity.Entity{Type: entity.Ticket, Title: "Acme outage"})
	f.insert(t, entity.Entity{Type: entity.Client, Name: "Acme"})

	res := f.r.Search(context.Background(), "acme", []entity.Type{entity.Ticket, entity.Client, "spaceship"}, tenant)
	require.Len(t, res.Items, 1)
	assert.Equal(t, entity.Client, res.Items[0].Entity.Type)
}

func TestSearchCachesPerTypeHits(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.insert(t, entity.Entity{Type: entity.Client, Name: "Acme"})
	ctx := context.Background()
	types := []entity.Type{entity.Client}

	first := f.r.Search(ctx, "Acme", types, tenant)
	calls := f.store.count()
	second := f.r.Search(ctx, "acme", types, tenant)
	assert.Equal(t, calls, f.store.count(), "second search served from cache")
	assert.Equal(t, first.Items[0].Entity.ID, second.Items[0].Entity.ID)

	f.insert(t, entity.Entity{Type: entity.Client, Name: "Acme Labs"})
	assert.Equal(t, 1, f.r.Invalidate(ctx, entity.Client))
	third := f.r.Search(ctx, "acme", types, tenant)
	assert.Greater(t, f.store.count(), calls)
	assert.Len(t, third.Items, 2)
}

func TestSearchUncachedWithoutTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheTTL = -1
	f := newFixture(t, cfg)
	f.insert(t, entity.Entity{Type: entity.Client, Name: "Acme"})
	types := []entity.Type{entity.Client}

	f.r.Search(context.Background(), "acme", types, tenant)
	f.r.Search(context.Background(), "acme", types, tenant)
	assert.Equal(t, 2, f.store.count())
}
