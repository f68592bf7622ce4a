package reconcile

import (
	"context"
	"testing"

	"homecuistot/internal/core/proposal"
	"homecuistot/internal/core/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookedSnapshot() session.Snapshot {
	return session.Snapshot{
		Inventory: []session.InventoryItem{
			item("cat-pasta", "pasta", session.QuantitySome, false),
			item("cat-bacon", "bacon", session.QuantityOut, false),
			item("cat-salt", "salt", session.QuantityFull, true),
		},
		Recipes: []session.Recipe{{
			ID:    "rec-pasta",
			Title: "Bacon pasta",
			Ingredients: []session.Ingredient{
				{Name: "pasta", CatalogID: "cat-pasta", IsRequired: true},
				{Name: "bacon", CatalogID: "cat-bacon", IsRequired: true},
				{Name: "salt", CatalogID: "cat-salt", IsRequired: false},
				{Name: "garlic", IsRequired: false},
			},
		}},
	}
}

func TestDecrementCooked(t *testing.T) {
	p, _ := newTestProcessor()
	snap := cookedSnapshot()

	res, next, err := p.DecrementCooked(context.Background(), "rec-pasta", snap)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "Bacon pasta", res.RecipeTitle)
	require.Len(t, res.Items, 4)

	pasta, bacon, salt, garlic := res.Items[0], res.Items[1], res.Items[2], res.Items[3]

	assert.Equal(t, session.QuantitySome, *pasta.PreviousQuantity)
	assert.Equal(t, session.QuantityLow, pasta.ProposedQuantity)
	assert.True(t, pasta.Committable)

	assert.Equal(t, session.QuantityOut, bacon.ProposedQuantity, "floored at zero")
	assert.Equal(t, proposal.ChangeUnchanged, bacon.Change)

	assert.True(t, salt.IsStaple)
	assert.False(t, salt.Committable)
	assert.Equal(t, session.QuantityFull, salt.ProposedQuantity)

	assert.True(t, garlic.Missing)
	assert.True(t, garlic.Committable)
	assert.Nil(t, garlic.PreviousQuantity)
	assert.Equal(t, session.QuantityOut, garlic.ProposedQuantity)
	assert.Equal(t, "cat-garlic", garlic.CatalogID)

	levels := map[string]session.QuantityLevel{}
	for _, it := range next.Inventory {
		levels[it.Name] = it.Quantity
	}
	assert.Equal(t, map[string]session.QuantityLevel{
		"pasta": session.QuantityLow,
		"bacon": session.QuantityOut,
		"salt":  session.QuantityFull,
	}, levels, "missing ingredients are not inserted")

	var updated []string
	for _, u := range res.Updates() {
		updated = append(updated, u.Name)
	}
	assert.Equal(t, []string{"pasta", "bacon", "garlic"}, updated)
}

func TestDecrementCooked_StaplePinnedAtFull(t *testing.T) {
	for _, q := range []session.QuantityLevel{session.QuantityOut, session.QuantityLow, session.QuantitySome, session.QuantityFull} {
		t.Run(q.String(), func(t *testing.T) {
			p, _ := newTestProcessor()
			snap := cookedSnapshot()
			snap.Inventory[2].Quantity = q

			res, next, err := p.DecrementCooked(context.Background(), "rec-pasta", snap)
			require.NoError(t, err)

			salt := res.Items[2]
			assert.Equal(t, session.QuantityFull, salt.ProposedQuantity)
			assert.False(t, salt.Committable)
			assert.Equal(t, q, next.Inventory[2].Quantity, "staples are never written")
		})
	}
}

func TestDecrementCooked_UnknownRecipe(t *testing.T) {
	p, store := newTestProcessor()
	snap := cookedSnapshot()

	res, next, err := p.DecrementCooked(context.Background(), "rec-bogus", snap)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Items)
	assert.Equal(t, snap, next)
	assert.Zero(t, store.Calls())
	assert.Equal(t, 1, res.Counts().NotFound)
}
