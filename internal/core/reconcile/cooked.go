package reconcile

import (
	"context"

	"homecuistot/internal/core/catalog"
	"homecuistot/internal/core/proposal"
	"homecuistot/internal/core/session"
)

// DecrementCooked 產生食譜煮完後的庫存提案
//
// 每項食材降一級，最低為 0。常備品維持滿量且不可提交。
// 庫存裡沒有的食材以 0 列為缺少，讓使用者仍可記錄存量，但不會加入快照。
// 找不到的食譜 ID 回傳 found=false，而非錯誤。
func (p *Processor) DecrementCooked(ctx context.Context, recipeID string, snap session.Snapshot) (*proposal.CookedResult, session.Snapshot, error) {
	result := &proposal.CookedResult{
		Op:       proposal.KindCooked,
		RecipeID: recipeID,
		Items:    []proposal.CookedItem{},
	}

	recipe, _, ok := snap.RecipeByID(recipeID)
	if !ok || recipeID == "" {
		if err := ctx.Err(); err != nil {
			return nil, snap, err
		}
		return result, snap, nil
	}
	result.Found = true
	result.RecipeTitle = recipe.Title

	names := make([]string, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		names = append(names, ing.Name)
	}
	match, err := p.matcher.Match(ctx, names)
	if err != nil {
		return nil, snap, err
	}

	next := snap.Clone()
	seen := make(map[string]bool, len(recipe.Ingredients))

	for _, ing := range recipe.Ingredients {
		entry, resolved := match.Resolve(ing.Name)
		if !resolved && ing.CatalogID != "" {
			entry, resolved = catalog.Entry{ID: ing.CatalogID, Name: ing.Name}, true
		}

		dedupKey := catalog.Normalize(ing.Name)
		if resolved {
			dedupKey = "id:" + entry.ID
		}
		if seen[dedupKey] {
			continue
		}
		seen[dedupKey] = true

		var (
			item  session.InventoryItem
			idx   int
			found bool
		)
		if resolved {
			item, idx, found = next.InventoryByCatalogID(entry.ID)
		}
		if !found {
			item, idx, found = next.InventoryByName(ing.Name)
		}

		if !found {
			if !resolved {
				entry = catalog.Entry{Name: ing.Name}
			}
			result.Items = append(result.Items, proposal.CookedItem{
				InventoryDiff: proposal.NewInventoryDiff(entry, nil, session.QuantityOut, nil),
				Missing:       true,
				Committable:   true,
			})
			continue
		}

		prev := item
		diffEntry := catalog.Entry{ID: item.CatalogID, Name: item.Name}
		if item.IsStaple {
			result.Items = append(result.Items, proposal.CookedItem{
				InventoryDiff: proposal.NewInventoryDiff(diffEntry, &prev, session.QuantityFull, nil),
				IsStaple:      true,
				Committable:   false,
			})
			continue
		}

		proposed := item.Quantity - 1
		if proposed < session.QuantityOut {
			proposed = session.QuantityOut
		}
		result.Items = append(result.Items, proposal.CookedItem{
			InventoryDiff: proposal.NewInventoryDiff(diffEntry, &prev, proposed, nil),
			Committable:   true,
		})
		item.Quantity = proposed
		next.Inventory[idx] = item
	}

	return result, next, nil
}
