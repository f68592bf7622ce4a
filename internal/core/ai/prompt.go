package ai

import (
	"fmt"
	"strings"

	"homecuistot/internal/core/session"
)

// buildExtractionPrompt 列出目前的庫存與食譜，要求模型回傳請求陣列
func buildExtractionPrompt(utterance string, snap session.Snapshot) string {
	return buildExtractionPromptWithCorrection(utterance, snap, "")
}

func buildExtractionPromptWithCorrection(utterance string, snap session.Snapshot, correction string) string {
	var inv strings.Builder
	if len(snap.Inventory) == 0 {
		inv.WriteString("(empty)\n")
	}
	for _, it := range snap.Inventory {
		staple := ""
		if it.IsStaple {
			staple = ", staple"
		}
		fmt.Fprintf(&inv, "- %s: %d (%s%s)\n", it.Name, it.Quantity, it.Quantity, staple)
	}

	var recipes strings.Builder
	if len(snap.Recipes) == 0 {
		recipes.WriteString("(none)\n")
	}
	for _, r := range snap.Recipes {
		names := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			n := ing.Name
			if !ing.IsRequired {
				n += " (optional)"
			}
			names = append(names, n)
		}
		fmt.Fprintf(&recipes, "- id=%s title=%q ingredients=[%s]\n", r.ID, r.Title, strings.Join(names, ", "))
	}

	prompt := fmt.Sprintf(`You turn a kitchen update into structured requests.

Current inventory (quantity_level: 0=out, 1=low, 2=some, 3=full):
%s
Current recipes:
%s
User said: %q

Rules:
1. Return only a JSON array, no prose and no markdown.
2. Each element has a "type" field, one of: inventory_upsert, inventory_bulk, inventory_delete_all, recipe_create, recipe_update, recipe_delete, recipe_delete_all.
3. inventory_upsert: {"type":"inventory_upsert","items":[{"name":"...","quantity_level":0-3,"is_staple":true|false (omit if not mentioned)}]}
4. inventory_bulk: {"type":"inventory_bulk","quantity_level":0-3,"staple_filter":true|false (omit for all items)}
5. recipe_create: {"type":"recipe_create","recipes":[{"title":"...","description":"...","ingredients":[{"name":"...","is_required":true}]}]} (at most %d recipes, %d ingredients each)
6. recipe_update: {"type":"recipe_update","updates":[{"recipe_id":"<id from the list>","title":"...","description":"...","add_ingredients":[...],"remove_ingredient_names":[...],"toggle_required_names":[...]}]}
7. recipe_delete: {"type":"recipe_delete","recipe_ids":["<id>"],"reason":"..."} (at most %d ids)
8. Use plain item names in singular form, no quantities or units in names.
9. Refer to recipes only by the ids listed above.
10. If nothing should change, return [].`,
		inv.String(), recipes.String(), utterance,
		maxRecipes, maxIngredients, maxDeleteIDs,
	)

	if correction != "" {
		prompt += fmt.Sprintf("\n\nYour previous answer was rejected: %s. Answer again following the rules exactly.", correction)
	}
	return strings.TrimSpace(prompt)
}
