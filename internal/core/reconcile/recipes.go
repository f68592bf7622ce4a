package reconcile

import (
	"context"

	"homecuistot/internal/core/catalog"
	"homecuistot/internal/core/proposal"
	"homecuistot/internal/core/session"
)

// CreateRecipes 建立所有草稿，所有食材名稱合併為一次目錄查詢
//
// 每份食譜只保留比對成功的食材，並各自回報比對不到的名稱。
func (p *Processor) CreateRecipes(ctx context.Context, req RecipeCreate, snap session.Snapshot) (*proposal.RecipeResult, session.Snapshot, error) {
	var names []string
	for _, draft := range req.Recipes {
		for _, ing := range draft.Ingredients {
			names = append(names, ing.Name)
		}
	}

	match, err := p.matcher.Match(ctx, names)
	if err != nil {
		return nil, snap, err
	}

	next := snap.Clone()
	result := &proposal.RecipeResult{
		Op:    proposal.KindRecipeCreate,
		Diffs: []proposal.RecipeDiff{},
	}

	for _, draft := range req.Recipes {
		recipe := session.Recipe{
			ID:          p.newID(),
			Title:       draft.Title,
			Description: draft.Description,
			Ingredients: []session.Ingredient{},
		}
		var unrecognized []string
		for _, ing := range draft.Ingredients {
			if catalog.Fold(ing.Name) == "" {
				continue
			}
			entry, ok := match.Resolve(ing.Name)
			if !ok {
				unrecognized = append(unrecognized, ing.Name)
				continue
			}
			if hasIngredient(recipe.Ingredients, entry) {
				continue
			}
			recipe.Ingredients = append(recipe.Ingredients, session.Ingredient{
				Name:       entry.Name,
				CatalogID:  entry.ID,
				IsRequired: ing.IsRequired,
			})
		}

		result.Diffs = append(result.Diffs, proposal.NewRecipeDiff(nil, recipe, uniqueNames(unrecognized)))
		next.Recipes = append(next.Recipes, recipe)
	}

	return result, next, nil
}

// UpdateRecipes 依請求順序修改食譜
//
// 一次目錄查詢涵蓋新增的食材與目標食譜上既有的食材，提案中的食材都帶最新的目錄 ID。
// 找不到的食譜 ID 產生 not-found 差異，快照不變。
func (p *Processor) UpdateRecipes(ctx context.Context, req RecipeUpdate, snap session.Snapshot) (*proposal.RecipeResult, session.Snapshot, error) {
	var names []string
	for _, change := range req.Updates {
		if recipe, _, ok := snap.RecipeByID(change.RecipeID); ok {
			for _, ing := range recipe.Ingredients {
				names = append(names, ing.Name)
			}
		}
		for _, ing := range change.AddIngredients {
			names = append(names, ing.Name)
		}
	}

	match, err := p.matcher.Match(ctx, names)
	if err != nil {
		return nil, snap, err
	}

	next := snap.Clone()
	result := &proposal.RecipeResult{
		Op:    proposal.KindRecipeUpdate,
		Diffs: []proposal.RecipeDiff{},
	}

	for _, change := range req.Updates {
		current, idx, ok := next.RecipeByID(change.RecipeID)
		if !ok {
			result.Diffs = append(result.Diffs, proposal.NotFoundRecipeDiff(change.RecipeID))
			continue
		}

		previous := current.Clone()
		proposed, unrecognized := applyRecipeChange(current.Clone(), change, match)
		result.Diffs = append(result.Diffs, proposal.NewRecipeDiff(&previous, proposed, unrecognized))
		next.Recipes[idx] = proposed
	}

	return result, next, nil
}

// applyRecipeChange 依序覆寫欄位、移除、切換必要、加入比對成功的食材，最後重新解析全部食材
func applyRecipeChange(recipe session.Recipe, change RecipeChange, match *catalog.MatchResult) (session.Recipe, []string) {
	if change.Title != nil {
		recipe.Title = *change.Title
	}
	if change.Description != nil {
		recipe.Description = *change.Description
	}

	if len(change.RemoveIngredientNames) > 0 {
		kept := recipe.Ingredients[:0]
		for _, ing := range recipe.Ingredients {
			if !containsName(change.RemoveIngredientNames, ing.Name) {
				kept = append(kept, ing)
			}
		}
		recipe.Ingredients = kept
	}

	for i, ing := range recipe.Ingredients {
		if containsName(change.ToggleRequiredNames, ing.Name) {
			recipe.Ingredients[i].IsRequired = !ing.IsRequired
		}
	}

	var unrecognized []string
	for _, add := range change.AddIngredients {
		if catalog.Fold(add.Name) == "" {
			continue
		}
		entry, ok := match.Resolve(add.Name)
		if !ok {
			unrecognized = append(unrecognized, add.Name)
			continue
		}
		if hasIngredient(recipe.Ingredients, entry) {
			continue
		}
		recipe.Ingredients = append(recipe.Ingredients, session.Ingredient{
			Name:       entry.Name,
			CatalogID:  entry.ID,
			IsRequired: add.IsRequired,
		})
	}

	for i, ing := range recipe.Ingredients {
		entry, ok := match.Resolve(ing.Name)
		if !ok {
			recipe.Ingredients[i].CatalogID = ""
			unrecognized = append(unrecognized, ing.Name)
			continue
		}
		recipe.Ingredients[i].CatalogID = entry.ID
	}

	return recipe, uniqueNames(unrecognized)
}

// DeleteRecipes 依 ID 刪除，不存在的 ID 回報 found=false，重複的 ID 只回報一次
func (p *Processor) DeleteRecipes(ctx context.Context, req RecipeDelete, snap session.Snapshot) (*proposal.RecipeDeleteResult, session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, snap, err
	}

	next := snap.Clone()
	result := &proposal.RecipeDeleteResult{
		Op:        proposal.KindRecipeDelete,
		Deletions: []proposal.RecipeDeletion{},
		Reason:    req.Reason,
	}

	seen := make(map[string]bool, len(req.RecipeIDs))
	for _, id := range req.RecipeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		recipe, idx, ok := next.RecipeByID(id)
		if !ok || id == "" {
			result.Deletions = append(result.Deletions, proposal.RecipeDeletion{RecipeID: id, Found: false})
			continue
		}
		result.Deletions = append(result.Deletions, proposal.RecipeDeletion{
			RecipeID: id,
			Title:    recipe.Title,
			Found:    true,
		})
		next.Recipes = append(next.Recipes[:idx], next.Recipes[idx+1:]...)
	}

	return result, next, nil
}

// DeleteAllRecipes 將所有食譜回報為已刪除並清空列表
func (p *Processor) DeleteAllRecipes(ctx context.Context, req RecipeDeleteAll, snap session.Snapshot) (*proposal.RecipeDeleteResult, session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, snap, err
	}

	result := &proposal.RecipeDeleteResult{
		Op:        proposal.KindRecipeDeleteAll,
		Deletions: make([]proposal.RecipeDeletion, 0, len(snap.Recipes)),
		Reason:    req.Reason,
	}
	for _, r := range snap.Recipes {
		result.Deletions = append(result.Deletions, proposal.RecipeDeletion{
			RecipeID: r.ID,
			Title:    r.Title,
			Found:    true,
		})
	}

	next := snap.Clone()
	next.Recipes = []session.Recipe{}
	return result, next, nil
}

// hasIngredient 以目錄 ID 或正規化名稱判斷食材是否已存在
func hasIngredient(ings []session.Ingredient, entry catalog.Entry) bool {
	for _, ing := range ings {
		if ing.CatalogID != "" && ing.CatalogID == entry.ID {
			return true
		}
		if catalog.SameName(ing.Name, entry.Name) {
			return true
		}
	}
	return false
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if catalog.SameName(n, name) {
			return true
		}
	}
	return false
}
