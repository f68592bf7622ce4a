package reconcile

import (
	"fmt"
	"strings"

	"homecuistot/internal/core/session"
	"homecuistot/internal/pkg/common"
)

// 上游批次上限
const (
	MaxRecipesPerBatch     = 5
	MaxIngredientsPerBatch = 10
	MaxDeleteIDsPerBatch   = 10
)

// Validate 檢查來自程序外部的請求
//
// 處理器本身不會截斷或拒絕數值，不受信任的輸入必須先經過這裡。
func Validate(reqs []Request) error {
	for i, req := range reqs {
		if err := validateRequest(req); err != nil {
			return common.NewValidationError(fmt.Sprintf("request %d (%s): %s", i, kindOf(req), err))
		}
	}
	return nil
}

func kindOf(req Request) string {
	if req == nil {
		return "nil"
	}
	return string(req.Kind())
}

func validateRequest(req Request) error {
	switch r := req.(type) {
	case nil:
		return fmt.Errorf("request is empty")
	case InventoryUpsert:
		// 空的 items 視為不做事
		for _, it := range r.Items {
			if strings.TrimSpace(it.Name) == "" {
				return fmt.Errorf("item name is required")
			}
			if err := validQuantity(it.Quantity); err != nil {
				return err
			}
		}
	case InventoryBulk:
		return validQuantity(r.Quantity)
	case InventoryDeleteAll, RecipeDeleteAll:
		return nil
	case RecipeCreate:
		if len(r.Recipes) == 0 || len(r.Recipes) > MaxRecipesPerBatch {
			return fmt.Errorf("recipes must contain 1 to %d entries", MaxRecipesPerBatch)
		}
		for _, d := range r.Recipes {
			if len(d.Ingredients) > MaxIngredientsPerBatch {
				return fmt.Errorf("recipe %q has more than %d ingredients", d.Title, MaxIngredientsPerBatch)
			}
		}
	case RecipeUpdate:
		if len(r.Updates) == 0 || len(r.Updates) > MaxRecipesPerBatch {
			return fmt.Errorf("updates must contain 1 to %d entries", MaxRecipesPerBatch)
		}
		for _, u := range r.Updates {
			if strings.TrimSpace(u.RecipeID) == "" {
				return fmt.Errorf("recipe_id is required")
			}
			if len(u.AddIngredients) > MaxIngredientsPerBatch {
				return fmt.Errorf("recipe %s adds more than %d ingredients", u.RecipeID, MaxIngredientsPerBatch)
			}
		}
	case RecipeDelete:
		if len(r.RecipeIDs) == 0 || len(r.RecipeIDs) > MaxDeleteIDsPerBatch {
			return fmt.Errorf("recipe_ids must contain 1 to %d entries", MaxDeleteIDsPerBatch)
		}
	default:
		return fmt.Errorf("unsupported request type %T", req)
	}
	return nil
}

func validQuantity(q session.QuantityLevel) error {
	if !q.Valid() {
		return fmt.Errorf("quantity_level %d out of range [%d,%d]", q, session.QuantityOut, session.QuantityFull)
	}
	return nil
}
