// Package proposal 建立一個回合的前後對照，並組裝成單一待確認提案，這裡不做任何持久化
package proposal

import (
	"reflect"

	"homecuistot/internal/core/catalog"
	"homecuistot/internal/core/session"
)

// ChangeType 差異對單一實體的影響類型
type ChangeType string

const (
	// ChangeCreate 實體原本不存在
	ChangeCreate ChangeType = "create"
	// ChangeUpdate 既有實體被修改
	ChangeUpdate ChangeType = "update"
	// ChangeDelete 既有實體被移除
	ChangeDelete ChangeType = "delete"
	// ChangeUnchanged 引用既有實體但沒有變更
	ChangeUnchanged ChangeType = "unchanged"
	// ChangeNotFound 引用的實體不存在
	ChangeNotFound ChangeType = "not_found"
)

// InventoryDiff 單一庫存品項的前後狀態
//
// 純新增時 PreviousQuantity 為 nil；ProposedStaple 為 nil 代表常備標記不變。
type InventoryDiff struct {
	CatalogID        string                 `json:"catalog_id"`
	Name             string                 `json:"name"`
	PreviousQuantity *session.QuantityLevel `json:"previous_quantity"`
	ProposedQuantity session.QuantityLevel  `json:"proposed_quantity"`
	PreviousStaple   *bool                  `json:"previous_staple,omitempty"`
	ProposedStaple   *bool                  `json:"proposed_staple,omitempty"`
	Change           ChangeType             `json:"change"`
}

// NewInventoryDiff 依既有品項（尚未追蹤時為 nil）建立差異
func NewInventoryDiff(entry catalog.Entry, previous *session.InventoryItem, proposed session.QuantityLevel, proposedStaple *bool) InventoryDiff {
	d := InventoryDiff{
		CatalogID:        entry.ID,
		Name:             entry.Name,
		ProposedQuantity: proposed,
		ProposedStaple:   copyBool(proposedStaple),
	}
	if previous == nil {
		d.Change = ChangeCreate
		return d
	}

	q := previous.Quantity
	d.PreviousQuantity = &q
	d.PreviousStaple = boolPtr(previous.IsStaple)

	switch {
	case q != proposed:
		d.Change = ChangeUpdate
	case proposedStaple != nil && *proposedStaple != previous.IsStaple:
		d.Change = ChangeUpdate
	default:
		d.Change = ChangeUnchanged
	}
	return d
}

// NewRemovalDiff 建立離開庫存之品項的差異
func NewRemovalDiff(item session.InventoryItem) InventoryDiff {
	q := item.Quantity
	return InventoryDiff{
		CatalogID:        item.CatalogID,
		Name:             item.Name,
		PreviousQuantity: &q,
		ProposedQuantity: session.QuantityOut,
		PreviousStaple:   boolPtr(item.IsStaple),
		ProposedStaple:   boolPtr(false),
		Change:           ChangeDelete,
	}
}

// MatchedIngredient 帶有已解析目錄 ID 的食材
type MatchedIngredient struct {
	CatalogID  string `json:"catalog_id"`
	Name       string `json:"name"`
	IsRequired bool   `json:"is_required"`
}

// RecipeDiff 單一食譜的前後完整內容
//
// 食譜原本不存在時 Previous.ID 為 ""：新建，或引用了不存在的食譜（Change == ChangeNotFound）。
type RecipeDiff struct {
	RequestedID        string              `json:"requested_id,omitempty"`
	Previous           session.Recipe      `json:"previous_state"`
	Proposed           session.Recipe      `json:"proposed_state"`
	MatchedIngredients []MatchedIngredient `json:"matched_ingredients"`
	UnrecognizedNames  []string            `json:"unrecognized_names"`
	Change             ChangeType          `json:"change"`
}

// NotFound 是否引用了不存在的食譜
func (d RecipeDiff) NotFound() bool {
	return d.Change == ChangeNotFound
}

// NewRecipeDiff 建立食譜差異，新建時 previous 為 nil
func NewRecipeDiff(previous *session.Recipe, proposed session.Recipe, unrecognized []string) RecipeDiff {
	d := RecipeDiff{
		Proposed:           proposed.Clone(),
		MatchedIngredients: matchedIngredients(proposed),
		UnrecognizedNames:  nonNil(unrecognized),
	}
	if previous == nil {
		d.Previous = emptyRecipe()
		d.Change = ChangeCreate
		return d
	}

	d.RequestedID = previous.ID
	d.Previous = previous.Clone()
	if reflect.DeepEqual(d.Previous, d.Proposed) {
		d.Change = ChangeUnchanged
	} else {
		d.Change = ChangeUpdate
	}
	return d
}

// NotFoundRecipeDiff 為不存在的食譜 ID 建立標記差異
func NotFoundRecipeDiff(requestedID string) RecipeDiff {
	return RecipeDiff{
		RequestedID:        requestedID,
		Previous:           emptyRecipe(),
		Proposed:           emptyRecipe(),
		MatchedIngredients: []MatchedIngredient{},
		UnrecognizedNames:  []string{},
		Change:             ChangeNotFound,
	}
}

func matchedIngredients(r session.Recipe) []MatchedIngredient {
	out := []MatchedIngredient{}
	for _, ing := range r.Ingredients {
		if ing.CatalogID == "" {
			continue
		}
		out = append(out, MatchedIngredient{
			CatalogID:  ing.CatalogID,
			Name:       ing.Name,
			IsRequired: ing.IsRequired,
		})
	}
	return out
}

func emptyRecipe() session.Recipe {
	return session.Recipe{Ingredients: []session.Ingredient{}}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func boolPtr(b bool) *bool {
	return &b
}

func copyBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return boolPtr(*b)
}
