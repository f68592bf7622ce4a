// Package session 保存每個對話追蹤的庫存與食譜快照，以及在回合之間保存快照的儲存層
package session

import (
	"context"
	"strings"
)

// QuantityLevel 四段式存量，不是數量
type QuantityLevel int

const (
	QuantityOut QuantityLevel = iota
	QuantityLow
	QuantitySome
	QuantityFull
)

// Valid 是否為四個合法存量之一
func (q QuantityLevel) Valid() bool {
	return q >= QuantityOut && q <= QuantityFull
}

// String 可讀的存量名稱
func (q QuantityLevel) String() string {
	switch q {
	case QuantityOut:
		return "out"
	case QuantityLow:
		return "low"
	case QuantitySome:
		return "some"
	case QuantityFull:
		return "full"
	default:
		return "invalid"
	}
}

// InventoryItem 一個追蹤中的品項，孤立品項的 CatalogID 為空
type InventoryItem struct {
	ID        string        `json:"id"`
	CatalogID string        `json:"catalog_id,omitempty"`
	Name      string        `json:"name"`
	Quantity  QuantityLevel `json:"quantity_level"`
	IsStaple  bool          `json:"is_staple"`
}

// Ingredient 食譜的一行食材，比對成功前 CatalogID 為空
type Ingredient struct {
	Name       string `json:"name"`
	CatalogID  string `json:"catalog_id,omitempty"`
	IsRequired bool   `json:"is_required"`
}

// Recipe 追蹤中的食譜，同一食譜內食材名稱不分大小寫唯一
type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Clone 深拷貝
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	if out.Ingredients == nil {
		out.Ingredients = []Ingredient{}
	}
	return out
}

// Snapshot 一個對話完整的追蹤狀態
type Snapshot struct {
	Inventory []InventoryItem `json:"inventory"`
	Recipes   []Recipe        `json:"recipes"`
}

// Empty 回傳列表非 nil 的空快照
func Empty() Snapshot {
	return Snapshot{Inventory: []InventoryItem{}, Recipes: []Recipe{}}
}

// Clone 深拷貝，呼叫端不會共用底層陣列
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Inventory: append([]InventoryItem{}, s.Inventory...),
		Recipes:   make([]Recipe, 0, len(s.Recipes)),
	}
	for _, r := range s.Recipes {
		out.Recipes = append(out.Recipes, r.Clone())
	}
	return out
}

// InventoryByCatalogID 依目錄 ID 找追蹤中的品項
func (s Snapshot) InventoryByCatalogID(catalogID string) (InventoryItem, int, bool) {
	if catalogID == "" {
		return InventoryItem{}, -1, false
	}
	for i, item := range s.Inventory {
		if item.CatalogID == catalogID {
			return item, i, true
		}
	}
	return InventoryItem{}, -1, false
}

// InventoryByName 依名稱（不分大小寫）找追蹤中的品項
func (s Snapshot) InventoryByName(name string) (InventoryItem, int, bool) {
	for i, item := range s.Inventory {
		if strings.EqualFold(strings.TrimSpace(item.Name), strings.TrimSpace(name)) {
			return item, i, true
		}
	}
	return InventoryItem{}, -1, false
}

// RecipeByID 依 ID 找食譜
func (s Snapshot) RecipeByID(id string) (Recipe, int, bool) {
	for i, r := range s.Recipes {
		if r.ID == id {
			return r, i, true
		}
	}
	return Recipe{}, -1, false
}

// Store 每個對話保存一份快照
//
// Get 對未知對話回傳空快照；Set 整份取代快照。
type Store interface {
	Get(ctx context.Context, conversationID string) (Snapshot, error)
	Set(ctx context.Context, conversationID string, snapshot Snapshot) error
}
