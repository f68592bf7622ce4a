// Package reconcile 將一批結構化的更新請求，對照對話目前追蹤的狀態，產生待確認的提案。
//
// 每個處理器都是 (請求, 快照) 的純函數，回傳結果與下一個快照。
// 引擎依序傳遞快照，後面的請求看得到前面請求的結果。
package reconcile

import (
	"context"
	"errors"

	"homecuistot/internal/core/proposal"
	"homecuistot/internal/core/session"
	"homecuistot/internal/pkg/common"
)

// Request 一個結構化意圖。變體集合是封閉的，只有本套件的型別能實作
type Request interface {
	Kind() proposal.Kind
	dispatch(ctx context.Context, h handler, snap session.Snapshot) (proposal.Result, session.Snapshot, error)
}

// handler 每個請求變體對應一個方法，新增變體必須在這裡補上才能編譯
type handler interface {
	UpsertInventory(ctx context.Context, req InventoryUpsert, snap session.Snapshot) (*proposal.InventoryResult, session.Snapshot, error)
	BulkUpdateInventory(ctx context.Context, req InventoryBulk, snap session.Snapshot) (*proposal.InventoryResult, session.Snapshot, error)
	DeleteAllInventory(ctx context.Context, req InventoryDeleteAll, snap session.Snapshot) (*proposal.InventoryResult, session.Snapshot, error)
	CreateRecipes(ctx context.Context, req RecipeCreate, snap session.Snapshot) (*proposal.RecipeResult, session.Snapshot, error)
	UpdateRecipes(ctx context.Context, req RecipeUpdate, snap session.Snapshot) (*proposal.RecipeResult, session.Snapshot, error)
	DeleteRecipes(ctx context.Context, req RecipeDelete, snap session.Snapshot) (*proposal.RecipeDeleteResult, session.Snapshot, error)
	DeleteAllRecipes(ctx context.Context, req RecipeDeleteAll, snap session.Snapshot) (*proposal.RecipeDeleteResult, session.Snapshot, error)
}

// InventoryItemRequest 單一品項與目標存量，IsStaple 為 nil 時不動常備標記
type InventoryItemRequest struct {
	Name     string                `json:"name"`
	Quantity session.QuantityLevel `json:"quantity_level"`
	IsStaple *bool                 `json:"is_staple,omitempty"`
}

// InventoryUpsert 新增或更新品項
type InventoryUpsert struct {
	Items []InventoryItemRequest `json:"items"`
}

// InventoryBulk 將符合 StapleFilter 的品項一律設為 Quantity，nil 代表全部
type InventoryBulk struct {
	Quantity     session.QuantityLevel `json:"quantity_level"`
	StapleFilter *bool                 `json:"staple_filter,omitempty"`
}

// InventoryDeleteAll 清空庫存
type InventoryDeleteAll struct{}

// IngredientRequest 食材請求
type IngredientRequest struct {
	Name       string `json:"name"`
	IsRequired bool   `json:"is_required"`
}

// RecipeDraft 待建立的食譜
type RecipeDraft struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Ingredients []IngredientRequest `json:"ingredients"`
}

// RecipeCreate 批次建立食譜
type RecipeCreate struct {
	Recipes []RecipeDraft `json:"recipes"`
}

// RecipeChange 單一食譜的修改，Title/Description 為 nil 時保持原值
type RecipeChange struct {
	RecipeID              string              `json:"recipe_id"`
	Title                 *string             `json:"title,omitempty"`
	Description           *string             `json:"description,omitempty"`
	AddIngredients        []IngredientRequest `json:"add_ingredients,omitempty"`
	RemoveIngredientNames []string            `json:"remove_ingredient_names,omitempty"`
	ToggleRequiredNames   []string            `json:"toggle_required_names,omitempty"`
}

// RecipeUpdate 批次修改食譜
type RecipeUpdate struct {
	Updates []RecipeChange `json:"updates"`
}

// RecipeDelete 依 ID 刪除食譜
type RecipeDelete struct {
	RecipeIDs []string `json:"recipe_ids"`
	Reason    string   `json:"reason,omitempty"`
}

// RecipeDeleteAll 刪除所有食譜
type RecipeDeleteAll struct {
	Reason string `json:"reason,omitempty"`
}

func (InventoryUpsert) Kind() proposal.Kind    { return proposal.KindInventoryUpsert }
func (InventoryBulk) Kind() proposal.Kind      { return proposal.KindInventoryBulk }
func (InventoryDeleteAll) Kind() proposal.Kind { return proposal.KindInventoryDeleteAll }
func (RecipeCreate) Kind() proposal.Kind       { return proposal.KindRecipeCreate }
func (RecipeUpdate) Kind() proposal.Kind       { return proposal.KindRecipeUpdate }
func (RecipeDelete) Kind() proposal.Kind       { return proposal.KindRecipeDelete }
func (RecipeDeleteAll) Kind() proposal.Kind    { return proposal.KindRecipeDeleteAll }

func (r InventoryUpsert) dispatch(ctx context.Context, h handler, snap session.Snapshot) (proposal.Result, session.Snapshot, error) {
	res, next, err := h.UpsertInventory(ctx, r, snap)
	return settle(res, next, snap, err)
}

func (r InventoryBulk) dispatch(ctx context.Context, h handler, snap session.Snapshot) (proposal.Result, session.Snapshot, error) {
	res, next, err := h.BulkUpdateInventory(ctx, r, snap)
	return settle(res, next, snap, err)
}

func (r InventoryDeleteAll) dispatch(ctx context.Context, h handler, snap session.Snapshot) (proposal.Result, session.Snapshot, error) {
	res, next, err := h.DeleteAllInventory(ctx, r, snap)
	return settle(res, next, snap, err)
}

func (r RecipeCreate) dispatch(ctx context.Context, h handler, snap session.Snapshot) (proposal.Result, session.Snapshot, error) {
	res, next, err := h.CreateRecipes(ctx, r, snap)
	return settle(res, next, snap, err)
}

func (r RecipeUpdate) dispatch(ctx context.Context, h handler, snap session.Snapshot) (proposal.Result, session.Snapshot, error) {
	res, next, err := h.UpdateRecipes(ctx, r, snap)
	return settle(res, next, snap, err)
}

func (r RecipeDelete) dispatch(ctx context.Context, h handler, snap session.Snapshot) (proposal.Result, session.Snapshot, error) {
	res, next, err := h.DeleteRecipes(ctx, r, snap)
	return settle(res, next, snap, err)
}

func (r RecipeDeleteAll) dispatch(ctx context.Context, h handler, snap session.Snapshot) (proposal.Result, session.Snapshot, error) {
	res, next, err := h.DeleteAllRecipes(ctx, r, snap)
	return settle(res, next, snap, err)
}

// settle 將具體結果轉為介面；失敗時保留原快照，結果為 nil 指標時視為錯誤
func settle[T any, PT interface {
	*T
	proposal.Result
}](res PT, next, prev session.Snapshot, err error) (proposal.Result, session.Snapshot, error) {
	if err != nil {
		return nil, prev, err
	}
	if res == nil {
		return nil, prev, common.ErrInternalError.Wrap(errors.New("processor returned no result"))
	}
	return res, next, nil
}

// 編譯期介面檢查
var (
	_ Request = InventoryUpsert{}
	_ Request = InventoryBulk{}
	_ Request = InventoryDeleteAll{}
	_ Request = RecipeCreate{}
	_ Request = RecipeUpdate{}
	_ Request = RecipeDelete{}
	_ Request = RecipeDeleteAll{}
	_ handler = (*Processor)(nil)
)
