package proposal

// Kind 產生結果的操作名稱
type Kind string

const (
	KindInventoryUpsert    Kind = "inventory_upsert"
	KindInventoryBulk      Kind = "inventory_bulk"
	KindInventoryDeleteAll Kind = "inventory_delete_all"
	KindRecipeCreate       Kind = "recipe_create"
	KindRecipeUpdate       Kind = "recipe_update"
	KindRecipeDelete       Kind = "recipe_delete"
	KindRecipeDeleteAll    Kind = "recipe_delete_all"
	KindCooked             Kind = "cooked"
)

// Counts 單一結果或整份提案的變更統計
type Counts struct {
	Created      int `json:"created"`
	Updated      int `json:"updated"`
	Deleted      int `json:"deleted"`
	NotFound     int `json:"not_found"`
	Unrecognized int `json:"unrecognized"`
}

// Result 單一處理器的輸出
type Result interface {
	Kind() Kind
	Counts() Counts
	Unrecognized() []string
}

// InventoryResult 庫存差異與比對失敗的名稱
type InventoryResult struct {
	Op                Kind            `json:"kind"`
	Diffs             []InventoryDiff `json:"diffs"`
	UnrecognizedNames []string        `json:"unrecognized"`
}

func (r *InventoryResult) Kind() Kind             { return r.Op }
func (r *InventoryResult) Unrecognized() []string { return r.UnrecognizedNames }

// Counts 依變更類型統計差異
func (r *InventoryResult) Counts() Counts {
	c := Counts{Unrecognized: len(r.UnrecognizedNames)}
	for _, d := range r.Diffs {
		c.add(d.Change)
	}
	return c
}

// RecipeResult 每份新建或修改的食譜各一筆差異
type RecipeResult struct {
	Op    Kind         `json:"kind"`
	Diffs []RecipeDiff `json:"diffs"`
}

func (r *RecipeResult) Kind() Kind { return r.Op }

// Unrecognized 攤平各食譜的未識別名稱
func (r *RecipeResult) Unrecognized() []string {
	var out []string
	for _, d := range r.Diffs {
		out = append(out, d.UnrecognizedNames...)
	}
	return out
}

// Counts 依變更類型統計差異
func (r *RecipeResult) Counts() Counts {
	var c Counts
	for _, d := range r.Diffs {
		c.add(d.Change)
		c.Unrecognized += len(d.UnrecognizedNames)
	}
	return c
}

// RecipeDeletion 單一刪除請求的結果
type RecipeDeletion struct {
	RecipeID string `json:"recipe_id"`
	Title    string `json:"title,omitempty"`
	Found    bool   `json:"found"`
}

// RecipeDeleteResult 逐一回報 ID 的結果，找不到不算錯誤
type RecipeDeleteResult struct {
	Op        Kind             `json:"kind"`
	Deletions []RecipeDeletion `json:"deletions"`
	Reason    string           `json:"reason,omitempty"`
}

func (r *RecipeDeleteResult) Kind() Kind             { return r.Op }
func (r *RecipeDeleteResult) Unrecognized() []string { return nil }

// Counts 統計找到與找不到的 ID
func (r *RecipeDeleteResult) Counts() Counts {
	var c Counts
	for _, d := range r.Deletions {
		if d.Found {
			c.Deleted++
		} else {
			c.NotFound++
		}
	}
	return c
}

// CookedItem 單一食材煮完後的建議存量
type CookedItem struct {
	InventoryDiff
	IsStaple bool `json:"is_staple"`
	// Missing 食材未被追蹤時為 true，仍可編輯，預設為 0
	Missing bool `json:"missing"`
	// Committable 常備品為 false，只顯示不更新
	Committable bool `json:"committable"`
}

// CookedResult 食譜煮完後的庫存提案
type CookedResult struct {
	Op          Kind         `json:"kind"`
	RecipeID    string       `json:"recipe_id"`
	RecipeTitle string       `json:"recipe_title,omitempty"`
	Found       bool         `json:"found"`
	Items       []CookedItem `json:"items"`
}

func (r *CookedResult) Kind() Kind             { return r.Op }
func (r *CookedResult) Unrecognized() []string { return nil }

// Counts 統計可提交的變更
func (r *CookedResult) Counts() Counts {
	var c Counts
	if !r.Found {
		c.NotFound++
		return c
	}
	for _, it := range r.Items {
		if it.Committable && !it.Missing {
			c.add(it.Change)
		}
	}
	return c
}

// Updates 回傳提交時要寫入的項目，常備品除外
func (r *CookedResult) Updates() []CookedItem {
	out := []CookedItem{}
	for _, it := range r.Items {
		if it.Committable {
			out = append(out, it)
		}
	}
	return out
}

func (c *Counts) add(change ChangeType) {
	switch change {
	case ChangeCreate:
		c.Created++
	case ChangeUpdate:
		c.Updated++
	case ChangeDelete:
		c.Deleted++
	case ChangeNotFound:
		c.NotFound++
	}
}

// Plus 逐欄相加
func (c Counts) Plus(o Counts) Counts {
	return Counts{
		Created:      c.Created + o.Created,
		Updated:      c.Updated + o.Updated,
		Deleted:      c.Deleted + o.Deleted,
		NotFound:     c.NotFound + o.NotFound,
		Unrecognized: c.Unrecognized + o.Unrecognized,
	}
}

// 編譯期介面檢查
var (
	_ Result = (*InventoryResult)(nil)
	_ Result = (*RecipeResult)(nil)
	_ Result = (*RecipeDeleteResult)(nil)
	_ Result = (*CookedResult)(nil)
)
