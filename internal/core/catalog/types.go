// Package catalog 將自由輸入的品項名稱比對到標準食材目錄
//
// 目錄對本套件而言是唯讀的，儲存層只回答批次、不分大小寫的精確名稱查詢。
package catalog

import "context"

// Entry 一個標準目錄項目，Name 為小寫
type Entry struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Store 回答批次的不分大小寫查詢，只回傳存在的項目，查不到的名稱直接缺席
type Store interface {
	LookupByNames(ctx context.Context, names []string) ([]Entry, error)
}
