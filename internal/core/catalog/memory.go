package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 編譯期介面檢查
var _ Store = (*MemoryStore)(nil)

// MemoryStore 以 Fold 後名稱為鍵的唯讀記憶體目錄
type MemoryStore struct {
	byName map[string]Entry
}

// NewMemoryStore 由項目建立目錄，重複的名稱以第一筆為準
func NewMemoryStore(entries []Entry) *MemoryStore {
	s := &MemoryStore{byName: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		key := Fold(e.Name)
		if key == "" {
			continue
		}
		if _, exists := s.byName[key]; exists {
			continue
		}
		s.byName[key] = Entry{ID: e.ID, Name: key}
	}
	return s
}

// LookupByNames 回傳 Fold 後名稱在 names 中的項目
func (s *MemoryStore) LookupByNames(ctx context.Context, names []string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := Fold(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		if e, ok := s.byName[key]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len 項目數量
func (s *MemoryStore) Len() int {
	return len(s.byName)
}

// seedFile 目錄種子檔格式
type seedFile struct {
	Items []Entry `yaml:"items"`
}

// ParseYAML 解析目錄種子文件
func ParseYAML(data []byte) ([]Entry, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	for i, e := range f.Items {
		if e.ID == "" || Fold(e.Name) == "" {
			return nil, fmt.Errorf("catalog item %d: id and name are required", i)
		}
	}
	return f.Items, nil
}

// LoadYAML 從磁碟讀取目錄種子檔
func LoadYAML(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseYAML(data)
}
