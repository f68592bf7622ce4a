package reconcile

import (
	"context"
	"strings"

	"homecuistot/internal/core/catalog"
	"homecuistot/internal/pkg/common"
)

// Matcher 以單次查詢將一批名稱比對到目錄，*catalog.Matcher 即為實作
type Matcher interface {
	Match(ctx context.Context, names []string) (*catalog.MatchResult, error)
}

// Processor 執行各項操作，本身不保存會話狀態
type Processor struct {
	matcher Matcher
	newID   func() string
}

// Option 處理器選項
type Option func(*Processor)

// WithIDGenerator 替換新庫存品項與食譜 ID 的產生方式
func WithIDGenerator(gen func() string) Option {
	return func(p *Processor) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// NewProcessor 創建操作處理器
func NewProcessor(matcher Matcher, opts ...Option) *Processor {
	p := &Processor{
		matcher: matcher,
		newID:   common.GenerateUUID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// uniqueNames 以 Fold 去重，保留第一次出現的拼寫（只整理空白）
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := []string{}
	for _, n := range names {
		key := catalog.Fold(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.Join(strings.Fields(n), " "))
	}
	return out
}
