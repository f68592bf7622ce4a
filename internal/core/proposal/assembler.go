package proposal

import "homecuistot/internal/core/catalog"

// Proposal 一個回合產生、待使用者確認的提案
type Proposal struct {
	Results      []Result `json:"results"`
	Unrecognized []string `json:"unrecognized"`
	Counts       Counts   `json:"counts"`
}

// Empty 回報是否沒有任何處理器產生結果
func (p *Proposal) Empty() bool {
	return len(p.Results) == 0
}

// Assembler 依呼叫順序收集處理器結果
type Assembler struct {
	results      []Result
	unrecognized []string
	seen         map[string]struct{}
	counts       Counts
}

// NewAssembler 創建新的提案組合器
func NewAssembler() *Assembler {
	return &Assembler{seen: make(map[string]struct{})}
}

// Add 加入一個結果
//
// 未識別名稱依 Fold 後拼寫彙整一次，兩個處理器回報同一名稱只算一次。
func (a *Assembler) Add(r Result) {
	if r == nil {
		return
	}
	a.results = append(a.results, r)

	c := r.Counts()
	c.Unrecognized = 0
	a.counts = a.counts.Plus(c)

	for _, name := range r.Unrecognized() {
		key := catalog.Fold(name)
		if key == "" {
			continue
		}
		if _, ok := a.seen[key]; ok {
			continue
		}
		a.seen[key] = struct{}{}
		a.unrecognized = append(a.unrecognized, name)
	}
}

// Proposal 回傳組裝好的提案，切片不會是 nil
func (a *Assembler) Proposal() *Proposal {
	p := &Proposal{
		Results:      append([]Result{}, a.results...),
		Unrecognized: append([]string{}, a.unrecognized...),
		Counts:       a.counts,
	}
	p.Counts.Unrecognized = len(p.Unrecognized)
	return p
}
