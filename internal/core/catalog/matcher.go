package catalog

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"homecuistot/internal/pkg/common"
)

// MatchResult 一次批次比對的結果
type MatchResult struct {
	Matched           []Entry  `json:"matched"`
	UnrecognizedNames []string `json:"unrecognized_names"`

	byKey map[string]Entry
}

// Resolve 依正規化鍵取回輸入名稱對應的目錄項目
func (r *MatchResult) Resolve(raw string) (Entry, bool) {
	if r == nil || r.byKey == nil {
		return Entry{}, false
	}
	e, ok := r.byKey[Normalize(raw)]
	return e, ok
}

// Matcher 將名稱批次比對到目錄
type Matcher struct {
	store Store
}

// NewMatcher 創建比對器
func NewMatcher(store Store) *Matcher {
	return &Matcher{store: store}
}

// nameGroup 同一正規化鍵下的所有輸入
type nameGroup struct {
	key     string
	folds   []string
	display string
	// candidates 依優先順序排列：所有原拼寫，再來是各拼寫的單數化寫法
	candidates []string
}

// Match 正規化並去重後，以單次查詢比對整批名稱
//
// 結果只取決於名稱集合本身，與輸入順序及重複次數無關。空白名稱會被忽略。
func (m *Matcher) Match(ctx context.Context, names []string) (*MatchResult, error) {
	groups := groupNames(names)
	result := &MatchResult{
		Matched:           []Entry{},
		UnrecognizedNames: []string{},
		byKey:             make(map[string]Entry, len(groups)),
	}
	if len(groups) == 0 {
		return result, nil
	}

	candidates := lookupCandidates(groups)
	start := time.Now()
	entries, err := m.store.LookupByNames(ctx, candidates)
	common.LogCatalogLookup(len(candidates), len(entries), time.Since(start), err)
	if err != nil {
		return nil, common.ErrCatalogUnavailable.Wrap(err)
	}

	byName := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byName[Fold(e.Name)] = e
	}

	seen := make(map[string]bool)
	for _, g := range groups {
		entry, ok := resolveGroup(g, byName)
		if !ok {
			result.UnrecognizedNames = append(result.UnrecognizedNames, g.display)
			continue
		}
		result.byKey[g.key] = entry
		if !seen[entry.ID] {
			seen[entry.ID] = true
			result.Matched = append(result.Matched, entry)
		}
	}

	sort.Slice(result.Matched, func(i, j int) bool {
		if result.Matched[i].Name != result.Matched[j].Name {
			return result.Matched[i].Name < result.Matched[j].Name
		}
		return result.Matched[i].ID < result.Matched[j].ID
	})

	return result, nil
}

// groupNames 依正規化鍵分組，並排序以保證確定性
func groupNames(names []string) []*nameGroup {
	byKey := make(map[string]*nameGroup)
	for _, raw := range names {
		key := Normalize(raw)
		if key == "" {
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &nameGroup{key: key}
			byKey[key] = g
		}
		fold := Fold(raw)
		if !slices.Contains(g.folds, fold) {
			g.folds = append(g.folds, fold)
		}
		display := trimmed(raw)
		if g.display == "" || display < g.display {
			g.display = display
		}
	}

	groups := make([]*nameGroup, 0, len(byKey))
	for _, g := range byKey {
		sort.Strings(g.folds)
		g.candidates = append([]string{}, g.folds...)
		for _, fold := range g.folds {
			for _, v := range Variants(fold) {
				if !slices.Contains(g.candidates, v) {
					g.candidates = append(g.candidates, v)
				}
			}
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].key < groups[j].key })
	return groups
}

// lookupCandidates 收集所有分組的候選鍵，交給同一次查詢
func lookupCandidates(groups []*nameGroup) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range groups {
		for _, c := range g.candidates {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

// resolveGroup 取第一個命中目錄的候選鍵，原拼寫優先
func resolveGroup(g *nameGroup, byName map[string]Entry) (Entry, bool) {
	for _, c := range g.candidates {
		if e, ok := byName[c]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// trimmed 保留原大小寫，只整理空白
func trimmed(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
