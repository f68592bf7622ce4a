package reconcile

import (
	"context"
	"sort"

	"homecuistot/internal/core/catalog"
	"homecuistot/internal/core/proposal"
	"homecuistot/internal/core/session"
)

// mergedUpsert 同一目錄項目的合併請求
type mergedUpsert struct {
	entry    catalog.Entry
	quantity session.QuantityLevel
	staple   *bool
}

// merge 將同一目錄項目的另一筆請求併入 m
//
// 結果與請求順序無關：存量取最高，常備標記 true 優先。
func (m *mergedUpsert) merge(q session.QuantityLevel, staple *bool) {
	if q > m.quantity {
		m.quantity = q
	}
	if staple == nil {
		return
	}
	if m.staple == nil {
		v := *staple
		m.staple = &v
		return
	}
	if *staple {
		*m.staple = true
	}
}

// UpsertInventory 依名稱新增或更新品項
//
// 對應到同一目錄項目的名稱會合併；比對不到的名稱只回報，不會自行建立。
func (p *Processor) UpsertInventory(ctx context.Context, req InventoryUpsert, snap session.Snapshot) (*proposal.InventoryResult, session.Snapshot, error) {
	names := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		names = append(names, it.Name)
	}

	match, err := p.matcher.Match(ctx, names)
	if err != nil {
		return nil, snap, err
	}

	byID := make(map[string]*mergedUpsert)
	for _, it := range req.Items {
		entry, ok := match.Resolve(it.Name)
		if !ok {
			continue
		}
		if m, exists := byID[entry.ID]; exists {
			m.merge(it.Quantity, it.IsStaple)
			continue
		}
		m := &mergedUpsert{entry: entry, quantity: it.Quantity}
		if it.IsStaple != nil {
			v := *it.IsStaple
			m.staple = &v
		}
		byID[entry.ID] = m
	}

	merged := make([]*mergedUpsert, 0, len(byID))
	for _, m := range byID {
		merged = append(merged, m)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].entry.Name != merged[j].entry.Name {
			return merged[i].entry.Name < merged[j].entry.Name
		}
		return merged[i].entry.ID < merged[j].entry.ID
	})

	next := snap.Clone()
	result := &proposal.InventoryResult{
		Op:                proposal.KindInventoryUpsert,
		Diffs:             []proposal.InventoryDiff{},
		UnrecognizedNames: append([]string{}, match.UnrecognizedNames...),
	}

	for _, m := range merged {
		item, idx, found := next.InventoryByCatalogID(m.entry.ID)
		if !found {
			result.Diffs = append(result.Diffs, proposal.NewInventoryDiff(m.entry, nil, m.quantity, m.staple))
			next.Inventory = append(next.Inventory, session.InventoryItem{
				ID:        p.newID(),
				CatalogID: m.entry.ID,
				Name:      m.entry.Name,
				Quantity:  m.quantity,
				IsStaple:  m.staple != nil && *m.staple,
			})
			continue
		}

		prev := item
		result.Diffs = append(result.Diffs, proposal.NewInventoryDiff(m.entry, &prev, m.quantity, m.staple))
		item.Quantity = m.quantity
		if m.staple != nil {
			item.IsStaple = *m.staple
		}
		next.Inventory[idx] = item
	}

	return result, next, nil
}

// BulkUpdateInventory 將選中的品項設為目標存量
//
// 目標為 0 時移除品項並清除常備標記。沒有目錄 ID 的品項回報為未識別，但仍會被修改。
func (p *Processor) BulkUpdateInventory(ctx context.Context, req InventoryBulk, snap session.Snapshot) (*proposal.InventoryResult, session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, snap, err
	}

	result := &proposal.InventoryResult{
		Op:                proposal.KindInventoryBulk,
		Diffs:             []proposal.InventoryDiff{},
		UnrecognizedNames: []string{},
	}
	next := snap.Clone()
	kept := make([]session.InventoryItem, 0, len(next.Inventory))
	var orphans []string

	for _, item := range next.Inventory {
		if req.StapleFilter != nil && item.IsStaple != *req.StapleFilter {
			kept = append(kept, item)
			continue
		}

		if item.CatalogID == "" {
			orphans = append(orphans, item.Name)
		}

		if req.Quantity == session.QuantityOut {
			if item.CatalogID != "" {
				result.Diffs = append(result.Diffs, proposal.NewRemovalDiff(item))
			}
			continue
		}

		if item.CatalogID != "" {
			prev := item
			entry := catalog.Entry{ID: item.CatalogID, Name: item.Name}
			result.Diffs = append(result.Diffs, proposal.NewInventoryDiff(entry, &prev, req.Quantity, nil))
		}
		item.Quantity = req.Quantity
		kept = append(kept, item)
	}

	next.Inventory = kept
	sortInventoryDiffs(result.Diffs)
	result.UnrecognizedNames = uniqueNames(orphans)
	return result, next, nil
}

// DeleteAllInventory 將所有品項提案為 0 並清空庫存，沒有目錄 ID 的品項回報為未識別
func (p *Processor) DeleteAllInventory(ctx context.Context, _ InventoryDeleteAll, snap session.Snapshot) (*proposal.InventoryResult, session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, snap, err
	}

	result := &proposal.InventoryResult{
		Op:                proposal.KindInventoryDeleteAll,
		Diffs:             []proposal.InventoryDiff{},
		UnrecognizedNames: []string{},
	}
	var orphans []string
	for _, item := range snap.Inventory {
		if item.CatalogID == "" {
			orphans = append(orphans, item.Name)
			continue
		}
		result.Diffs = append(result.Diffs, proposal.NewRemovalDiff(item))
	}
	sortInventoryDiffs(result.Diffs)
	result.UnrecognizedNames = uniqueNames(orphans)

	next := snap.Clone()
	next.Inventory = []session.InventoryItem{}
	return result, next, nil
}

func sortInventoryDiffs(diffs []proposal.InventoryDiff) {
	sort.SliceStable(diffs, func(i, j int) bool {
		if diffs[i].Name != diffs[j].Name {
			return diffs[i].Name < diffs[j].Name
		}
		return diffs[i].CatalogID < diffs[j].CatalogID
	})
}
