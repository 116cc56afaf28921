package report02

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/axgrid/aftercare/internal/entity"
)

var hundred = decimal.NewFromInt(100)

// Aggregate собирает плоские строки в дерево филиал -> организация.
// Филиалы без строк остаются в отчёте с пустым списком организаций.
// Состояния кроме 0, 1 и 3 не учитываются.
func Aggregate(branches []entity.Branch, rows []FlatRow, rng Range) Report02Dto {
	items := make([]*Item, 0, len(branches))
	byCode := make(map[string]*Item, len(branches))
	for _, b := range branches {
		it := &Item{BranchCode: b.Code, BranchName: b.Name, SortOrder: b.SortOrder, Orgs: []Org{}}
		items = append(items, it)
		byCode[b.Code] = it
	}
	unknownFrom := len(items)

	orgIdx := make(map[[2]string]int)
	for _, r := range rows {
		if !counted(r.SignState) {
			continue
		}
		it, ok := byCode[r.BranchCode]
		if !ok {
			// строки филиала, которого нет в справочнике, не теряются
			it = &Item{BranchCode: r.BranchCode, BranchName: r.BranchCode, SortOrder: -1, Orgs: []Org{}}
			items = append(items, it)
			byCode[r.BranchCode] = it
		}
		key := [2]string{r.BranchCode, r.OrgCode}
		i, ok := orgIdx[key]
		if !ok {
			it.Orgs = append(it.Orgs, Org{OrgCode: r.OrgCode, OrgName: r.OrgName})
			i = len(it.Orgs) - 1
			orgIdx[key] = i
		}
		o := &it.Orgs[i]
		switch r.SignState {
		case entity.SignPending:
			o.PendingCount += r.Count
		case entity.SignSigned:
			o.SignedCount += r.Count
		case entity.SignOpened:
			o.CaseCount += r.Count
		}
	}

	slices.SortStableFunc(items[:unknownFrom], func(a, b *Item) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.BranchCode, b.BranchCode))
	})
	slices.SortFunc(items[unknownFrom:], func(a, b *Item) int { return cmp.Compare(a.BranchCode, b.BranchCode) })

	out := Report02Dto{Range: rng, Items: make([]Item, 0, len(items))}
	var grand Totals
	for _, it := range items {
		slices.SortFunc(it.Orgs, func(a, b Org) int { return cmp.Compare(a.OrgCode, b.OrgCode) })
		it.Totals = sum(it.Orgs)
		grand.OrgCount += it.Totals.OrgCount
		grand.PendingCount += it.Totals.PendingCount
		grand.SignedCount += it.Totals.SignedCount
		grand.CaseCount += it.Totals.CaseCount
		out.Items = append(out.Items, *it)
	}
	grand.SignedRate = rate(grand)
	out.GrandTotal = grand
	return out
}

func counted(state int) bool {
	return state == entity.SignPending || state == entity.SignSigned || state == entity.SignOpened
}

func sum(orgs []Org) Totals {
	t := Totals{OrgCount: len(orgs)}
	for _, o := range orgs {
		t.PendingCount += o.PendingCount
		t.SignedCount += o.SignedCount
		t.CaseCount += o.CaseCount
	}
	t.SignedRate = rate(t)
	return t
}

func rate(t Totals) decimal.Decimal {
	total := t.PendingCount + t.SignedCount + t.CaseCount
	if total == 0 {
		return decimal.Zero.Round(2)
	}
	return decimal.NewFromInt(t.SignedCount + t.CaseCount).
		Mul(hundred).
		DivRound(decimal.NewFromInt(total), 2)
}
