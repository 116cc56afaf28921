package report02

import (
	"github.com/shopspring/decimal"

	"github.com/axgrid/aftercare"
)

type Range struct {
	From aftercare.Date `json:"from"`
	To   aftercare.Date `json:"to"`
}

// FlatRow — строка GROUP BY до сборки дерева.
type FlatRow struct {
	BranchCode string `gorm:"column:branch_code"`
	OrgCode    string `gorm:"column:org_code"`
	OrgName    string `gorm:"column:org_name"`
	SignState  int    `gorm:"column:sign_state"`
	Count      int64  `gorm:"column:cnt"`
}

type Org struct {
	OrgCode      string `json:"orgCode"`
	OrgName      string `json:"orgName"`
	PendingCount int64  `json:"pendingCount"`
	SignedCount  int64  `json:"signedCount"`
	CaseCount    int64  `json:"caseCount"`
}

type Totals struct {
	OrgCount     int   `json:"orgCount"`
	PendingCount int64 `json:"pendingCount"`
	SignedCount  int64 `json:"signedCount"`
	CaseCount    int64 `json:"caseCount"`
	// доля подписанных (включая открытые дела) в процентах, два знака
	SignedRate decimal.Decimal `json:"signedRate"`
}

type Item struct {
	BranchCode string `json:"branchCode"`
	BranchName string `json:"branchName"`
	SortOrder  int    `json:"sortOrder"`
	Orgs       []Org  `json:"orgs"`
	Totals     Totals `json:"totals"`
}

type Report02Dto struct {
	Range      Range  `json:"range"`
	Items      []Item `json:"items"`
	GrandTotal Totals `json:"grandTotal"`
}
