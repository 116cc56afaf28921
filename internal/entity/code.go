package entity

import "github.com/axgrid/aftercare"

// Branch — справочник филиалов, SortOrder задаёт порядок в отчётах.
type Branch struct {
	aftercare.BaseEntity
	Code      string `gorm:"size:10;uniqueIndex" json:"code" validate:"required,max=10"`
	Name      string `gorm:"size:100" json:"name" validate:"required,max=100"`
	SortOrder int    `json:"sortOrder"`
}

func (Branch) TableName() string { return "branch" }

type Org struct {
	aftercare.BaseEntity
	Code       string `gorm:"size:10;uniqueIndex" json:"code" validate:"required,max=10"`
	Name       string `gorm:"size:100" json:"name" validate:"required,max=100"`
	BranchCode string `gorm:"size:10;index" json:"branchCode" validate:"required,max=10"`
}

func (Org) TableName() string { return "org" }
