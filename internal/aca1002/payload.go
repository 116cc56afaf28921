package aca1002

import "github.com/axgrid/aftercare"

type QueryPayload struct {
	BranchCode string         `json:"branchCode" validate:"required,max=10"`
	OrgCode    string         `json:"orgCode" validate:"omitempty,max=10"`
	SignState  *int           `json:"signState" validate:"omitempty,oneof=0 1 2 3"`
	Name       string         `json:"name" validate:"omitempty,max=50"`
	From       aftercare.Date `json:"from"`
	To         aftercare.Date `json:"to" validate:"omitempty,gtefield=From"`
}

type SignPayload struct {
	IDs []uint `json:"ids" validate:"min=1,dive,min=1"`
}

type GoBackPayload struct {
	IDs    []uint `json:"ids" validate:"min=1,dive,min=1"`
	Reason string `json:"reason" validate:"required,max=200"`
}

type TransPortPayload struct {
	IDs      []uint `json:"ids" validate:"min=1,dive,min=1"`
	ToBranch string `json:"toBranch" validate:"required,max=10"`
}
