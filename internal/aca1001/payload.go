package aca1001

import "github.com/axgrid/aftercare"

type QueryPayload struct {
	BranchCode     string         `json:"branchCode" validate:"omitempty,max=10"`
	CardNo         string         `json:"cardNo" validate:"omitempty,max=20"`
	Name           string         `json:"name" validate:"omitempty,max=50"`
	IDNo           string         `json:"idNo" validate:"omitempty,max=10"`
	WorkerUser     string         `json:"workerUser" validate:"omitempty,max=50"`
	BirthFrom      aftercare.Date `json:"birthFrom"`
	BirthTo        aftercare.Date `json:"birthTo" validate:"omitempty,gtefield=BirthFrom"`
	IncludeDeleted bool           `json:"includeDeleted"`
}

// SavePayload: без id создаётся новая карточка, с id — правится существующая.
type SavePayload struct {
	ID         *uint          `json:"id" validate:"omitempty,min=1"`
	BranchCode string         `json:"branchCode" validate:"required,max=10"`
	Name       string         `json:"name" validate:"required,max=50"`
	IDNo       string         `json:"idNo" validate:"required,idno"`
	Birthday   aftercare.Date `json:"birthday" validate:"required"`
	Gender     string         `json:"gender" validate:"required,oneof=M F"`
	Address    string         `json:"address" validate:"max=200"`
	Phone      string         `json:"phone" validate:"max=30"`
	WorkerUser string         `json:"workerUser" validate:"max=50"`
}

type ErasePayload struct {
	IDs    []uint `json:"ids" validate:"min=1,dive,min=1"`
	Reason string `json:"reason" validate:"required,max=200"`
}

type RestorePayload struct {
	IDs []uint `json:"ids" validate:"min=1,dive,min=1"`
}
