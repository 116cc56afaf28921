package aca2003

import "github.com/axgrid/aftercare"

type QueryPayload struct {
	CardID         uint   `json:"cardId" validate:"required"`
	DrugKind       string `json:"drugKind" validate:"omitempty,max=20"`
	IncludeDeleted bool   `json:"includeDeleted"`
}

// DrugUseItem без id добавляется, с id — заменяет существующую запись карточки.
type DrugUseItem struct {
	ID        *uint          `json:"id" validate:"omitempty,min=1"`
	DrugKind  string         `json:"drugKind" validate:"required,max=20"`
	DrugLevel int            `json:"drugLevel" validate:"min=1,max=4"`
	UseDate   aftercare.Date `json:"useDate" validate:"required"`
	Source    string         `json:"source" validate:"max=100"`
	Remark    string         `json:"remark" validate:"max=200"`
}

type SavePayload struct {
	CardID uint          `json:"cardId" validate:"required"`
	Items  []DrugUseItem `json:"items" validate:"min=1,max=100,dive"`
}

type ErasePayload struct {
	IDs    []uint `json:"ids" validate:"min=1,dive,min=1"`
	Reason string `json:"reason" validate:"required,max=200"`
}

type RestorePayload struct {
	IDs []uint `json:"ids" validate:"min=1,dive,min=1"`
}
