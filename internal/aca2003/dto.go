package aca2003

import (
	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type QueryDto struct {
	ID          uint           `json:"id"`
	CardID      uint           `json:"cardId"`
	DrugKind    string         `json:"drugKind"`
	DrugLevel   int            `json:"drugLevel"`
	UseDate     aftercare.Date `json:"useDate"`
	Source      string         `json:"source"`
	Remark      string         `json:"remark"`
	IsDeleted   bool           `json:"isDeleted"`
	EraseReason string         `json:"eraseReason,omitempty"`
	ModifyUser  string         `json:"modifyUser"`
}

func toDto(e entity.AcaDrugUse) QueryDto {
	return QueryDto{
		ID:          e.ID,
		CardID:      e.CardID,
		DrugKind:    e.DrugKind,
		DrugLevel:   e.DrugLevel,
		UseDate:     aftercare.Date(e.UseDate),
		Source:      e.Source,
		Remark:      e.Remark,
		IsDeleted:   e.Deleted(),
		EraseReason: e.EraseReason,
		ModifyUser:  e.ModifyUser,
	}
}
