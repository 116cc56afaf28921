package aca1001

import (
	"time"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type QueryDto struct {
	ID          uint           `json:"id"`
	CardNo      string         `json:"cardNo"`
	BranchCode  string         `json:"branchCode"`
	Name        string         `json:"name"`
	IDNo        string         `json:"idNo"`
	Birthday    aftercare.Date `json:"birthday"`
	Gender      string         `json:"gender"`
	Address     string         `json:"address"`
	Phone       string         `json:"phone"`
	WorkerUser  string         `json:"workerUser"`
	IsDeleted   bool           `json:"isDeleted"`
	EraseReason string         `json:"eraseReason,omitempty"`
	ModifyUser  string         `json:"modifyUser"`
	ModifyDate  time.Time      `json:"modifyDate"`
}

func ToDto(c entity.AcaCard) QueryDto {
	return QueryDto{
		ID:          c.ID,
		CardNo:      c.CardNo,
		BranchCode:  c.BranchCode,
		Name:        c.Name,
		IDNo:        c.IDNo,
		Birthday:    aftercare.Date(c.Birthday),
		Gender:      c.Gender,
		Address:     c.Address,
		Phone:       c.Phone,
		WorkerUser:  c.WorkerUser,
		IsDeleted:   c.Deleted(),
		EraseReason: c.EraseReason,
		ModifyUser:  c.ModifyUser,
		ModifyDate:  c.ModifyDate,
	}
}
