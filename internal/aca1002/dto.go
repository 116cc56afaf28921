package aca1002

import (
	"time"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type QueryDto struct {
	ID            uint           `json:"id"`
	BranchCode    string         `json:"branchCode"`
	OrgCode       string         `json:"orgCode"`
	OrgName       string         `json:"orgName"`
	Name          string         `json:"name"`
	IDNo          string         `json:"idNo"`
	Birthday      aftercare.Date `json:"birthday"`
	ReferralDate  time.Time      `json:"referralDate"`
	SignState     int            `json:"signState"`
	SignStateName string         `json:"signStateName"`
	SignUser      string         `json:"signUser,omitempty"`
	SignDate      *time.Time     `json:"signDate,omitempty"`
	BackReason    string         `json:"backReason,omitempty"`
	FromBranch    string         `json:"fromBranch,omitempty"`
	CardID        *uint          `json:"cardId,omitempty"`
}

// referralRow — строка выборки с названием организации из справочника.
type referralRow struct {
	entity.AcaReferral
	OrgName string
}

func StateName(state int) string {
	switch state {
	case entity.SignPending:
		return "pending"
	case entity.SignSigned:
		return "signed"
	case entity.SignReturned:
		return "returned"
	case entity.SignOpened:
		return "opened"
	}
	return "unknown"
}

func toDto(r referralRow) QueryDto {
	return QueryDto{
		ID:            r.ID,
		BranchCode:    r.BranchCode,
		OrgCode:       r.OrgCode,
		OrgName:       r.OrgName,
		Name:          r.Name,
		IDNo:          r.IDNo,
		Birthday:      aftercare.Date(r.Birthday),
		ReferralDate:  r.ReferralDate,
		SignState:     r.SignState,
		SignStateName: StateName(r.SignState),
		SignUser:      r.SignUser,
		SignDate:      r.SignDate,
		BackReason:    r.BackReason,
		FromBranch:    r.FromBranch,
		CardID:        r.CardID,
	}
}
