package aca3001

import "github.com/axgrid/aftercare"

// CompareItem: нужен номер удостоверения или имя с датой рождения.
type CompareItem struct {
	Name     string         `json:"name" validate:"required,max=50"`
	IDNo     string         `json:"idNo" validate:"omitempty,idno"`
	Birthday aftercare.Date `json:"birthday" validate:"required_without=IDNo"`
}

type CompareAcaPayload struct {
	Items []CompareItem `json:"items" validate:"min=1,max=200,dive"`
}

type OpenCasePayload struct {
	ReferralID uint   `json:"referralId" validate:"required"`
	WorkerUser string `json:"workerUser" validate:"max=50"`
}
