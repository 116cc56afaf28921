package aca3001

import "github.com/axgrid/aftercare/internal/aca1001"

const (
	MatchIDNo         = "idNo"
	MatchNameBirthday = "nameBirthday"
	MatchBoth         = "both"
)

type CardMatch struct {
	MatchKind string           `json:"matchKind"`
	Card      aca1001.QueryDto `json:"card"`
}

type CompareResult struct {
	Input   CompareItem `json:"input"`
	Matches []CardMatch `json:"matches"`
}

type OpenCaseDto struct {
	ReferralID uint   `json:"referralId"`
	CardID     uint   `json:"cardId"`
	CardNo     string `json:"cardNo"`
	// Created — карточка заведена заново, а не найдена по номеру удостоверения
	Created bool `json:"created"`
}
