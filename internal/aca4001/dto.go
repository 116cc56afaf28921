package aca4001

type QueryDto struct {
	CardID        uint   `json:"cardId"`
	CardNo        string `json:"cardNo"`
	Name          string `json:"name"`
	IDNo          string `json:"idNo"`
	BranchCode    string `json:"branchCode"`
	WorkerUser    string `json:"workerUser"`
	ReassignCount int64  `json:"reassignCount"`
}

type workloadRow struct {
	CardID        uint   `gorm:"column:card_id"`
	CardNo        string `gorm:"column:card_no"`
	Name          string `gorm:"column:name"`
	IDNo          string `gorm:"column:id_no"`
	BranchCode    string `gorm:"column:branch_code"`
	WorkerUser    string `gorm:"column:worker_user"`
	ReassignCount int64  `gorm:"column:reassign_count"`
}

func (r workloadRow) dto() QueryDto {
	return QueryDto(r)
}
