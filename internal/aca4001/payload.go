package aca4001

type QueryPayload struct {
	BranchCode string `json:"branchCode" validate:"required,max=10"`
	WorkerUser string `json:"workerUser" validate:"omitempty,max=50"`
	// только карточки без ответственного
	Unassigned bool `json:"unassigned"`
}

type ReassignPayload struct {
	CardIDs  []uint `json:"cardIds" validate:"min=1,max=500,dive,min=1"`
	ToWorker string `json:"toWorker" validate:"required,max=50"`
	Reason   string `json:"reason" validate:"required,max=200"`
}
