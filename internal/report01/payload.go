package report01

import "github.com/axgrid/aftercare"

type Report01Payload struct {
	BranchCode string         `json:"branchCode" validate:"required,max=10"`
	From       aftercare.Date `json:"from" validate:"required"`
	To         aftercare.Date `json:"to" validate:"required,gtefield=From"`
}
