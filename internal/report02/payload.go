package report02

import "github.com/axgrid/aftercare"

type Report02Payload struct {
	From aftercare.Date `json:"from" validate:"required"`
	To   aftercare.Date `json:"to" validate:"required,gtefield=From"`
}
