package report01

import (
	"time"

	"github.com/google/uuid"
)

// Report01Dto — строка списка дел к печати.
type Report01Dto struct {
	CardID           uint
	CardNo           string
	Name             string
	IDNo             string
	Birthday         time.Time
	Gender           string
	WorkerUser       string
	LastReferralDate time.Time
	ReferralCount    int
	DrugUseCount     int64
}

// File — готовая выгрузка. Тело в конверт не сериализуется, его отдаёт контроллер.
type File struct {
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Body        []byte    `json:"-"`
	BatchID     uuid.UUID `json:"batchId"`
	Rows        int       `json:"rows"`
}

type drugCount struct {
	CardID uint  `gorm:"column:card_id"`
	Count  int64 `gorm:"column:cnt"`
}
