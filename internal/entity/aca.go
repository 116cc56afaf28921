package entity

import (
	"time"

	"github.com/axgrid/aftercare"
)

type AcaCard struct {
	aftercare.BaseEntity
	aftercare.SoftDelete
	CardNo     string    `gorm:"size:20;uniqueIndex"`
	BranchCode string    `gorm:"size:10;index"`
	Name       string    `gorm:"size:50;index"`
	IDNo       string    `gorm:"column:id_no;size:10;index"`
	Birthday   time.Time `gorm:"type:date"`
	Gender     string    `gorm:"size:1"`
	Address    string    `gorm:"size:200"`
	Phone      string    `gorm:"size:30"`
	WorkerUser string    `gorm:"size:50;index"`
}

func (AcaCard) TableName() string { return "aca_card" }

// Состояния подписания направления.
const (
	SignPending  = 0
	SignSigned   = 1
	SignReturned = 2
	SignOpened   = 3
)

type AcaReferral struct {
	aftercare.BaseEntity
	BranchCode   string    `gorm:"size:10;index"`
	OrgCode      string    `gorm:"size:10;index"`
	Name         string    `gorm:"size:50"`
	IDNo         string    `gorm:"column:id_no;size:10;index"`
	Birthday     time.Time `gorm:"type:date"`
	ReferralDate time.Time `gorm:"index"`
	SignState    int       `gorm:"index;not null;default:0"`
	SignUser     string    `gorm:"size:50"`
	SignDate     *time.Time
	BackReason   string `gorm:"size:200"`
	FromBranch   string `gorm:"size:10"`
	CardID       *uint  `gorm:"index"`
}

func (AcaReferral) TableName() string { return "aca_referral" }

type AcaDrugUse struct {
	aftercare.BaseEntity
	aftercare.SoftDelete
	CardID    uint      `gorm:"index;not null"`
	DrugKind  string    `gorm:"size:20"`
	DrugLevel int       `gorm:"not null"`
	UseDate   time.Time `gorm:"type:date"`
	Source    string    `gorm:"size:100"`
	Remark    string    `gorm:"size:200"`
}

func (AcaDrugUse) TableName() string { return "aca_drug_use" }

type AcaReassignLog struct {
	aftercare.BaseEntity
	CardID     uint   `gorm:"index;not null"`
	FromWorker string `gorm:"size:50"`
	ToWorker   string `gorm:"size:50"`
	Reason     string `gorm:"size:200"`
}

func (AcaReassignLog) TableName() string { return "aca_reassign_log" }

// AfterCarePrintLog — журнал печати: одна запись на карточку в выгрузке.
type AfterCarePrintLog struct {
	aftercare.BaseEntity
	BatchID    string `gorm:"size:36;index"`
	ReportName string `gorm:"size:50"`
	CardID     uint   `gorm:"index"`
	CardNo     string `gorm:"size:20"`
	PrintedAt  time.Time
}

func (AfterCarePrintLog) TableName() string { return "sup_aftercare_print_log" }

// All — модели для AutoMigrate.
func All() []any {
	return []any{
		&Branch{}, &Org{},
		&AcaCard{}, &AcaReferral{}, &AcaDrugUse{}, &AcaReassignLog{},
		&AfterCarePrintLog{},
	}
}
