package report01

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type Repository interface {
	// QueryRows — карточки филиала с направлениями за период, по номеру карточки.
	QueryRows(ctx context.Context, branch string, from, to time.Time) ([]Report01Dto, error)
}

// PrintLogger пишет журнал печати по отрисованным строкам.
type PrintLogger interface {
	Insert(ctx context.Context, batchID uuid.UUID, report string, rows []Report01Dto) error
}

type repository struct {
	db *gorm.DB
}

var _ Repository = (*repository)(nil)

func NewRepository(db *gorm.DB) Repository { return &repository{db: db} }

func (r *repository) QueryRows(ctx context.Context, branch string, from, to time.Time) ([]Report01Dto, error) {
	db := r.db.WithContext(ctx)

	// только направления действующих карточек филиала, остальные филиалы не читаются
	var refs []entity.AcaReferral
	err := db.Select("aca_referral.card_id", "aca_referral.referral_date").
		Joins("JOIN aca_card ON aca_card.id = aca_referral.card_id").
		Where("aca_card.branch_code = ?", branch).
		Scopes(aftercare.NotDeletedOn("aca_card")).
		Where("aca_referral.referral_date BETWEEN ? AND ?", from, to).
		Find(&refs).Error
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return []Report01Dto{}, nil
	}
	// дату последнего направления считаем здесь: MAX по дате в sqlite теряет тип
	last := make(map[uint]time.Time, len(refs))
	seen := make(map[uint]int, len(refs))
	ids := make([]uint, 0, len(refs))
	for _, ref := range refs {
		id := *ref.CardID
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
		seen[id]++
		if ref.ReferralDate.After(last[id]) {
			last[id] = ref.ReferralDate
		}
	}

	var cards []entity.AcaCard
	err = db.Scopes(aftercare.NotDeleted).
		Where("branch_code = ? AND id IN ?", branch, ids).
		Order("card_no").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return []Report01Dto{}, nil
	}

	cardIDs := make([]uint, len(cards))
	for i, c := range cards {
		cardIDs[i] = c.ID
	}
	var counts []drugCount
	err = db.Model(&entity.AcaDrugUse{}).
		Scopes(aftercare.NotDeleted).
		Select("card_id, COUNT(*) AS cnt").
		Where("card_id IN ?", cardIDs).
		Group("card_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	drugs := make(map[uint]int64, len(counts))
	for _, c := range counts {
		drugs[c.CardID] = c.Count
	}

	out := make([]Report01Dto, len(cards))
	for i, c := range cards {
		out[i] = Report01Dto{
			CardID:           c.ID,
			CardNo:           c.CardNo,
			Name:             c.Name,
			IDNo:             c.IDNo,
			Birthday:         c.Birthday,
			Gender:           c.Gender,
			WorkerUser:       c.WorkerUser,
			LastReferralDate: last[c.ID],
			ReferralCount:    seen[c.ID],
			DrugUseCount:     drugs[c.ID],
		}
	}
	return out, nil
}

type printLog struct {
	db *gorm.DB
}

// NewPrintLogger пишет в sup_aftercare_print_log одну запись на строку.
func NewPrintLogger(db *gorm.DB) PrintLogger { return &printLog{db: db} }

func (r *printLog) Insert(ctx context.Context, batchID uuid.UUID, report string, rows []Report01Dto) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now()
	logs := make([]entity.AfterCarePrintLog, len(rows))
	for i, row := range rows {
		logs[i] = entity.AfterCarePrintLog{
			BatchID:    batchID.String(),
			ReportName: report,
			CardID:     row.CardID,
			CardNo:     row.CardNo,
			PrintedAt:  now,
		}
	}
	return r.db.WithContext(ctx).CreateInBatches(&logs, 100).Error
}
