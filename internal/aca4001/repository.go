package aca4001

import (
	"context"

	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type Repository interface {
	QueryList(ctx context.Context, q QueryPayload, p aftercare.Pagination) ([]workloadRow, error)
	CountSearch(ctx context.Context, q QueryPayload) (int64, error)
	GetCards(ctx context.Context, ids []uint) ([]entity.AcaCard, error)
	SetWorker(ctx context.Context, cardID uint, worker string) error
	InsertLog(ctx context.Context, log *entity.AcaReassignLog) error
	WithTx(tx *gorm.DB) Repository
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

var cardConfig = aftercare.RepoConfig{SoftDelete: true}

type repository struct {
	db   *gorm.DB
	card *aftercare.GormRepo[entity.AcaCard, uint]
	log  *aftercare.GormRepo[entity.AcaReassignLog, uint]
}

var _ Repository = (*repository)(nil)

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db:   db,
		card: aftercare.NewGormRepo[entity.AcaCard, uint](db, cardConfig),
		log:  aftercare.NewGormRepo[entity.AcaReassignLog, uint](db, aftercare.RepoConfig{}),
	}
}

func (r *repository) WithTx(tx *gorm.DB) Repository { return NewRepository(tx) }

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.card.Transaction(ctx, fn)
}

func (r *repository) search(ctx context.Context, q QueryPayload) *gorm.DB {
	db := r.db.WithContext(ctx).Table("aca_card AS c").
		Scopes(aftercare.NotDeletedOn("c")).
		Where("c.branch_code = ?", q.BranchCode)
	if q.WorkerUser != "" {
		db = db.Where("c.worker_user = ?", q.WorkerUser)
	}
	if q.Unassigned {
		db = db.Where("(c.worker_user = '' OR c.worker_user IS NULL)")
	}
	return db
}

func (r *repository) QueryList(ctx context.Context, q QueryPayload, p aftercare.Pagination) ([]workloadRow, error) {
	db := r.search(ctx, q).
		Select("c.id AS card_id, c.card_no, c.name, c.id_no, c.branch_code, c.worker_user, COUNT(l.id) AS reassign_count").
		Joins("LEFT JOIN aca_reassign_log AS l ON l.card_id = c.id").
		Group("c.id, c.card_no, c.name, c.id_no, c.branch_code, c.worker_user").
		Order("c.card_no").
		Scopes(p.Paged)
	var rows []workloadRow
	if err := db.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountSearch(ctx context.Context, q QueryPayload) (int64, error) {
	var total int64
	err := r.search(ctx, q).Count(&total).Error
	return total, err
}

func (r *repository) GetCards(ctx context.Context, ids []uint) ([]entity.AcaCard, error) {
	return r.card.GetMany(ctx, ids)
}

func (r *repository) SetWorker(ctx context.Context, cardID uint, worker string) error {
	_, err := r.card.Update(ctx, cardID, map[string]any{"worker_user": worker})
	return err
}

func (r *repository) InsertLog(ctx context.Context, log *entity.AcaReassignLog) error {
	return r.log.Create(ctx, log)
}
