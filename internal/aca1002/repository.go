package aca1002

import (
	"context"

	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type Repository interface {
	QueryList(ctx context.Context, q QueryPayload, p aftercare.Pagination) ([]referralRow, error)
	CountSearch(ctx context.Context, q QueryPayload) (int64, error)
	FindMany(ctx context.Context, ids []uint) ([]entity.AcaReferral, error)
	// Transition меняет состояние только у строк в состоянии from и возвращает число изменённых.
	Transition(ctx context.Context, ids []uint, from int, patch map[string]any) (int64, error)
	BranchExists(ctx context.Context, code string) (bool, error)
	WithTx(tx *gorm.DB) Repository
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type repository struct {
	db *gorm.DB
}

var _ Repository = (*repository)(nil)

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository { return &repository{db: tx} }

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) search(ctx context.Context, q QueryPayload) *gorm.DB {
	db := r.db.WithContext(ctx).Table("aca_referral AS r").Where("r.branch_code = ?", q.BranchCode)
	if q.OrgCode != "" {
		db = db.Where("r.org_code = ?", q.OrgCode)
	}
	if q.SignState != nil {
		db = db.Where("r.sign_state = ?", *q.SignState)
	}
	if q.Name != "" {
		db = db.Where("r.name LIKE ?", "%"+q.Name+"%")
	}
	if !q.From.IsZero() {
		db = db.Where("r.referral_date >= ?", q.From.Time())
	}
	if !q.To.IsZero() {
		db = db.Where("r.referral_date <= ?", q.To.EndOfDay())
	}
	return db
}

func (r *repository) QueryList(ctx context.Context, q QueryPayload, p aftercare.Pagination) ([]referralRow, error) {
	var rows []referralRow
	db := r.search(ctx, q).
		Select("r.*, COALESCE(o.name, '') AS org_name").
		Joins("LEFT JOIN org AS o ON o.code = r.org_code").
		Order("r.referral_date, r.id").
		Scopes(p.Paged)
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

func (r *repository) FindMany(ctx context.Context, ids []uint) ([]entity.AcaReferral, error) {
	var out []entity.AcaReferral
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&out).Error
	return out, err
}

func (r *repository) Transition(ctx context.Context, ids []uint, from int, patch map[string]any) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&entity.AcaReferral{}).
		Where("id IN ? AND sign_state = ?", ids, from).
		Updates(patch)
	return tx.RowsAffected, tx.Error
}

func (r *repository) BranchExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Branch{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}
