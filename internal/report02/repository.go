package report02

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/axgrid/aftercare/internal/entity"
)

type Repository interface {
	QueryBranches(ctx context.Context) ([]entity.Branch, error)
	QueryFlatRows(ctx context.Context, from, to time.Time) ([]FlatRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository { return &repository{db: db} }

func (r *repository) QueryBranches(ctx context.Context) ([]entity.Branch, error) {
	var out []entity.Branch
	err := r.db.WithContext(ctx).Order("sort_order, code").Find(&out).Error
	return out, err
}

func (r *repository) QueryFlatRows(ctx context.Context, from, to time.Time) ([]FlatRow, error) {
	var rows []FlatRow
	err := r.db.WithContext(ctx).Table("aca_referral AS r").
		Select("r.branch_code, r.org_code, COALESCE(o.name, '') AS org_name, r.sign_state, COUNT(*) AS cnt").
		Joins("LEFT JOIN org AS o ON o.code = r.org_code").
		Where("r.referral_date BETWEEN ? AND ?", from, to).
		Where("r.sign_state IN ?", []int{entity.SignPending, entity.SignSigned, entity.SignOpened}).
		Group("r.branch_code, r.org_code, o.name, r.sign_state").
		Scan(&rows).Error
	return rows, err
}
