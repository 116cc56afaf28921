package aca2003

import (
	"context"

	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type Repository interface {
	QueryList(ctx context.Context, q QueryPayload, p aftercare.Pagination) ([]entity.AcaDrugUse, error)
	CountSearch(ctx context.Context, q QueryPayload) (int64, error)
	// FindForCard ищет действующую запись только среди записей указанной карточки
	FindForCard(ctx context.Context, id, cardID uint) (entity.AcaDrugUse, error)
	CardExists(ctx context.Context, cardID uint) (bool, error)
	Save(ctx context.Context, e *entity.AcaDrugUse) error
	Erase(ctx context.Context, ids []uint, reason string) (int64, error)
	Restore(ctx context.Context, ids []uint) (int64, error)
	WithTx(tx *gorm.DB) Repository
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

var drugUseConfig = aftercare.RepoConfig{
	AllowedFilterOps: map[string]aftercare.FieldSet{
		"id":        aftercare.NewFieldSet("eq"),
		"card_id":   aftercare.NewFieldSet("eq"),
		"drug_kind": aftercare.NewFieldSet("eq"),
	},
	DefaultOrder: "use_date DESC, id",
	SoftDelete:   true,
}

type repository struct {
	db   *gorm.DB
	crud *aftercare.GormRepo[entity.AcaDrugUse, uint]
}

var _ Repository = (*repository)(nil)

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db, crud: aftercare.NewGormRepo[entity.AcaDrugUse, uint](db, drugUseConfig)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository { return NewRepository(tx) }

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.crud.Transaction(ctx, fn)
}

func listParams(q QueryPayload) aftercare.ListParams {
	lp := aftercare.ListParams{WithDeleted: q.IncludeDeleted}
	lp.Filters = append(lp.Filters, aftercare.Eq("card_id", q.CardID)...)
	lp.Filters = append(lp.Filters, aftercare.Eq("drug_kind", q.DrugKind)...)
	return lp
}

func (r *repository) QueryList(ctx context.Context, q QueryPayload, p aftercare.Pagination) ([]entity.AcaDrugUse, error) {
	lp := listParams(q)
	lp.Pagination = p
	return r.crud.QueryList(ctx, lp)
}

func (r *repository) CountSearch(ctx context.Context, q QueryPayload) (int64, error) {
	return r.crud.CountSearch(ctx, listParams(q))
}

func (r *repository) FindForCard(ctx context.Context, id, cardID uint) (entity.AcaDrugUse, error) {
	rows, err := r.crud.QueryList(ctx, aftercare.ListParams{
		Filters: append(aftercare.Eq("id", id), aftercare.Eq("card_id", cardID)...),
	})
	if err != nil {
		return entity.AcaDrugUse{}, err
	}
	if len(rows) == 0 {
		return entity.AcaDrugUse{}, aftercare.ErrNotFound
	}
	return rows[0], nil
}

func (r *repository) CardExists(ctx context.Context, cardID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.AcaCard{}).
		Scopes(aftercare.NotDeleted).
		Where("id = ?", cardID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) Save(ctx context.Context, e *entity.AcaDrugUse) error {
	return r.crud.Save(ctx, e)
}

func (r *repository) Erase(ctx context.Context, ids []uint, reason string) (int64, error) {
	return r.crud.Erase(ctx, ids, reason)
}

func (r *repository) Restore(ctx context.Context, ids []uint) (int64, error) {
	return r.crud.Restore(ctx, ids)
}
