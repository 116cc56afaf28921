package aca1001

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type Repository interface {
	QueryList(ctx context.Context, q QueryPayload, p aftercare.Pagination) ([]entity.AcaCard, error)
	CountSearch(ctx context.Context, q QueryPayload) (int64, error)
	FindByID(ctx context.Context, id uint) (entity.AcaCard, error)
	// FindByIDNo ищет действующую карточку по номеру удостоверения, nil если нет
	FindByIDNo(ctx context.Context, idNo string) (*entity.AcaCard, error)
	Save(ctx context.Context, card *entity.AcaCard) error
	Erase(ctx context.Context, ids []uint, reason string) (int64, error)
	Restore(ctx context.Context, ids []uint) (int64, error)
	// FindErased — удалённые карточки из ids
	FindErased(ctx context.Context, ids []uint) ([]entity.AcaCard, error)
	NextCardNo(ctx context.Context, branchCode string, at time.Time) (string, error)
	WithTx(tx *gorm.DB) Repository
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

var cardConfig = aftercare.RepoConfig{
	AllowedFilterOps: map[string]aftercare.FieldSet{
		"branch_code": aftercare.NewFieldSet("eq"),
		"card_no":     aftercare.NewFieldSet("eq"),
		"id_no":       aftercare.NewFieldSet("eq"),
		"worker_user": aftercare.NewFieldSet("eq"),
		"name":        aftercare.NewFieldSet("contains"),
		"birthday":    aftercare.NewFieldSet("gte", "lte"),
	},
	AllowedSortFields: aftercare.NewFieldSet("card_no", "name", "birthday"),
	DefaultOrder:      "card_no",
	SoftDelete:        true,
}

type repository struct {
	db   *gorm.DB
	crud *aftercare.GormRepo[entity.AcaCard, uint]
}

var _ Repository = (*repository)(nil)

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db, crud: aftercare.NewGormRepo[entity.AcaCard, uint](db, cardConfig)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return NewRepository(tx)
}

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.crud.Transaction(ctx, fn)
}

func listParams(q QueryPayload) aftercare.ListParams {
	lp := aftercare.ListParams{WithDeleted: q.IncludeDeleted}
	lp.Filters = append(lp.Filters, aftercare.Eq("branch_code", q.BranchCode)...)
	lp.Filters = append(lp.Filters, aftercare.Eq("card_no", q.CardNo)...)
	lp.Filters = append(lp.Filters, aftercare.Eq("id_no", strings.ToUpper(q.IDNo))...)
	lp.Filters = append(lp.Filters, aftercare.Eq("worker_user", q.WorkerUser)...)
	if q.Name != "" {
		lp.Filters = append(lp.Filters, aftercare.Filter{Field: "name", Operator: "contains", Value: q.Name})
	}
	if !q.BirthFrom.IsZero() {
		lp.Filters = append(lp.Filters, aftercare.Filter{Field: "birthday", Operator: "gte", Value: q.BirthFrom.Time()})
	}
	if !q.BirthTo.IsZero() {
		lp.Filters = append(lp.Filters, aftercare.Filter{Field: "birthday", Operator: "lte", Value: q.BirthTo.EndOfDay()})
	}
	return lp
}

func (r *repository) QueryList(ctx context.Context, q QueryPayload, p aftercare.Pagination) ([]entity.AcaCard, error) {
	lp := listParams(q)
	lp.Pagination = p
	return r.crud.QueryList(ctx, lp)
}

func (r *repository) CountSearch(ctx context.Context, q QueryPayload) (int64, error) {
	return r.crud.CountSearch(ctx, listParams(q))
}

func (r *repository) FindByID(ctx context.Context, id uint) (entity.AcaCard, error) {
	return r.crud.GetOne(ctx, id)
}

func (r *repository) FindByIDNo(ctx context.Context, idNo string) (*entity.AcaCard, error) {
	cards, err := r.crud.QueryList(ctx, aftercare.ListParams{
		Filters:    aftercare.Eq("id_no", idNo),
		Pagination: aftercare.Pagination{Page: 1, PerPage: 1},
	})
	if err != nil || len(cards) == 0 {
		return nil, err
	}
	return &cards[0], nil
}

func (r *repository) Save(ctx context.Context, card *entity.AcaCard) error {
	return r.crud.Save(ctx, card)
}

func (r *repository) Erase(ctx context.Context, ids []uint, reason string) (int64, error) {
	return r.crud.Erase(ctx, ids, reason)
}

func (r *repository) Restore(ctx context.Context, ids []uint) (int64, error) {
	return r.crud.Restore(ctx, ids)
}

func (r *repository) FindErased(ctx context.Context, ids []uint) ([]entity.AcaCard, error) {
	return r.crud.QueryList(ctx, aftercare.ListParams{
		OnlyDeleted: true,
		Scopes: []func(*gorm.DB) *gorm.DB{
			func(db *gorm.DB) *gorm.DB { return db.Where("id IN ?", ids) },
		},
	})
}

// NextCardNo: код филиала + год + пятизначный порядковый номер.
// Удалённые карточки учитываются, номера не переиспользуются.
func (r *repository) NextCardNo(ctx context.Context, branchCode string, at time.Time) (string, error) {
	prefix := fmt.Sprintf("%s%04d", branchCode, at.Year())
	var last string
	err := r.db.WithContext(ctx).Model(&entity.AcaCard{}).
		Where("card_no LIKE ?", prefix+"%").
		Select("COALESCE(MAX(card_no), '')").
		Scan(&last).Error
	if err != nil {
		return "", err
	}
	seq := 0
	if last != "" {
		if seq, err = strconv.Atoi(strings.TrimPrefix(last, prefix)); err != nil {
			return "", fmt.Errorf("malformed card number %q: %w", last, err)
		}
	}
	return fmt.Sprintf("%s%05d", prefix, seq+1), nil
}
