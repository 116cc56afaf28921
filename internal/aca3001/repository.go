package aca3001

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type Repository interface {
	// FindCandidates возвращает действующие карточки, совпадающие хотя бы по одному признаку
	FindCandidates(ctx context.Context, idNos, names []string) ([]entity.AcaCard, error)
	FindReferral(ctx context.Context, id uint) (entity.AcaReferral, error)
	MarkOpened(ctx context.Context, referralID, cardID uint) (int64, error)
	WithTx(tx *gorm.DB) Repository
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type repository struct {
	db *gorm.DB
}

var _ Repository = (*repository)(nil)

func NewRepository(db *gorm.DB) Repository { return &repository{db: db} }

func (r *repository) WithTx(tx *gorm.DB) Repository { return &repository{db: tx} }

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) FindCandidates(ctx context.Context, idNos, names []string) ([]entity.AcaCard, error) {
	if len(idNos) == 0 && len(names) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).Scopes(aftercare.NotDeleted)
	switch {
	case len(idNos) > 0 && len(names) > 0:
		q = q.Where("id_no IN ? OR name IN ?", idNos, names)
	case len(idNos) > 0:
		q = q.Where("id_no IN ?", idNos)
	default:
		q = q.Where("name IN ?", names)
	}
	var out []entity.AcaCard
	if err := q.Order("card_no").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) FindReferral(ctx context.Context, id uint) (entity.AcaReferral, error) {
	var ref entity.AcaReferral
	err := r.db.WithContext(ctx).First(&ref, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ref, fmt.Errorf("%w: referral %d", aftercare.ErrNotFound, id)
	}
	return ref, err
}

func (r *repository) MarkOpened(ctx context.Context, referralID, cardID uint) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&entity.AcaReferral{}).
		Where("id = ? AND sign_state = ?", referralID, entity.SignSigned).
		Updates(map[string]any{"sign_state": entity.SignOpened, "card_id": cardID})
	return tx.RowsAffected, tx.Error
}
