package aca2003

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type Service interface {
	QueryList(ctx context.Context, in aftercare.GeneralPayload[QueryPayload]) (aftercare.DataDto[aftercare.PageResult[QueryDto]], error)
	Save(ctx context.Context, in aftercare.GeneralPayload[SavePayload]) (aftercare.DataDto[[]QueryDto], error)
	Erase(ctx context.Context, in aftercare.GeneralPayload[ErasePayload]) (aftercare.DataDto[aftercare.Affected], error)
	Restore(ctx context.Context, in aftercare.GeneralPayload[RestorePayload]) (aftercare.DataDto[aftercare.Affected], error)
}

type service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) Service {
	return &service{repo: repo, log: log.With().Str("component", "aca2003").Logger()}
}

func (s *service) QueryList(ctx context.Context, in aftercare.GeneralPayload[QueryPayload]) (aftercare.DataDto[aftercare.PageResult[QueryDto]], error) {
	res, err := aftercare.Paginate(in.Page,
		func() (int64, error) { return s.repo.CountSearch(ctx, in.Payload) },
		func(p aftercare.Pagination) ([]QueryDto, error) {
			rows, err := s.repo.QueryList(ctx, in.Payload, p)
			if err != nil {
				return nil, err
			}
			out := make([]QueryDto, len(rows))
			for i := range rows {
				out[i] = toDto(rows[i])
			}
			return out, nil
		})
	if err != nil {
		return aftercare.DataDto[aftercare.PageResult[QueryDto]]{}, err
	}
	return aftercare.Ok(res), nil
}

// Save сохраняет пачку записей одной транзакцией: ошибка в любой строке откатывает всё.
func (s *service) Save(ctx context.Context, in aftercare.GeneralPayload[SavePayload]) (aftercare.DataDto[[]QueryDto], error) {
	cardID := in.Payload.CardID
	saved := make([]QueryDto, 0, len(in.Payload.Items))

	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.CardExists(ctx, cardID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: card %d", aftercare.ErrNotFound, cardID)
		}
		for i, it := range in.Payload.Items {
			var row entity.AcaDrugUse
			if it.ID != nil {
				if row, err = repo.FindForCard(ctx, *it.ID, cardID); err != nil {
					return fmt.Errorf("items[%d]: drug use %d: %w", i, *it.ID, err)
				}
			} else {
				row.CardID = cardID
				row.IsDeleted = new(bool)
			}
			row.DrugKind = strings.TrimSpace(it.DrugKind)
			row.DrugLevel = it.DrugLevel
			row.UseDate = it.UseDate.Time()
			row.Source = it.Source
			row.Remark = it.Remark
			if err := repo.Save(ctx, &row); err != nil {
				return err
			}
			saved = append(saved, toDto(row))
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Uint("card_id", cardID).Msg("save drug use rejected")
		return aftercare.DataDto[[]QueryDto]{}, err
	}
	return aftercare.OkMsg(saved, "saved"), nil
}

func (s *service) Erase(ctx context.Context, in aftercare.GeneralPayload[ErasePayload]) (aftercare.DataDto[aftercare.Affected], error) {
	n, err := s.repo.Erase(ctx, in.Payload.IDs, in.Payload.Reason)
	if err != nil {
		return aftercare.DataDto[aftercare.Affected]{}, err
	}
	s.log.Info().Str("actor", aftercare.ActorFrom(ctx)).Uints("ids", in.Payload.IDs).Int64("affected", n).Msg("drug use erased")
	return aftercare.Ok(aftercare.Affected{Count: n}), nil
}

func (s *service) Restore(ctx context.Context, in aftercare.GeneralPayload[RestorePayload]) (aftercare.DataDto[aftercare.Affected], error) {
	n, err := s.repo.Restore(ctx, in.Payload.IDs)
	if err != nil {
		return aftercare.DataDto[aftercare.Affected]{}, err
	}
	return aftercare.Ok(aftercare.Affected{Count: n}), nil
}
