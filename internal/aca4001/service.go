package aca4001

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type Service interface {
	QueryList(ctx context.Context, in aftercare.GeneralPayload[QueryPayload]) (aftercare.DataDto[aftercare.PageResult[QueryDto]], error)
	Reassign(ctx context.Context, in aftercare.GeneralPayload[ReassignPayload]) (aftercare.DataDto[aftercare.Affected], error)
}

type service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) Service {
	return &service{repo: repo, log: log.With().Str("component", "aca4001").Logger()}
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
				out[i] = rows[i].dto()
			}
			return out, nil
		})
	if err != nil {
		return aftercare.DataDto[aftercare.PageResult[QueryDto]]{}, err
	}
	return aftercare.Ok(res), nil
}

// Reassign меняет ответственного и пишет журнал по каждой карточке. Карточки,
// уже закреплённые за этим сотрудником, пропускаются.
func (s *service) Reassign(ctx context.Context, in aftercare.GeneralPayload[ReassignPayload]) (aftercare.DataDto[aftercare.Affected], error) {
	p := in.Payload
	ids := slices.Compact(slices.Sorted(slices.Values(p.CardIDs)))
	var changed int64

	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cards, err := repo.GetCards(ctx, ids)
		if err != nil {
			return err
		}
		if len(cards) != len(ids) {
			return fmt.Errorf("%w: %d of %d cards", aftercare.ErrNotFound, len(ids)-len(cards), len(ids))
		}
		for _, c := range cards {
			if c.WorkerUser == p.ToWorker {
				continue
			}
			if err := repo.SetWorker(ctx, c.ID, p.ToWorker); err != nil {
				return err
			}
			if err := repo.InsertLog(ctx, &entity.AcaReassignLog{
				CardID:     c.ID,
				FromWorker: c.WorkerUser,
				ToWorker:   p.ToWorker,
				Reason:     p.Reason,
			}); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Uints("card_ids", ids).Msg("reassign rejected")
		return aftercare.DataDto[aftercare.Affected]{}, err
	}
	s.log.Info().Str("actor", aftercare.ActorFrom(ctx)).Str("to", p.ToWorker).Int64("changed", changed).Msg("cards reassigned")
	return aftercare.Ok(aftercare.Affected{Count: changed}), nil
}
