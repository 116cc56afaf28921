package aca1002

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/cache"
	"github.com/axgrid/aftercare/internal/entity"
)

type Service interface {
	QueryList(ctx context.Context, in aftercare.GeneralPayload[QueryPayload]) (aftercare.DataDto[aftercare.PageResult[QueryDto]], error)
	SignList(ctx context.Context, in aftercare.GeneralPayload[SignPayload]) (aftercare.DataDto[aftercare.Affected], error)
	GoBack(ctx context.Context, in aftercare.GeneralPayload[GoBackPayload]) (aftercare.DataDto[aftercare.Affected], error)
	TransPort(ctx context.Context, in aftercare.GeneralPayload[TransPortPayload]) (aftercare.DataDto[aftercare.Affected], error)
}

type service struct {
	repo Repository
	inv  cache.Invalidator
	log  zerolog.Logger
	now  func() time.Time
}

// NewService: inv может быть nil, тогда кэш отчётов не сбрасывается.
func NewService(repo Repository, inv cache.Invalidator, log zerolog.Logger) Service {
	return &service{
		repo: repo,
		inv:  inv,
		log:  log.With().Str("component", "aca1002").Logger(),
		now:  time.Now,
	}
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

func (s *service) SignList(ctx context.Context, in aftercare.GeneralPayload[SignPayload]) (aftercare.DataDto[aftercare.Affected], error) {
	now := s.now()
	return s.transition(ctx, "sign", in.Payload.IDs, entity.SignPending, map[string]any{
		"sign_state": entity.SignSigned,
		"sign_user":  aftercare.ActorFrom(ctx),
		"sign_date":  &now,
	})
}

func (s *service) GoBack(ctx context.Context, in aftercare.GeneralPayload[GoBackPayload]) (aftercare.DataDto[aftercare.Affected], error) {
	now := s.now()
	return s.transition(ctx, "go back", in.Payload.IDs, entity.SignPending, map[string]any{
		"sign_state":  entity.SignReturned,
		"sign_user":   aftercare.ActorFrom(ctx),
		"sign_date":   &now,
		"back_reason": in.Payload.Reason,
	})
}

// transition переводит все строки разом или ни одной.
func (s *service) transition(ctx context.Context, op string, ids []uint, from int, patch map[string]any) (aftercare.DataDto[aftercare.Affected], error) {
	ids = uniq(ids)
	var n int64
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if n, err = repo.Transition(ctx, ids, from, patch); err != nil {
			return err
		}
		if int(n) != len(ids) {
			return s.explain(ctx, repo, ids, from)
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("op", op).Uints("ids", ids).Msg("referral transition rejected")
		return aftercare.DataDto[aftercare.Affected]{}, err
	}
	s.log.Info().Str("op", op).Str("actor", aftercare.ActorFrom(ctx)).Uints("ids", ids).Msg("referrals updated")
	s.invalidate(ctx)
	return aftercare.Ok(aftercare.Affected{Count: n}), nil
}

// TransPort передаёт ожидающие направления в другой филиал; они остаются в ожидании.
func (s *service) TransPort(ctx context.Context, in aftercare.GeneralPayload[TransPortPayload]) (aftercare.DataDto[aftercare.Affected], error) {
	ids := uniq(in.Payload.IDs)
	to := in.Payload.ToBranch

	ok, err := s.repo.BranchExists(ctx, to)
	if err != nil {
		return aftercare.DataDto[aftercare.Affected]{}, err
	}
	if !ok {
		return aftercare.DataDto[aftercare.Affected]{}, aftercare.NewValidationError(aftercare.FieldError{Field: "toBranch", Message: "unknown branch " + to})
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items, err := repo.FindMany(ctx, ids)
		if err != nil {
			return err
		}
		if len(items) != len(ids) {
			return s.explain(ctx, repo, ids, entity.SignPending)
		}
		for _, it := range items {
			if it.BranchCode == to {
				return fmt.Errorf("%w: referral %d is already in branch %s", aftercare.ErrInvalidState, it.ID, to)
			}
			// у каждой строки свой исходный филиал, поэтому обновление построчное
			n, err := repo.Transition(ctx, []uint{it.ID}, entity.SignPending, map[string]any{
				"branch_code": to,
				"from_branch": it.BranchCode,
			})
			if err != nil {
				return err
			}
			if n != 1 {
				return fmt.Errorf("%w: referral %d is %s", aftercare.ErrInvalidState, it.ID, StateName(it.SignState))
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Uints("ids", ids).Str("to", to).Msg("transport rejected")
		return aftercare.DataDto[aftercare.Affected]{}, err
	}
	s.log.Info().Str("actor", aftercare.ActorFrom(ctx)).Uints("ids", ids).Str("to", to).Msg("referrals transported")
	s.invalidate(ctx)
	return aftercare.Ok(aftercare.Affected{Count: int64(len(ids))}), nil
}

// invalidate вызывается после коммита; ошибка кэша не откатывает операцию.
func (s *service) invalidate(ctx context.Context) {
	if s.inv == nil {
		return
	}
	if err := s.inv.Invalidate(ctx, cache.Referrals); err != nil {
		s.log.Warn().Err(err).Msg("report cache invalidate")
	}
}

// explain находит первую строку, из-за которой операция не прошла.
func (s *service) explain(ctx context.Context, repo Repository, ids []uint, want int) error {
	items, err := repo.FindMany(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[uint]entity.AcaReferral, len(items))
	for _, it := range items {
		found[it.ID] = it
	}
	for _, id := range ids {
		it, ok := found[id]
		if !ok {
			return fmt.Errorf("%w: referral %d", aftercare.ErrNotFound, id)
		}
		if it.SignState != want {
			return fmt.Errorf("%w: referral %d is %s, expected %s", aftercare.ErrInvalidState, id, StateName(it.SignState), StateName(want))
		}
	}
	return fmt.Errorf("%w: referrals changed concurrently", aftercare.ErrInvalidState)
}

func uniq(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
