package aca1001

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/entity"
)

type Service interface {
	QueryList(ctx context.Context, in aftercare.GeneralPayload[QueryPayload]) (aftercare.DataDto[aftercare.PageResult[QueryDto]], error)
	Save(ctx context.Context, in aftercare.GeneralPayload[SavePayload]) (aftercare.DataDto[QueryDto], error)
	Erase(ctx context.Context, in aftercare.GeneralPayload[ErasePayload]) (aftercare.DataDto[aftercare.Affected], error)
	Restore(ctx context.Context, in aftercare.GeneralPayload[RestorePayload]) (aftercare.DataDto[aftercare.Affected], error)
}

type service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo Repository, log zerolog.Logger) Service {
	return &service{
		repo: repo,
		log:  log.With().Str("component", "aca1001").Logger(),
		now:  time.Now,
	}
}

func (s *service) QueryList(ctx context.Context, in aftercare.GeneralPayload[QueryPayload]) (aftercare.DataDto[aftercare.PageResult[QueryDto]], error) {
	res, err := aftercare.Paginate(in.Page,
		func() (int64, error) { return s.repo.CountSearch(ctx, in.Payload) },
		func(p aftercare.Pagination) ([]QueryDto, error) {
			cards, err := s.repo.QueryList(ctx, in.Payload, p)
			if err != nil {
				return nil, err
			}
			out := make([]QueryDto, len(cards))
			for i := range cards {
				out[i] = ToDto(cards[i])
			}
			return out, nil
		})
	if err != nil {
		return aftercare.DataDto[aftercare.PageResult[QueryDto]]{}, err
	}
	return aftercare.Ok(res), nil
}

// Save создаёт или правит карточку. Номер удостоверения уникален среди действующих карточек.
// Проверка, выдача номера и запись идут в одной транзакции; гонка за номер карточки
// заканчивается ErrInvalidState, а не ошибкой базы.
func (s *service) Save(ctx context.Context, in aftercare.GeneralPayload[SavePayload]) (aftercare.DataDto[QueryDto], error) {
	p := in.Payload
	idNo := strings.ToUpper(p.IDNo)

	var card entity.AcaCard
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if p.ID != nil {
			found, err := repo.FindByID(ctx, *p.ID)
			if err != nil {
				return err
			}
			card = found
		}

		dup, err := repo.FindByIDNo(ctx, idNo)
		if err != nil {
			return err
		}
		if dup != nil && dup.ID != card.ID {
			return fmt.Errorf("%w: id number %s already belongs to card %s", aftercare.ErrInvalidState, idNo, dup.CardNo)
		}

		if card.ID == 0 {
			no, err := repo.NextCardNo(ctx, p.BranchCode, s.now())
			if err != nil {
				return err
			}
			card.CardNo = no
			card.IsDeleted = new(bool)
		}
		card.BranchCode = p.BranchCode
		card.Name = strings.TrimSpace(p.Name)
		card.IDNo = idNo
		card.Birthday = p.Birthday.Time()
		card.Gender = p.Gender
		card.Address = p.Address
		card.Phone = p.Phone
		card.WorkerUser = p.WorkerUser

		if err := repo.Save(ctx, &card); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: card number %s was taken concurrently", aftercare.ErrInvalidState, card.CardNo)
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("card_no", card.CardNo).Msg("save card rejected")
		return aftercare.DataDto[QueryDto]{}, err
	}
	return aftercare.OkMsg(ToDto(card), "saved"), nil
}

func (s *service) Erase(ctx context.Context, in aftercare.GeneralPayload[ErasePayload]) (aftercare.DataDto[aftercare.Affected], error) {
	n, err := s.repo.Erase(ctx, in.Payload.IDs, in.Payload.Reason)
	if err != nil {
		return aftercare.DataDto[aftercare.Affected]{}, err
	}
	s.log.Info().Str("actor", aftercare.ActorFrom(ctx)).Uints("ids", in.Payload.IDs).Int64("affected", n).Msg("cards erased")
	return aftercare.Ok(aftercare.Affected{Count: n}), nil
}

// Restore возвращает карточки в работу. Если номер удостоверения уже занят действующей
// карточкой (или повторяется внутри запроса), ничего не восстанавливается.
func (s *service) Restore(ctx context.Context, in aftercare.GeneralPayload[RestorePayload]) (aftercare.DataDto[aftercare.Affected], error) {
	var n int64
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		erased, err := repo.FindErased(ctx, in.Payload.IDs)
		if err != nil {
			return err
		}
		claimed := make(map[string]string, len(erased))
		for _, c := range erased {
			if c.IDNo == "" {
				continue
			}
			if other, ok := claimed[c.IDNo]; ok {
				return fmt.Errorf("%w: cards %s and %s share id number %s", aftercare.ErrInvalidState, other, c.CardNo, c.IDNo)
			}
			claimed[c.IDNo] = c.CardNo
			live, err := repo.FindByIDNo(ctx, c.IDNo)
			if err != nil {
				return err
			}
			if live != nil {
				return fmt.Errorf("%w: id number %s already belongs to card %s", aftercare.ErrInvalidState, c.IDNo, live.CardNo)
			}
		}
		n, err = repo.Restore(ctx, in.Payload.IDs)
		return err
	})
	if err != nil {
		s.log.Warn().Err(err).Uints("ids", in.Payload.IDs).Msg("restore rejected")
		return aftercare.DataDto[aftercare.Affected]{}, err
	}
	s.log.Info().Str("actor", aftercare.ActorFrom(ctx)).Uints("ids", in.Payload.IDs).Int64("affected", n).Msg("cards restored")
	return aftercare.Ok(aftercare.Affected{Count: n}), nil
}
