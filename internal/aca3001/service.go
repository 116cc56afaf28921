package aca3001

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/aca1001"
	"github.com/axgrid/aftercare/internal/cache"
	"github.com/axgrid/aftercare/internal/entity"
)

type Service interface {
	CompareAca(ctx context.Context, in aftercare.GeneralPayload[CompareAcaPayload]) (aftercare.DataDto[[]CompareResult], error)
	OpenCase(ctx context.Context, in aftercare.GeneralPayload[OpenCasePayload]) (aftercare.DataDto[OpenCaseDto], error)
}

type service struct {
	repo  Repository
	cards aca1001.Repository
	inv   cache.Invalidator
	log   zerolog.Logger
	now   func() time.Time
}

// NewService: inv может быть nil.
func NewService(repo Repository, cards aca1001.Repository, inv cache.Invalidator, log zerolog.Logger) Service {
	return &service{
		repo:  repo,
		cards: cards,
		inv:   inv,
		log:   log.With().Str("component", "aca3001").Logger(),
		now:   time.Now,
	}
}

// CompareAca сверяет входные записи с действующими карточками одним запросом.
func (s *service) CompareAca(ctx context.Context, in aftercare.GeneralPayload[CompareAcaPayload]) (aftercare.DataDto[[]CompareResult], error) {
	items := in.Payload.Items
	var idNos, names []string
	for i := range items {
		items[i].IDNo = strings.ToUpper(strings.TrimSpace(items[i].IDNo))
		items[i].Name = strings.TrimSpace(items[i].Name)
		if items[i].IDNo != "" {
			idNos = append(idNos, items[i].IDNo)
		}
		if !items[i].Birthday.IsZero() {
			names = append(names, items[i].Name)
		}
	}
	cards, err := s.repo.FindCandidates(ctx, idNos, names)
	if err != nil {
		return aftercare.DataDto[[]CompareResult]{}, err
	}

	out := make([]CompareResult, len(items))
	for i, it := range items {
		res := CompareResult{Input: it, Matches: []CardMatch{}}
		for _, c := range cards {
			if kind := matchKind(it, c); kind != "" {
				res.Matches = append(res.Matches, CardMatch{MatchKind: kind, Card: aca1001.ToDto(c)})
			}
		}
		out[i] = res
	}
	return aftercare.Ok(out), nil
}

func matchKind(it CompareItem, c entity.AcaCard) string {
	byID := it.IDNo != "" && it.IDNo == c.IDNo
	byName := !it.Birthday.IsZero() && it.Name == c.Name &&
		it.Birthday.String() == aftercare.Date(c.Birthday).String()
	switch {
	case byID && byName:
		return MatchBoth
	case byID:
		return MatchIDNo
	case byName:
		return MatchNameBirthday
	}
	return ""
}

// OpenCase заводит дело по подписанному направлению: находит карточку по номеру
// удостоверения или создаёт новую, затем переводит направление в состояние 3.
func (s *service) OpenCase(ctx context.Context, in aftercare.GeneralPayload[OpenCasePayload]) (aftercare.DataDto[OpenCaseDto], error) {
	var out OpenCaseDto
	err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		repo, cards := s.repo.WithTx(tx), s.cards.WithTx(tx)

		ref, err := repo.FindReferral(ctx, in.Payload.ReferralID)
		if err != nil {
			return err
		}
		if ref.SignState != entity.SignSigned {
			return fmt.Errorf("%w: referral %d must be signed before a case is opened", aftercare.ErrInvalidState, ref.ID)
		}

		card, err := cards.FindByIDNo(ctx, ref.IDNo)
		if err != nil {
			return err
		}
		if card == nil {
			no, err := cards.NextCardNo(ctx, ref.BranchCode, s.now())
			if err != nil {
				return err
			}
			card = &entity.AcaCard{
				CardNo:     no,
				BranchCode: ref.BranchCode,
				Name:       ref.Name,
				IDNo:       ref.IDNo,
				Birthday:   ref.Birthday,
				WorkerUser: in.Payload.WorkerUser,
			}
			card.IsDeleted = new(bool)
			if err := cards.Save(ctx, card); err != nil {
				return err
			}
			out.Created = true
		}

		n, err := repo.MarkOpened(ctx, ref.ID, card.ID)
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("%w: referral %d changed concurrently", aftercare.ErrInvalidState, ref.ID)
		}
		out.ReferralID, out.CardID, out.CardNo = ref.ID, card.ID, card.CardNo
		return nil
	})
	if err != nil {
		return aftercare.DataDto[OpenCaseDto]{}, err
	}
	s.log.Info().Uint("referral_id", out.ReferralID).Str("card_no", out.CardNo).Bool("created", out.Created).Msg("case opened")
	if s.inv != nil {
		// открытое дело меняет счётчики сводного отчёта
		if err := s.inv.Invalidate(ctx, cache.Referrals); err != nil {
			s.log.Warn().Err(err).Msg("report cache invalidate")
		}
	}
	return aftercare.Ok(out), nil
}
