package report02

import (
	"context"
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/cache"
)

type Service interface {
	Report(ctx context.Context, in aftercare.GeneralPayload[Report02Payload]) (aftercare.DataDto[Report02Dto], error)
}

type service struct {
	repo  Repository
	cache cache.Cache
	hits  *prometheus.CounterVec
	log   zerolog.Logger
}

// NewService: hits может быть nil.
func NewService(repo Repository, c cache.Cache, hits *prometheus.CounterVec, log zerolog.Logger) Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &service{repo: repo, cache: c, hits: hits, log: log.With().Str("component", "report02").Logger()}
}

// cacheKey включает поколение направлений: после подписи, возврата, передачи
// или открытия дела отчёт читается по новому ключу.
func cacheKey(gen int64, p Report02Payload) string {
	return "aftercare:report02:g" + strconv.FormatInt(gen, 10) + ":" + p.From.String() + ":" + p.To.String()
}

func (s *service) Report(ctx context.Context, in aftercare.GeneralPayload[Report02Payload]) (aftercare.DataDto[Report02Dto], error) {
	key := ""
	gen, err := s.cache.Generation(ctx, cache.Referrals)
	if err != nil {
		// без поколения кэшу верить нельзя, считаем из базы и не пишем
		s.log.Warn().Err(err).Msg("report cache generation")
	} else {
		key = cacheKey(gen, in.Payload)
		var cached Report02Dto
		switch err := s.cache.Get(ctx, key, &cached); {
		case err == nil:
			s.observe("hit")
			return aftercare.Ok(cached), nil
		case !errors.Is(err, cache.ErrMiss):
			// кэш недоступен — считаем из базы
			s.log.Warn().Err(err).Str("key", key).Msg("report cache read")
		}
	}
	s.observe("miss")

	branches, err := s.repo.QueryBranches(ctx)
	if err != nil {
		return aftercare.DataDto[Report02Dto]{}, err
	}
	rows, err := s.repo.QueryFlatRows(ctx, in.Payload.From.Time(), in.Payload.To.EndOfDay())
	if err != nil {
		return aftercare.DataDto[Report02Dto]{}, err
	}
	out := Aggregate(branches, rows, Range{From: in.Payload.From, To: in.Payload.To})

	if key == "" {
		return aftercare.Ok(out), nil
	}
	if err := s.cache.Set(ctx, key, out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("report cache write")
	}
	return aftercare.Ok(out), nil
}

func (s *service) observe(result string) {
	if s.hits != nil {
		s.hits.WithLabelValues("report02", result).Inc()
	}
}
