package report01

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/axgrid/aftercare"
)

const reportName = "report01"

type Service interface {
	Print(ctx context.Context, in aftercare.GeneralPayload[Report01Payload]) (aftercare.DataDto[File], error)
}

type service struct {
	repo     Repository
	printLog PrintLogger
	render   Renderer
	printed  prometheus.Counter
	log      zerolog.Logger
	newID    func() uuid.UUID
}

// NewService: renderer по умолчанию CSV, printed может быть nil.
func NewService(repo Repository, printLog PrintLogger, render Renderer, printed prometheus.Counter, log zerolog.Logger) Service {
	if render == nil {
		render = CSVRenderer{}
	}
	return &service{
		repo:     repo,
		printLog: printLog,
		render:   render,
		printed:  printed,
		log:      log.With().Str("component", reportName).Logger(),
		newID:    uuid.New,
	}
}

// Print строит выгрузку и после отрисовки пишет журнал печати теми же строками.
// Ошибка журнала отменяет выдачу файла.
func (s *service) Print(ctx context.Context, in aftercare.GeneralPayload[Report01Payload]) (aftercare.DataDto[File], error) {
	p := in.Payload
	rows, err := s.repo.QueryRows(ctx, p.BranchCode, p.From.Time(), p.To.EndOfDay())
	if err != nil {
		return aftercare.DataDto[File]{}, err
	}

	var buf bytes.Buffer
	if err := s.render.Render(&buf, rows); err != nil {
		return aftercare.DataDto[File]{}, fmt.Errorf("render %s: %w", reportName, err)
	}

	batch := s.newID()
	if err := s.printLog.Insert(ctx, batch, reportName, rows); err != nil {
		return aftercare.DataDto[File]{}, fmt.Errorf("print log: %w", err)
	}
	if s.printed != nil {
		s.printed.Add(float64(len(rows)))
	}
	s.log.Info().
		Str("actor", aftercare.ActorFrom(ctx)).
		Str("branch", p.BranchCode).
		Str("batch", batch.String()).
		Int("rows", len(rows)).
		Msg("report printed")

	return aftercare.Ok(File{
		Name:        fmt.Sprintf("%s_%s_%s_%s.%s", reportName, p.BranchCode, p.From, p.To, s.render.Ext()),
		ContentType: s.render.ContentType(),
		Body:        buf.Bytes(),
		BatchID:     batch,
		Rows:        len(rows),
	}), nil
}
