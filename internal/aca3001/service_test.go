package aca3001

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/aca1001"
	"github.com/axgrid/aftercare/internal/cache"
	"github.com/axgrid/aftercare/internal/dbtest"
	"github.com/axgrid/aftercare/internal/entity"
)

func birthday(y int, m time.Month, d int) time.Time {
	return aftercare.NewDate(y, m, d).Time()
}

func setup(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	erased := true
	dbtest.Insert(t, db,
		&entity.AcaCard{CardNo: "B01202300001", BranchCode: "B01", Name: "Lin Mei", IDNo: "A100000001", Birthday: birthday(1990, 5, 17)},
		&entity.AcaCard{CardNo: "B01202300002", BranchCode: "B01", Name: "Wu Jun", IDNo: "A100000002", Birthday: birthday(1985, 1, 2)},
		&entity.AcaCard{CardNo: "B01202300003", BranchCode: "B01", Name: "Old Card", IDNo: "A100000003", Birthday: birthday(1970, 1, 1),
			SoftDelete: aftercare.SoftDelete{IsDeleted: &erased}},
	)
	svc := NewService(NewRepository(db), aca1001.NewRepository(db), nil, zerolog.Nop()).(*service)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local) }
	return svc, db
}

func TestService_CompareAca(t *testing.T) {
	svc, _ := setup(t)
	out, err := svc.CompareAca(context.Background(), aftercare.NewGeneralPayload(CompareAcaPayload{Items: []CompareItem{
		{Name: "Lin Mei", IDNo: "a100000001", Birthday: aftercare.NewDate(1990, 5, 17)},
		{Name: "Wu Jun", Birthday: aftercare.NewDate(1985, 1, 2)},
		{Name: "Somebody", IDNo: "A100000002"},
		{Name: "Old Card", IDNo: "A100000003"},
		{Name: "Wu Jun", Birthday: aftercare.NewDate(1985, 1, 3)},
	}}))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 5, len(out.Data))
	assert.Equal(t, MatchBoth, out.Data[0].Matches[0].MatchKind)
	assert.Equal(t, "A100000001", out.Data[0].Input.IDNo)
	assert.Equal(t, MatchNameBirthday, out.Data[1].Matches[0].MatchKind)
	assert.Equal(t, "B01202300002", out.Data[1].Matches[0].Card.CardNo)
	assert.Equal(t, MatchIDNo, out.Data[2].Matches[0].MatchKind)
	// удалённые карточки не сравниваются
	assert.Equal(t, 0, len(out.Data[3].Matches))
	assert.Equal(t, 0, len(out.Data[4].Matches))
}

func insertReferral(t *testing.T, db *gorm.DB, idNo string, state int) uint {
	t.Helper()
	ref := &entity.AcaReferral{BranchCode: "B02", OrgCode: "O1", Name: "New Person", IDNo: idNo,
		Birthday: birthday(2000, 1, 1), ReferralDate: time.Now(), SignState: state}
	dbtest.Insert(t, db, ref)
	return ref.ID
}

func TestService_OpenCaseCreatesCard(t *testing.T) {
	svc, db := setup(t)
	refID := insertReferral(t, db, "C200000001", entity.SignSigned)
	ctx := aftercare.WithActor(context.Background(), "lead")

	out, err := svc.OpenCase(ctx, aftercare.NewGeneralPayload(OpenCasePayload{ReferralID: refID, WorkerUser: "worker7"}))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, true, out.Data.Created)
	assert.Equal(t, "B02202400001", out.Data.CardNo)

	var ref entity.AcaReferral
	db.First(&ref, refID)
	assert.Equal(t, entity.SignOpened, ref.SignState)
	assert.Equal(t, out.Data.CardID, *ref.CardID)
	assert.Equal(t, "lead", ref.ModifyUser)

	var card entity.AcaCard
	db.First(&card, out.Data.CardID)
	assert.Equal(t, "worker7", card.WorkerUser)
	assert.Equal(t, "lead", card.CreateUser)

	// повторно открыть нельзя
	_, err = svc.OpenCase(ctx, aftercare.NewGeneralPayload(OpenCasePayload{ReferralID: refID}))
	assert.Equal(t, true, errors.Is(err, aftercare.ErrInvalidState))
}

func TestService_OpenCaseLinksExistingCard(t *testing.T) {
	svc, db := setup(t)
	refID := insertReferral(t, db, "A100000002", entity.SignSigned)

	out, err := svc.OpenCase(context.Background(), aftercare.NewGeneralPayload(OpenCasePayload{ReferralID: refID}))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, false, out.Data.Created)
	assert.Equal(t, "B01202300002", out.Data.CardNo)
}

func TestService_OpenCaseRequiresSigned(t *testing.T) {
	svc, db := setup(t)
	refID := insertReferral(t, db, "C200000009", entity.SignPending)

	_, err := svc.OpenCase(context.Background(), aftercare.NewGeneralPayload(OpenCasePayload{ReferralID: refID}))
	assert.Equal(t, true, errors.Is(err, aftercare.ErrInvalidState))

	_, err = svc.OpenCase(context.Background(), aftercare.NewGeneralPayload(OpenCasePayload{ReferralID: 9999}))
	assert.Equal(t, true, errors.Is(err, aftercare.ErrNotFound))

	var n int64
	db.Model(&entity.AcaCard{}).Where("id_no = ?", "C200000009").Count(&n)
	assert.Equal(t, int64(0), n)
}

type countingInvalidator map[string]int

func (c countingInvalidator) Invalidate(_ context.Context, scope string) error {
	c[scope]++
	return nil
}

func TestService_OpenCaseInvalidatesReportCache(t *testing.T) {
	svc, db := setup(t)
	inv := countingInvalidator{}
	svc.inv = inv
	pending := insertReferral(t, db, "C200000010", entity.SignPending)
	signed := insertReferral(t, db, "C200000011", entity.SignSigned)

	_, err := svc.OpenCase(context.Background(), aftercare.NewGeneralPayload(OpenCasePayload{ReferralID: pending}))
	assert.Equal(t, true, errors.Is(err, aftercare.ErrInvalidState))
	assert.Equal(t, 0, inv[cache.Referrals])

	if _, err := svc.OpenCase(context.Background(), aftercare.NewGeneralPayload(OpenCasePayload{ReferralID: signed})); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, inv[cache.Referrals])
}
