package aca1002

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare"
	"github.com/axgrid/aftercare/internal/cache"
	"github.com/axgrid/aftercare/internal/dbtest"
	"github.com/axgrid/aftercare/internal/entity"
)

func setup(t *testing.T) (*service, *gorm.DB, []uint) {
	t.Helper()
	db := dbtest.New(t)
	dbtest.Insert(t, db,
		&entity.Branch{Code: "B01", Name: "North", SortOrder: 1},
		&entity.Branch{Code: "B02", Name: "South", SortOrder: 2},
		&entity.Org{Code: "O1", Name: "City Hospital", BranchCode: "B01"},
	)
	day := func(d int) time.Time { return time.Date(2024, 4, d, 10, 0, 0, 0, time.Local) }
	refs := []*entity.AcaReferral{
		{BranchCode: "B01", OrgCode: "O1", Name: "Lin", IDNo: "A100000001", ReferralDate: day(1)},
		{BranchCode: "B01", OrgCode: "O1", Name: "Wu", IDNo: "A100000002", ReferralDate: day(2)},
		{BranchCode: "B01", OrgCode: "O9", Name: "Hsu", IDNo: "A100000003", ReferralDate: day(3)},
		{BranchCode: "B01", OrgCode: "O1", Name: "Chen", IDNo: "A100000004", ReferralDate: day(4), SignState: entity.SignSigned},
	}
	ids := make([]uint, 0, len(refs))
	for _, r := range refs {
		dbtest.Insert(t, db, r)
		ids = append(ids, r.ID)
	}
	svc := NewService(NewRepository(db), nil, zerolog.Nop()).(*service)
	svc.now = func() time.Time { return day(20) }
	return svc, db, ids
}

func asUser(actor string) context.Context {
	return aftercare.WithActor(context.Background(), actor)
}

func load(t *testing.T, db *gorm.DB, id uint) entity.AcaReferral {
	t.Helper()
	var r entity.AcaReferral
	if err := db.First(&r, id).Error; err != nil {
		t.Fatal(err)
	}
	return r
}

func TestService_QueryList(t *testing.T) {
	svc, _, _ := setup(t)
	pending := entity.SignPending
	out, err := svc.QueryList(context.Background(), aftercare.GeneralPayload[QueryPayload]{
		Payload: QueryPayload{BranchCode: "B01", SignState: &pending},
		Page:    aftercare.NewPagePayload(1, 2),
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(3), out.Data.Total)
	assert.Equal(t, 2, len(out.Data.List))
	assert.Equal(t, "Lin", out.Data.List[0].Name)
	assert.Equal(t, "City Hospital", out.Data.List[0].OrgName)
	assert.Equal(t, "pending", out.Data.List[0].SignStateName)

	out, err = svc.QueryList(context.Background(), aftercare.GeneralPayload[QueryPayload]{
		Payload: QueryPayload{BranchCode: "B01", SignState: &pending},
		Page:    aftercare.NewPagePayload(2, 2),
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, len(out.Data.List))
	assert.Equal(t, "", out.Data.List[0].OrgName)

	out, err = svc.QueryList(context.Background(), aftercare.GeneralPayload[QueryPayload]{
		Payload: QueryPayload{BranchCode: "B01", From: aftercare.NewDate(2024, 4, 2), To: aftercare.NewDate(2024, 4, 3)},
		Page:    aftercare.NewPagePayload(1, 10),
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(2), out.Data.Total)

	_, err = svc.QueryList(context.Background(), aftercare.GeneralPayload[QueryPayload]{
		Payload: QueryPayload{BranchCode: "B01"},
		Page:    aftercare.NewPagePayload(2, 10),
	})
	assert.Equal(t, true, errors.Is(err, aftercare.ErrPageNotFound))
}

func TestService_SignList(t *testing.T) {
	svc, db, ids := setup(t)

	out, err := svc.SignList(asUser("lead"), aftercare.NewGeneralPayload(SignPayload{IDs: []uint{ids[0], ids[1], ids[0]}}))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(2), out.Data.Count)
	r := load(t, db, ids[0])
	assert.Equal(t, entity.SignSigned, r.SignState)
	assert.Equal(t, "lead", r.SignUser)
	assert.Equal(t, "lead", r.ModifyUser)
	assert.NotEqual(t, nil, r.SignDate)
}

func TestService_SignListIsAtomic(t *testing.T) {
	svc, db, ids := setup(t)

	// ids[3] уже подписан: ни одна строка не меняется
	_, err := svc.SignList(asUser("lead"), aftercare.NewGeneralPayload(SignPayload{IDs: []uint{ids[0], ids[3]}}))
	assert.Equal(t, true, errors.Is(err, aftercare.ErrInvalidState))
	assert.Equal(t, entity.SignPending, load(t, db, ids[0]).SignState)

	_, err = svc.SignList(asUser("lead"), aftercare.NewGeneralPayload(SignPayload{IDs: []uint{ids[0], 999}}))
	assert.Equal(t, true, errors.Is(err, aftercare.ErrNotFound))
	assert.Equal(t, entity.SignPending, load(t, db, ids[0]).SignState)
}

func TestService_GoBack(t *testing.T) {
	svc, db, ids := setup(t)

	_, err := svc.GoBack(asUser("lead"), aftercare.NewGeneralPayload(GoBackPayload{IDs: []uint{ids[1]}, Reason: "wrong branch"}))
	if err != nil {
		t.Fatal(err)
	}
	r := load(t, db, ids[1])
	assert.Equal(t, entity.SignReturned, r.SignState)
	assert.Equal(t, "wrong branch", r.BackReason)

	// вернуть можно только ожидающее
	_, err = svc.GoBack(asUser("lead"), aftercare.NewGeneralPayload(GoBackPayload{IDs: []uint{ids[1]}, Reason: "again"}))
	assert.Equal(t, true, errors.Is(err, aftercare.ErrInvalidState))
}

func TestService_TransPort(t *testing.T) {
	svc, db, ids := setup(t)

	out, err := svc.TransPort(asUser("lead"), aftercare.NewGeneralPayload(TransPortPayload{IDs: []uint{ids[0], ids[2]}, ToBranch: "B02"}))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(2), out.Data.Count)
	r := load(t, db, ids[2])
	assert.Equal(t, "B02", r.BranchCode)
	assert.Equal(t, "B01", r.FromBranch)
	assert.Equal(t, entity.SignPending, r.SignState)

	// подписанное не передаётся, и откатывается вся пачка
	_, err = svc.TransPort(asUser("lead"), aftercare.NewGeneralPayload(TransPortPayload{IDs: []uint{ids[1], ids[3]}, ToBranch: "B02"}))
	assert.Equal(t, true, errors.Is(err, aftercare.ErrInvalidState))
	assert.Equal(t, "B01", load(t, db, ids[1]).BranchCode)

	_, err = svc.TransPort(asUser("lead"), aftercare.NewGeneralPayload(TransPortPayload{IDs: []uint{ids[1]}, ToBranch: "B99"}))
	var verr *aftercare.ValidationError
	assert.Equal(t, true, errors.As(err, &verr))

	_, err = svc.TransPort(asUser("lead"), aftercare.NewGeneralPayload(TransPortPayload{IDs: []uint{ids[0]}, ToBranch: "B02"}))
	assert.Equal(t, true, errors.Is(err, aftercare.ErrInvalidState))
}

type countingInvalidator map[string]int

func (c countingInvalidator) Invalidate(_ context.Context, scope string) error {
	c[scope]++
	return nil
}

func TestService_InvalidatesReportCache(t *testing.T) {
	svc, _, ids := setup(t)
	inv := countingInvalidator{}
	svc.inv = inv

	if _, err := svc.SignList(asUser("lead"), aftercare.NewGeneralPayload(SignPayload{IDs: []uint{ids[0]}})); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, inv[cache.Referrals])

	// отклонённая операция поколение не сдвигает
	_, err := svc.SignList(asUser("lead"), aftercare.NewGeneralPayload(SignPayload{IDs: []uint{ids[0]}}))
	assert.Equal(t, true, errors.Is(err, aftercare.ErrInvalidState))
	assert.Equal(t, 1, inv[cache.Referrals])

	if _, err := svc.GoBack(asUser("lead"), aftercare.NewGeneralPayload(GoBackPayload{IDs: []uint{ids[1]}, Reason: "dup"})); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.TransPort(asUser("lead"), aftercare.NewGeneralPayload(TransPortPayload{IDs: []uint{ids[2]}, ToBranch: "B02"})); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 3, inv[cache.Referrals])
}
