package aftercare

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
	"gorm.io/driver/sqlite" // Sqlite driver based on CGO
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

type testCard struct {
	BaseEntity
	SoftDelete
	Name   string `gorm:"index"`
	Branch string `gorm:"index"`
	Age    int
}

func (testCard) TableName() string { return "test_cards" }

var testCardCfg = RepoConfig{
	AllowedFilterOps: map[string]FieldSet{
		"branch": NewFieldSet("eq", "in"),
		"age":    NewFieldSet("gte", "lte", "between"),
	},
	AllowedSortFields:   NewFieldSet("name", "age"),
	AllowedSearchFields: NewFieldSet("name"),
	SoftDelete:          true,
}

func reset(t *testing.T) {
	t.Helper()
	if err := testDB.Exec("DELETE FROM test_cards").Error; err != nil {
		t.Fatal(err)
	}
}

func seed(t *testing.T, ctx context.Context, repo *GormRepo[testCard, uint], cards ...testCard) []uint {
	t.Helper()
	ids := make([]uint, 0, len(cards))
	for i := range cards {
		if err := repo.Create(ctx, &cards[i]); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, cards[i].ID)
	}
	return ids
}

func TestGormRepo_CreateStampsActor(t *testing.T) {
	reset(t)
	repo := NewGormRepo[testCard, uint](testDB, testCardCfg)
	ctx := WithActor(context.Background(), "alice")

	card := testCard{Name: "Chen", Branch: "B1", Age: 30}
	if err := repo.Create(ctx, &card); err != nil {
		t.Fatal(err)
	}
	assert.NotEqual(t, uint(0), card.ID)
	assert.Equal(t, "alice", card.CreateUser)
	assert.Equal(t, "alice", card.ModifyUser)
	assert.Equal(t, false, card.CreateDate.IsZero())

	got, err := repo.GetOne(context.Background(), card.ID)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "alice", got.CreateUser)
	assert.Equal(t, false, got.Deleted())
}

func TestGormRepo_UpdateStampsModifier(t *testing.T) {
	reset(t)
	repo := NewGormRepo[testCard, uint](testDB, testCardCfg)
	ids := seed(t, WithActor(context.Background(), "alice"), repo, testCard{Name: "Lin", Branch: "B1", Age: 20})

	got, err := repo.Update(WithActor(context.Background(), "bob"), ids[0], map[string]any{"age": 21})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 21, got.Age)
	assert.Equal(t, "alice", got.CreateUser)
	assert.Equal(t, "bob", got.ModifyUser)

	_, err = repo.Update(context.Background(), ids[0], nil)
	assert.Equal(t, true, errors.Is(err, ErrEmptyPatch))

	_, err = repo.Update(context.Background(), ids[0]+100, map[string]any{"age": 1})
	assert.Equal(t, true, errors.Is(err, ErrNotFound))
}

func TestGormRepo_EraseRestore(t *testing.T) {
	reset(t)
	repo := NewGormRepo[testCard, uint](testDB, testCardCfg)
	ctx := WithActor(context.Background(), "alice")
	ids := seed(t, ctx, repo,
		testCard{Name: "A", Branch: "B1"},
		testCard{Name: "B", Branch: "B1"},
	)

	affected, err := repo.Erase(ctx, ids[:1], "duplicate card")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(1), affected)

	// повторное удаление ничего не меняет
	affected, err = repo.Erase(ctx, ids[:1], "again")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(0), affected)

	total, err := repo.CountSearch(ctx, ListParams{})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(1), total)

	_, err = repo.GetOne(ctx, ids[0])
	assert.Equal(t, true, errors.Is(err, ErrNotFound))

	erased, err := repo.QueryList(ctx, ListParams{OnlyDeleted: true})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, len(erased))
	assert.Equal(t, "duplicate card", erased[0].EraseReason)
	assert.Equal(t, "alice", erased[0].EraseUser)
	assert.Equal(t, true, erased[0].Deleted())

	affected, err = repo.Restore(ctx, ids)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(1), affected)

	total, err = repo.CountSearch(ctx, ListParams{})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(2), total)

	_, err = repo.Erase(ctx, nil, "x")
	assert.Equal(t, true, errors.Is(err, ErrEmptySelection))
}

func TestGormRepo_NullFlagIsNotDeleted(t *testing.T) {
	reset(t)
	repo := NewGormRepo[testCard, uint](testDB, testCardCfg)
	ids := seed(t, context.Background(), repo, testCard{Name: "A"}, testCard{Name: "B"})
	if err := testDB.Exec("UPDATE test_cards SET is_deleted = NULL WHERE id = ?", ids[0]).Error; err != nil {
		t.Fatal(err)
	}
	if err := testDB.Exec("UPDATE test_cards SET is_deleted = ? WHERE id = ?", false, ids[1]).Error; err != nil {
		t.Fatal(err)
	}
	total, err := repo.CountSearch(context.Background(), ListParams{})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(2), total)
}

func TestGormRepo_QueryListAndCount(t *testing.T) {
	reset(t)
	repo := NewGormRepo[testCard, uint](testDB, testCardCfg)
	ctx := context.Background()
	seed(t, ctx, repo,
		testCard{Name: "Wang", Branch: "B1", Age: 20},
		testCard{Name: "Wu", Branch: "B1", Age: 35},
		testCard{Name: "Hsu", Branch: "B2", Age: 40},
		testCard{Name: "Wei", Branch: "B1", Age: 50},
	)

	p := ListParams{
		Filters:    []Filter{{Field: "branch", Operator: "eq", Value: "B1"}},
		Sort:       &Sort{Field: "age", Order: "desc"},
		Pagination: Pagination{Page: 1, PerPage: 2},
	}
	total, err := repo.CountSearch(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int64(3), total)

	items, err := repo.QueryList(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 2, len(items))
	assert.Equal(t, "Wei", items[0].Name)
	assert.Equal(t, "Wu", items[1].Name)

	p.Pagination.Page = 2
	items, err = repo.QueryList(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, len(items))
	assert.Equal(t, "Wang", items[0].Name)

	// смещение за пределами int: пусто, а не первая страница
	p.Pagination.Page = 1<<62 + 1
	items, err = repo.QueryList(ctx, p)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 0, len(items))

	items, err = repo.QueryList(ctx, ListParams{Search: "w", Filters: []Filter{{Field: "age", Operator: "between", Value: []int{30, 60}}}})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 2, len(items))

	_, err = repo.QueryList(ctx, ListParams{Filters: []Filter{{Field: "name", Operator: "eq", Value: "x"}}})
	assert.NotEqual(t, nil, err)
	_, err = repo.QueryList(ctx, ListParams{Sort: &Sort{Field: "branch"}})
	assert.NotEqual(t, nil, err)
}

func TestGormRepo_ContextScope(t *testing.T) {
	reset(t)
	cfg := testCardCfg
	cfg.Scopes = []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB {
			// пользователь видит только карточки своего отделения
			return db.Where("branch = ?", ActorFrom(db.Statement.Context))
		},
	}
	repo := NewGormRepo[testCard, uint](testDB, cfg)
	ids := seed(t, context.Background(), repo,
		testCard{Name: "One", Branch: "B1"},
		testCard{Name: "Two", Branch: "B2"},
	)
	inCtx := WithActor(context.Background(), "B1")

	got, err := repo.GetOne(inCtx, ids[0])
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "One", got.Name)

	_, err = repo.GetOne(inCtx, ids[1])
	if err == nil {
		t.Fatal("expected error when reading a card of another branch")
	}

	many, err := repo.GetMany(inCtx, ids)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, len(many))
}

func TestMain(m *testing.M) {
	db, err := setupTestDB()
	if err != nil {
		panic(err)
	}
	testDB = db
	m.Run()
}

func setupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// :memory: живёт в пределах одного соединения
	sqlDB.SetMaxOpenConns(1)
	if err = db.AutoMigrate(&testCard{}); err != nil {
		return nil, err
	}
	return db, nil
}

func TestGormRepo_RejectsUnknownFields(t *testing.T) {
	reset(t)
	repo := NewGormRepo[testCard, uint](testDB, testCardCfg)
	ctx := context.Background()

	var verr *ValidationError
	_, err := repo.QueryList(ctx, ListParams{Sort: &Sort{Field: "branch"}})
	assert.Equal(t, true, errors.As(err, &verr))
	assert.Equal(t, "branch", verr.Fields[0].Field)

	_, err = repo.CountSearch(ctx, ListParams{Filters: []Filter{{Field: "name", Operator: "eq", Value: "x"}}})
	assert.Equal(t, true, errors.As(err, &verr))

	_, err = repo.CountSearch(ctx, ListParams{Filters: []Filter{{Field: "age", Operator: "eq", Value: 1}}})
	assert.Equal(t, true, errors.As(err, &verr))
}
