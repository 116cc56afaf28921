package aftercare

import (
	"context"

	"gorm.io/gorm"
)

type IDConstraint interface {
	~uint | ~uint64 | ~int | ~int64 | ~string
}

type Repo[T any, ID IDConstraint] interface {
	// QueryList и CountSearch — два отдельных запроса, общего снапшота между ними нет
	QueryList(ctx context.Context, p ListParams) ([]T, error)
	CountSearch(ctx context.Context, p ListParams) (int64, error)
	GetOne(ctx context.Context, id ID) (T, error)
	GetMany(ctx context.Context, ids []ID) ([]T, error)
	Create(ctx context.Context, in *T) error
	Save(ctx context.Context, in *T) error
	Update(ctx context.Context, id ID, patch map[string]any) (T, error)
	Delete(ctx context.Context, id ID) error
	DeleteMany(ctx context.Context, ids []ID) (affected int64, err error)
	// Мягкое удаление: только для сущностей с SoftDelete
	Erase(ctx context.Context, ids []ID, reason string) (affected int64, err error)
	Restore(ctx context.Context, ids []ID) (affected int64, err error)
	WithTx(tx *gorm.DB) Repo[T, ID]
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Filter struct {
	Field    string
	Operator string
	Value    any
}

type Sort struct {
	Field string // безопасно только через whitelist
	Order string // "asc"|"desc"
}

type Pagination struct {
	Page    int
	PerPage int
}

// Paged — скоуп LIMIT/OFFSET. PerPage <= 0 — без ограничения, Page < 1 считается первой.
// Переполненное смещение упирается в math.MaxInt и даёт пустую выборку.
func (p Pagination) Paged(db *gorm.DB) *gorm.DB {
	if p.PerPage <= 0 {
		return db
	}
	offset, _ := pageOffset(p.Page, p.PerPage)
	return db.Limit(p.PerPage).Offset(offset)
}

type ListParams struct {
	Filters      []Filter
	Sort         *Sort
	Search       string
	SearchFields []string // по каким полям делать поисковый OR ... LIKE
	Pagination   Pagination
	// Scopes — дополнительные условия конкретного модуля (диапазоны дат, OR-группы и т.п.)
	Scopes []func(*gorm.DB) *gorm.DB
	// WithDeleted снимает фильтр is_deleted, OnlyDeleted оставляет только удалённые
	WithDeleted bool
	OnlyDeleted bool
}

// Eq — короткая запись фильтра равенства, пустые строки и nil пропускаются.
func Eq(field string, v any) []Filter {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
	case *int:
		if t == nil {
			return nil
		}
		v = *t
	}
	return []Filter{{Field: field, Operator: "eq", Value: v}}
}
