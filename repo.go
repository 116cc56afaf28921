package aftercare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FieldSet map[string]struct{}

func NewFieldSet(fields ...string) FieldSet {
	m := make(FieldSet, len(fields))
	for _, f := range fields {
		m[f] = struct{}{}
	}
	return m
}

func (fs FieldSet) Has(f string) bool {
	_, ok := fs[f]
	return ok
}

type RepoConfig struct {
	// Поля, по которым можно фильтровать: map[field] -> разрешённые операторы
	AllowedFilterOps map[string]FieldSet
	// Поля, по которым можно сортировать
	AllowedSortFields FieldSet
	// Поля, по которым можно искать (LIKE)
	AllowedSearchFields FieldSet
	// Сортировка по умолчанию, чтобы страницы были стабильны
	DefaultOrder string
	Preloads     []string
	// Скоуп для ACL и т.п.: func(db) db.Where("branch_code = ?", code)
	Scopes []func(*gorm.DB) *gorm.DB
	// Таблица с колонкой is_deleted: чтение отфильтровано, Erase/Restore доступны
	SoftDelete bool
}

type GormRepo[T any, ID IDConstraint] struct {
	db    *gorm.DB
	cfg   RepoConfig
	idCol string
	table string
}

type TableNamer interface {
	TableName() string
}

func WithIDColumn[T any, ID IDConstraint](col string) func(*GormRepo[T, ID]) {
	return func(r *GormRepo[T, ID]) { r.idCol = col }
}

func NewGormRepo[T any, ID IDConstraint](db *gorm.DB, cfg RepoConfig, opts ...func(*GormRepo[T, ID])) *GormRepo[T, ID] {
	r := &GormRepo[T, ID]{db: db, cfg: cfg, idCol: "id"}
	var tmp any = new(T)
	if namer, ok := tmp.(TableNamer); ok {
		r.table = namer.TableName()
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *GormRepo[T, ID]) DB() *gorm.DB {
	return r.db
}

func (r *GormRepo[T, ID]) WithTx(tx *gorm.DB) Repo[T, ID] {
	cp := *r
	cp.db = tx
	return &cp
}

func (r *GormRepo[T, ID]) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *GormRepo[T, ID]) GetOne(ctx context.Context, id ID) (T, error) {
	var out T
	q := r.applyPreloads(r.base(ctx))
	if err := q.Where(clause.Eq{Column: clause.Column{Name: r.idCol}, Value: id}).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, fmt.Errorf("%w: %v", ErrNotFound, id)
		}
		return out, err
	}
	return out, nil
}

func (r *GormRepo[T, ID]) GetMany(ctx context.Context, ids []ID) ([]T, error) {
	var out []T
	if len(ids) == 0 {
		return out, nil
	}
	q := r.applyPreloads(r.base(ctx))
	if err := q.Where(clause.IN{Column: clause.Column{Name: r.idCol}, Values: toAnySlice(ids)}).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo[T, ID]) Create(ctx context.Context, in *T) error {
	return r.db.WithContext(ctx).Create(in).Error
}

// Save — вставка при нулевом ключе, иначе полное обновление
func (r *GormRepo[T, ID]) Save(ctx context.Context, in *T) error {
	return r.db.WithContext(ctx).Save(in).Error
}

func (r *GormRepo[T, ID]) Update(ctx context.Context, id ID, patch map[string]any) (T, error) {
	var out T
	if len(patch) == 0 {
		return out, ErrEmptyPatch
	}
	tx := r.base(ctx).
		Where(clause.Eq{Column: clause.Column{Name: r.idCol}, Value: id}).
		// Только указанные ключи; GORM защищает от SQL-инъекций на значения
		Updates(patch)
	if tx.Error != nil {
		return out, tx.Error
	}
	if tx.RowsAffected == 0 {
		return out, fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	return r.GetOne(ctx, id)
}

func (r *GormRepo[T, ID]) Delete(ctx context.Context, id ID) error {
	var z T
	tx := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: r.idCol}, Value: id}).Delete(&z)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	return nil
}

func (r *GormRepo[T, ID]) DeleteMany(ctx context.Context, ids []ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var z T
	tx := r.db.WithContext(ctx).Where(clause.IN{Column: clause.Column{Name: r.idCol}, Values: toAnySlice(ids)}).Delete(&z)
	return tx.RowsAffected, tx.Error
}

// Erase помечает записи удалёнными; уже удалённые не трогает.
func (r *GormRepo[T, ID]) Erase(ctx context.Context, ids []ID, reason string) (int64, error) {
	if !r.cfg.SoftDelete {
		return 0, errors.New("repository is not configured for soft delete")
	}
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}
	tx := r.base(ctx).
		Where(clause.IN{Column: clause.Column{Name: r.idCol}, Values: toAnySlice(ids)}).
		Updates(erasePatch(ActorFrom(ctx), reason))
	return tx.RowsAffected, tx.Error
}

func (r *GormRepo[T, ID]) Restore(ctx context.Context, ids []ID) (int64, error) {
	if !r.cfg.SoftDelete {
		return 0, errors.New("repository is not configured for soft delete")
	}
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}
	tx := r.scoped(ctx).Scopes(OnlyDeleted).
		Where(clause.IN{Column: clause.Column{Name: r.idCol}, Values: toAnySlice(ids)}).
		Updates(restorePatch())
	return tx.RowsAffected, tx.Error
}

func (r *GormRepo[T, ID]) CountSearch(ctx context.Context, p ListParams) (int64, error) {
	q, err := r.prepare(ctx, p)
	if err != nil {
		return 0, err
	}
	var total int64
	if err = q.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// QueryList: PerPage <= 0 — без пагинации (для отчётов).
func (r *GormRepo[T, ID]) QueryList(ctx context.Context, p ListParams) ([]T, error) {
	q, err := r.prepare(ctx, p)
	if err != nil {
		return nil, err
	}
	if p.Sort != nil {
		if q, err = r.applySort(q, *p.Sort); err != nil {
			return nil, err
		}
	}
	if order := r.cfg.DefaultOrder; order != "" {
		q = q.Order(order)
	} else {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: r.idCol}})
	}
	var items []T
	if err = r.applyPreloads(q.Scopes(p.Pagination.Paged)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ---------- Внутренности ----------

func (r *GormRepo[T, ID]) prepare(ctx context.Context, p ListParams) (*gorm.DB, error) {
	var q *gorm.DB
	switch {
	case p.OnlyDeleted && r.cfg.SoftDelete:
		q = r.scoped(ctx).Scopes(OnlyDeleted)
	case p.WithDeleted:
		q = r.scoped(ctx)
	default:
		q = r.base(ctx)
	}
	if len(p.Scopes) > 0 {
		q = q.Scopes(p.Scopes...)
	}
	var err error
	if q, err = r.applyFilters(q, p.Filters); err != nil {
		return nil, err
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		if q, err = r.applySearch(q, s, p.SearchFields); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// scoped — модель + ACL-скоупы, без фильтра is_deleted
func (r *GormRepo[T, ID]) scoped(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(T))
	for _, s := range r.cfg.Scopes {
		q = q.Scopes(s)
	}
	return q
}

func (r *GormRepo[T, ID]) base(ctx context.Context) *gorm.DB {
	q := r.scoped(ctx)
	if r.cfg.SoftDelete {
		q = q.Scopes(NotDeleted)
	}
	return q
}

func (r *GormRepo[T, ID]) applyPreloads(db *gorm.DB) *gorm.DB {
	for _, p := range r.cfg.Preloads {
		db = db.Preload(p)
	}
	return db
}

func (r *GormRepo[T, ID]) applySort(db *gorm.DB, s Sort) (*gorm.DB, error) {
	field := strings.TrimSpace(s.Field)
	if field == "" {
		return db, nil
	}
	if !r.cfg.AllowedSortFields.Has(field) {
		return db, invalidQuery(field, "sorting is not allowed")
	}
	desc := strings.EqualFold(s.Order, "desc")
	db = db.Order(clause.OrderByColumn{
		Column: clause.Column{Name: field},
		Desc:   desc,
	})
	return db, nil
}

func (r *GormRepo[T, ID]) applySearch(db *gorm.DB, search string, requested []string) (*gorm.DB, error) {
	fields := make([]string, 0, len(requested))
	if len(requested) > 0 {
		for _, f := range requested {
			if r.cfg.AllowedSearchFields.Has(f) {
				fields = append(fields, f)
			}
		}
	} else {
		for f := range r.cfg.AllowedSearchFields {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return db, nil
	}

	like := "%" + search + "%"
	conds := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	// LOWER() одинаково работает в sqlite, postgres и mysql
	for _, f := range fields {
		conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", f))
		args = append(args, like)
	}
	db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	return db, nil
}

func (r *GormRepo[T, ID]) applyFilters(db *gorm.DB, filters []Filter) (*gorm.DB, error) {
	for _, f := range filters {
		field := strings.TrimSpace(f.Field)
		if field == "" {
			continue
		}
		allowedOps, ok := r.cfg.AllowedFilterOps[field]
		if !ok {
			return db, invalidQuery(field, "filtering is not allowed")
		}
		op := strings.ToLower(strings.TrimSpace(f.Operator))
		if !allowedOps.Has(op) {
			return db, invalidQuery(field, "operator "+op+" is not allowed")
		}

		col := field
		switch op {
		case "eq":
			db = db.Where(fmt.Sprintf("%s = ?", col), f.Value)
		case "ne":
			db = db.Where(fmt.Sprintf("%s <> ?", col), f.Value)
		case "lt":
			db = db.Where(fmt.Sprintf("%s < ?", col), f.Value)
		case "lte":
			db = db.Where(fmt.Sprintf("%s <= ?", col), f.Value)
		case "gt":
			db = db.Where(fmt.Sprintf("%s > ?", col), f.Value)
		case "gte":
			db = db.Where(fmt.Sprintf("%s >= ?", col), f.Value)
		case "in":
			db = db.Where(fmt.Sprintf("%s IN ?", col), toAnySliceFromValue(f.Value))
		case "nin":
			db = db.Where(fmt.Sprintf("%s NOT IN ?", col), toAnySliceFromValue(f.Value))
		case "between":
			vals := toAnySliceFromValue(f.Value)
			if len(vals) != 2 {
				return db, invalidQuery(field, "between expects exactly two values")
			}
			db = db.Where(fmt.Sprintf("%s BETWEEN ? AND ?", col), vals[0], vals[1])
		case "contains":
			db = db.Where(fmt.Sprintf("%s LIKE ?", col), "%"+fmt.Sprint(f.Value)+"%")
		case "icontains":
			db = db.Where(fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", col), "%"+fmt.Sprint(f.Value)+"%")
		case "startswith":
			db = db.Where(fmt.Sprintf("%s LIKE ?", col), fmt.Sprint(f.Value)+"%")
		case "endswith":
			db = db.Where(fmt.Sprintf("%s LIKE ?", col), "%"+fmt.Sprint(f.Value))
		case "isnull":
			b, _ := f.Value.(bool)
			if b {
				db = db.Where(fmt.Sprintf("%s IS NULL", col))
			} else {
				db = db.Where(fmt.Sprintf("%s IS NOT NULL", col))
			}
		default:
			return db, invalidQuery(field, "unsupported operator "+op)
		}
	}
	return db, nil
}

// ошибки запроса списка — это ошибки входных данных, а не сервера
func invalidQuery(field, msg string) error {
	return NewValidationError(FieldError{Field: field, Message: msg})
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}

// принимает либо []T, либо одиночное значение — приводит к []any
func toAnySliceFromValue(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		return toAnySlice(t)
	case []int:
		return toAnySlice(t)
	case []int64:
		return toAnySlice(t)
	case []uint:
		return toAnySlice(t)
	case []uint64:
		return toAnySlice(t)
	case []float64:
		return toAnySlice(t)
	case []time.Time:
		return toAnySlice(t)
	default:
		return []any{v}
	}
}
