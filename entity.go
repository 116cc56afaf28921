package aftercare

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// nowFunc подменяется в тестах
var nowFunc = time.Now

// BaseEntity — идентификатор и аудит-поля, общие для всех таблиц.
// Пользователь берётся из контекста запроса (см. WithActor), поэтому
// репозитории обязаны работать через db.WithContext(ctx).
type BaseEntity struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreateUser string    `gorm:"size:50" json:"createUser"`
	CreateDate time.Time `json:"createDate"`
	ModifyUser string    `gorm:"size:50" json:"modifyUser"`
	ModifyDate time.Time `json:"modifyDate"`
}

func (e *BaseEntity) BeforeCreate(tx *gorm.DB) error {
	actor := ActorFrom(tx.Statement.Context)
	now := nowFunc()
	if e.CreateUser == "" {
		e.CreateUser = actor
	}
	if e.CreateDate.IsZero() {
		e.CreateDate = now
	}
	e.ModifyUser = actor
	e.ModifyDate = now
	return nil
}

// BeforeUpdate работает и для Updates(map): SetColumn дописывает ключи в map.
func (e *BaseEntity) BeforeUpdate(tx *gorm.DB) error {
	tx.Statement.SetColumn("ModifyUser", ActorFrom(tx.Statement.Context))
	tx.Statement.SetColumn("ModifyDate", nowFunc())
	return nil
}

// SoftDelete — флаг мягкого удаления с причиной.
type SoftDelete struct {
	IsDeleted   *bool      `gorm:"index" json:"isDeleted"`
	EraseReason string     `gorm:"size:200" json:"eraseReason,omitempty"`
	EraseUser   string     `gorm:"size:50" json:"eraseUser,omitempty"`
	EraseDate   *time.Time `json:"eraseDate,omitempty"`
}

func (s SoftDelete) Deleted() bool {
	return s.IsDeleted != nil && *s.IsDeleted
}

// NotDeleted — явный предикат вместо скоупа ORM: NULL считается «не удалено».
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("(is_deleted = ? OR is_deleted IS NULL)", false)
}

func OnlyDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", true)
}

// NotDeletedOn — то же для запросов с JOIN, где колонку надо квалифицировать.
func NotDeletedOn(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("(%s.is_deleted = ? OR %s.is_deleted IS NULL)", table, table), false)
	}
}

func erasePatch(actor, reason string) map[string]any {
	now := nowFunc()
	return map[string]any{
		"is_deleted":   true,
		"erase_reason": reason,
		"erase_user":   actor,
		"erase_date":   &now,
	}
}

func restorePatch() map[string]any {
	return map[string]any{
		"is_deleted":   false,
		"erase_reason": "",
		"erase_user":   "",
		"erase_date":   nil,
	}
}
