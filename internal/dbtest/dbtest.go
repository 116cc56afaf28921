// Package dbtest поднимает чистую in-memory sqlite со схемой для тестов пакетов.
package dbtest

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/axgrid/aftercare/internal/config"
	"github.com/axgrid/aftercare/internal/database"
)

// New открывает отдельную базу на тест. Одно соединение: у каждого
// соединения :memory: своя база.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DBConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := database.AutoMigrate(context.Background(), db, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// Insert сохраняет строки как есть, без проверки ошибок в каждом тесте.
func Insert(t testing.TB, db *gorm.DB, rows ...any) {
	t.Helper()
	for _, r := range rows {
		if err := db.Create(r).Error; err != nil {
			t.Fatal(err)
		}
	}
}
