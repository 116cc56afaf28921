package config

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "host=db user=aca dbname=aca")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("HTTP_READ_TIMEOUT", "3s")
	t.Setenv("AUTH_SECRET", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, true, cfg.DB.AutoMigrate)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
}
