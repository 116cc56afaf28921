package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type HTTPConfig struct {
	Addr            string        `envconfig:"HTTP_ADDR"          default:":8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT"  default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT"  default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT"   default:"10s"`
	// debug | release | test
	GinMode string `envconfig:"GIN_MODE" default:"release"`
}

type DBConfig struct {
	// sqlite | postgres | mysql
	Driver          string        `envconfig:"DB_DRIVER"            default:"sqlite"`
	DSN             string        `envconfig:"DB_DSN"               default:"file:aftercare.db?_foreign_keys=on"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS"    default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS"    default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE"      default:"false"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL"  default:"info"`
	// json | console
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

type AuthConfig struct {
	// пустой секрет: пользователь берётся из заголовка X-User-Id
	Secret string `envconfig:"AUTH_SECRET"`
}

type RedisConfig struct {
	// пустой адрес: кэш отчётов выключен
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB"         default:"0"`
	TTL      time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`
}

// Config holds the overall application configuration.
type Config struct {
	HTTP  HTTPConfig
	DB    DBConfig
	Log   LogConfig
	Auth  AuthConfig
	Redis RedisConfig
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
