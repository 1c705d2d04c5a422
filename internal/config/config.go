package config

import (
	"fmt"
	"log"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from the environment. A .env file may be loaded by the
// caller beforehand (see cmd/pos-gateway).
type Config struct {
	Port            string `env:"PORT" env-default:"3001"`
	RepoBackend     string `env:"REPO_BACKEND" env-default:"pg"`
	AllowMemBackend bool   `env:"ALLOW_MEM_BACKEND_FOR_TESTS" env-default:"false"`
	MigrationsPath  string `env:"MIGRATIONS_PATH"`

	DB    DBConfig
	Nequi NequiConfig
}

type DBConfig struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     int    `env:"DB_PORT" env-default:"5432"`
	Username string `env:"DB_USERNAME" env-default:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Database string `env:"DB_DATABASE"`
	SSL      bool   `env:"DB_SSL" env-default:"false"`
}

// DSN builds the lib/pq connection string. DB_SSL enables TLS without
// certificate verification, matching how the terminals' registry database
// is exposed.
func (d DBConfig) DSN() string {
	sslmode := "disable"
	if d.SSL {
		sslmode = "require"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, sslmode)
}

type NequiConfig struct {
	BaseURL string `env:"DEMO_NEQUI_PUSH_URL" env-default:"http://localhost:3000"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to read config from environment: %v", err)
	}
	return &cfg
}
