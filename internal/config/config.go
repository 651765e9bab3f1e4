package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers understood by the server.
const (
	StoreMemory   = "memory"
	StoreMySQL    = "mysql"
	StorePostgres = "postgres"
)

// Session slot backends.
const (
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	MySQLDSN    string `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/devrush?charset=utf8mb4&parseTime=True&loc=Local"`
	PostgresDSN string `env:"POSTGRES_DSN" envDefault:"host=localhost port=5432 user=devrush password=devrush dbname=devrush sslmode=disable"`
	ResetDB     bool   `env:"RESET_DB" envDefault:"false"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"redis"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-me"`

	AdminEmail      string `env:"ADMIN_EMAIL" envDefault:"admin@devrush.com"`
	AdminPassword   string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
	AdminName       string `env:"ADMIN_NAME" envDefault:"Admin User"`
	VerifyPasswords bool   `env:"VERIFY_PASSWORDS" envDefault:"true"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Parse reads the environment into a Config and returns parse failures to the caller.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
