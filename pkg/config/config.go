package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Token schemes understood by the token package.
const (
	TokenSchemeDev = "dev"
	TokenSchemeJWT = "jwt"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Token    TokenConfig
	CORS     CORSConfig
	Log      LogConfig
	Seed     SeedConfig
	Features FeatureConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// TokenConfig selects how bearer tokens are issued and validated.
type TokenConfig struct {
	Scheme string
	Secret string
	Issuer string
	TTL    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SeedConfig controls the development fixtures inserted at startup.
type SeedConfig struct {
	Enabled       bool
	AdminUsername string
	AdminPassword string
}

// FeatureConfig toggles optional surfaces.
type FeatureConfig struct {
	Metrics     bool
	Transcripts bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	scheme := strings.ToLower(strings.TrimSpace(v.GetString("TOKEN_SCHEME")))
	if scheme == "" {
		scheme = TokenSchemeDev
		if cfg.Env == EnvProduction {
			scheme = TokenSchemeJWT
		}
	}
	cfg.Token = TokenConfig{
		Scheme: scheme,
		Secret: v.GetString("TOKEN_SECRET"),
		Issuer: v.GetString("TOKEN_ISSUER"),
		TTL:    parseDuration(v.GetString("TOKEN_TTL"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Seed = SeedConfig{
		Enabled:       v.GetBool("SEED_DEV_DATA"),
		AdminUsername: v.GetString("SEED_ADMIN_USERNAME"),
		AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
	}

	cfg.Features = FeatureConfig{
		Metrics:     v.GetBool("ENABLE_METRICS"),
		Transcripts: v.GetBool("ENABLE_TRANSCRIPTS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects combinations that must never reach a running server.
func (c *Config) Validate() error {
	switch c.Token.Scheme {
	case TokenSchemeDev, TokenSchemeJWT:
	default:
		return errors.New("TOKEN_SCHEME must be one of dev, jwt")
	}
	if c.Token.Scheme == TokenSchemeJWT && strings.TrimSpace(c.Token.Secret) == "" {
		return errors.New("TOKEN_SECRET is required for the jwt token scheme")
	}
	if c.Env == EnvProduction {
		if c.Token.Scheme == TokenSchemeDev {
			return errors.New("the dev token scheme is unsigned and cannot be used in production")
		}
		if c.Seed.Enabled {
			return errors.New("SEED_DEV_DATA cannot be enabled in production")
		}
	}
	if c.Token.TTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campus_records")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("TOKEN_SCHEME", "")
	v.SetDefault("TOKEN_SECRET", "")
	v.SetDefault("TOKEN_ISSUER", "campus-records-api")
	v.SetDefault("TOKEN_TTL", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SEED_DEV_DATA", false)
	v.SetDefault("SEED_ADMIN_USERNAME", "admin")
	v.SetDefault("SEED_ADMIN_PASSWORD", "admin123")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_TRANSCRIPTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
