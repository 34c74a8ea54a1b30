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

// Supported store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store     StoreConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Sequencer SequencerConfig
	CORS      CORSConfig
	Log       LogConfig
	Ledger    LedgerConfig
}

// StoreConfig selects the roster/ledger backend.
type StoreConfig struct {
	Driver  string
	Timeout time.Duration
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
}

// MongoConfig configures the document store backend.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SequencerConfig controls version stamping of attendance writes.
type SequencerConfig struct {
	Enabled bool
	KeyTTL  time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// LedgerConfig carries attendance and payment ledger behaviour.
type LedgerConfig struct {
	Organization     string
	Timezone         string
	ViewConcurrency  int
	ValidateCheckIns bool
}

// Location resolves the configured ledger timezone, falling back to the process local zone.
func (l LedgerConfig) Location() *time.Location {
	if l.Timezone == "" || strings.EqualFold(l.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
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

	cfg.Store = StoreConfig{
		Driver:  strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		Timeout: parseDuration(v.GetString("STORE_TIMEOUT"), 5*time.Second),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Mongo = MongoConfig{
		URI:            v.GetString("MONGO_URI"),
		Database:       v.GetString("MONGO_DATABASE"),
		ConnectTimeout: parseDuration(v.GetString("MONGO_CONNECT_TIMEOUT"), 10*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Sequencer = SequencerConfig{
		Enabled: v.GetBool("ENABLE_WRITE_SEQUENCER"),
		KeyTTL:  parseDuration(v.GetString("WRITE_SEQUENCER_KEY_TTL"), 48*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	concurrency := v.GetInt("VIEW_CONCURRENCY")
	if concurrency <= 0 {
		concurrency = 8
	}
	cfg.Ledger = LedgerConfig{
		Organization:     v.GetString("ORGANIZATION_NAME"),
		Timezone:         v.GetString("LEDGER_TIMEZONE"),
		ViewConcurrency:  concurrency,
		ValidateCheckIns: v.GetBool("CHECKIN_VALIDATE_CODE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("STORE_TIMEOUT", "5s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "attendance_ledger")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "attendance_ledger")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_WRITE_SEQUENCER", false)
	v.SetDefault("WRITE_SEQUENCER_KEY_TTL", "48h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ORGANIZATION_NAME", "Sochides")
	v.SetDefault("LEDGER_TIMEZONE", "Local")
	v.SetDefault("VIEW_CONCURRENCY", 8)
	v.SetDefault("CHECKIN_VALIDATE_CODE", true)
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
