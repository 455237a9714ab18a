package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Ledger     LedgerConfig
	Disclosure DisclosureConfig
	Simulation SimulationConfig
	Extracts   ExtractsConfig
	Audit      AuditConfig
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

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
	// DevTokenMint exposes a token mint endpoint for local operation.
	// Wire-layer identity is attested upstream in production.
	DevTokenMint bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// LedgerConfig tunes the deterministic record engine.
type LedgerConfig struct {
	// MinimumDrivingAge gates driver license issuance, in whole years.
	MinimumDrivingAge int
	// EventJournalCap bounds the in-memory event journal exposed to
	// replication consumers. Oldest entries are dropped past the cap.
	EventJournalCap int
}

// DisclosureConfig governs selective-disclosure proof construction.
type DisclosureConfig struct {
	// Secret seeds per-certificate blinding keys. Must be identical across
	// replicas or proofs will not verify cross-node.
	Secret   string
	CacheTTL time.Duration
}

// SimulationConfig gates the what-if controller.
type SimulationConfig struct {
	Enabled bool
	// AllowCommit is a deliberate policy switch. Default policy treats
	// simulations as advisory; endSimulation(commit=true) fails NOT_SUPPORTED
	// unless an adopter flips this.
	AllowCommit bool
}

// ExtractsConfig controls certified PDF/CSV extracts.
type ExtractsConfig struct {
	Enabled   bool
	Authority string
}

// AuditConfig controls the async audit trail.
type AuditConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
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
		if !errors.As(err, &notFound) {
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
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:       v.GetString("JWT_SECRET"),
		Expiration:   parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:       v.GetString("JWT_ISSUER"),
		DevTokenMint: v.GetBool("JWT_DEV_TOKEN_MINT"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Ledger = LedgerConfig{
		MinimumDrivingAge: v.GetInt("LEDGER_MINIMUM_DRIVING_AGE"),
		EventJournalCap:   v.GetInt("LEDGER_EVENT_JOURNAL_CAP"),
	}

	cfg.Disclosure = DisclosureConfig{
		Secret:   v.GetString("DISCLOSURE_SECRET"),
		CacheTTL: parseDuration(v.GetString("DISCLOSURE_CACHE_TTL"), time.Hour),
	}

	cfg.Simulation = SimulationConfig{
		Enabled:     v.GetBool("ENABLE_SIMULATION"),
		AllowCommit: v.GetBool("SIMULATION_ALLOW_COMMIT"),
	}

	cfg.Extracts = ExtractsConfig{
		Enabled:   v.GetBool("ENABLE_EXTRACTS"),
		Authority: v.GetString("EXTRACTS_AUTHORITY"),
	}

	cfg.Audit = AuditConfig{
		Enabled:    v.GetBool("ENABLE_AUDIT_TRAIL"),
		Workers:    v.GetInt("AUDIT_WORKERS"),
		BufferSize: v.GetInt("AUDIT_BUFFER_SIZE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "vitals_ledger")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "vitals-ledger")
	v.SetDefault("JWT_DEV_TOKEN_MINT", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("LEDGER_MINIMUM_DRIVING_AGE", 16)
	v.SetDefault("LEDGER_EVENT_JOURNAL_CAP", 10000)

	v.SetDefault("DISCLOSURE_SECRET", "dev_disclosure_secret")
	v.SetDefault("DISCLOSURE_CACHE_TTL", "1h")

	v.SetDefault("ENABLE_SIMULATION", true)
	v.SetDefault("SIMULATION_ALLOW_COMMIT", false)

	v.SetDefault("ENABLE_EXTRACTS", true)
	v.SetDefault("EXTRACTS_AUTHORITY", "Office of Vital Records")

	v.SetDefault("ENABLE_AUDIT_TRAIL", false)
	v.SetDefault("AUDIT_WORKERS", 1)
	v.SetDefault("AUDIT_BUFFER_SIZE", 64)
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
