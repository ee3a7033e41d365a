package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const minSecretLength = 24

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Security  SecurityConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Twilio    TwilioConfig
	SMTP      SMTPConfig
	Notifier  NotifierConfig
	Scheduler SchedulerConfig
}

// SecurityConfig holds the static keys guarding the API and scheduler surfaces.
type SecurityConfig struct {
	BackendAPIKey  string
	SchedulerToken string
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
	Enabled  bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TwilioConfig configures the SMS transport. All three fields must be set for
// SMS delivery to be available.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// SMTPConfig configures the email transport (Gmail app-password SMTP).
type SMTPConfig struct {
	Host     string
	Port     int
	Sender   string
	Password string
}

// NotifierConfig governs notifier defaults and the resolver/transport budgets.
type NotifierConfig struct {
	DefaultTerm        string
	MinIntervalSeconds int
	FallbackEmail      string
	FallbackNumber     string
	RegistrarBaseURL   string
	ResolverTimeout    time.Duration
	TransportTimeout   time.Duration
	CheckCacheTTL      time.Duration
}

// SchedulerConfig controls the in-process tick loop.
type SchedulerConfig struct {
	Enabled         *bool // nil means "decide from environment"
	IntervalSeconds int
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

	cfg.Security = SecurityConfig{
		BackendAPIKey:  v.GetString("BACKEND_API_KEY"),
		SchedulerToken: v.GetString("SCHEDULER_TOKEN"),
	}
	if len(cfg.Security.BackendAPIKey) < minSecretLength {
		return nil, fmt.Errorf("BACKEND_API_KEY must be at least %d characters", minSecretLength)
	}
	if len(cfg.Security.SchedulerToken) < minSecretLength {
		return nil, fmt.Errorf("SCHEDULER_TOKEN must be at least %d characters", minSecretLength)
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

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		Enabled:  v.GetBool("REDIS_ENABLED"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Twilio = TwilioConfig{
		AccountSID: v.GetString("TWILIO_ACCOUNT_SID"),
		AuthToken:  v.GetString("TWILIO_AUTH_TOKEN"),
		FromNumber: v.GetString("TWILIO_FROM_NUMBER"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Sender:   v.GetString("GMAIL_SENDER"),
		Password: v.GetString("GMAIL_APP_PASSWORD"),
	}

	cfg.Notifier = NotifierConfig{
		DefaultTerm:        v.GetString("DEFAULT_TERM"),
		MinIntervalSeconds: v.GetInt("MIN_INTERVAL_SECONDS"),
		FallbackEmail:      v.GetString("ALERT_TO_EMAIL"),
		FallbackNumber:     v.GetString("ALERT_TO_NUMBER"),
		RegistrarBaseURL:   v.GetString("REGISTRAR_BASE_URL"),
		ResolverTimeout:    parseDuration(v.GetString("RESOLVER_TIMEOUT"), 30*time.Second),
		TransportTimeout:   parseDuration(v.GetString("TRANSPORT_TIMEOUT"), 30*time.Second),
		CheckCacheTTL:      parseDuration(v.GetString("CHECK_CACHE_TTL"), 15*time.Second),
	}

	cfg.Scheduler = SchedulerConfig{
		IntervalSeconds: v.GetInt("LOCAL_SCHEDULER_INTERVAL_SECONDS"),
	}
	if v.IsSet("LOCAL_SCHEDULER_ENABLED") && v.GetString("LOCAL_SCHEDULER_ENABLED") != "" {
		enabled := v.GetBool("LOCAL_SCHEDULER_ENABLED")
		cfg.Scheduler.Enabled = &enabled
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// UseLocalScheduler decides whether the in-process tick loop should run.
// Explicit configuration wins; otherwise the loop only runs in development,
// and never on Cloud Run where multiple instances would double-tick.
func (c *Config) UseLocalScheduler() bool {
	if c.Scheduler.Enabled != nil {
		return *c.Scheduler.Enabled
	}
	if os.Getenv("K_SERVICE") != "" {
		return false
	}
	return strings.EqualFold(c.Env, EnvDevelopment)
}

// SchedulerInterval returns the effective tick interval, never tighter than
// the minimum notifier interval.
func (c *Config) SchedulerInterval() time.Duration {
	seconds := c.Scheduler.IntervalSeconds
	if seconds < c.Notifier.MinIntervalSeconds {
		seconds = c.Notifier.MinIntervalSeconds
	}
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "bruinwatch")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_ENABLED", false)

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("DEFAULT_TERM", "26S")
	v.SetDefault("MIN_INTERVAL_SECONDS", 15)
	v.SetDefault("REGISTRAR_BASE_URL", "https://sa.ucla.edu/ro/Public/SOC/Results")
	v.SetDefault("RESOLVER_TIMEOUT", "30s")
	v.SetDefault("TRANSPORT_TIMEOUT", "30s")
	v.SetDefault("CHECK_CACHE_TTL", "15s")

	v.SetDefault("LOCAL_SCHEDULER_INTERVAL_SECONDS", 60)
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
