package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Notification NotificationConfig
	Escalation   EscalationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	UserCacheTTLSec int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// NotificationConfig holds administrator email delivery settings.
// An empty SMTPHost selects the log-only transport.
type NotificationConfig struct {
	EmailFrom    string
	AdminEmail   string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
}

// EscalationConfig parameterizes the priority rule chain.
type EscalationConfig struct {
	AgeThreshold time.Duration
	Keywords     []string
	RulesFile    string
}

// rulesFile is the YAML layout of ESCALATION_RULES_FILE.
type rulesFile struct {
	AgeThreshold string   `yaml:"age_threshold"`
	Keywords     []string `yaml:"keywords"`
}

var defaultKeywords = []string{"Crash", "Important", "Failure"}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	escalation, err := loadEscalation()
	if err != nil {
		return nil, err
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-escalation-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              redisDB,
			UserCacheTTLSec: getEnvAsInt("USER_CACHE_TTL_SECONDS", 300),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Notification: NotificationConfig{
			EmailFrom:    getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			AdminEmail:   getEnv("NOTIFY_ADMIN_EMAIL", "admin@example.com"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		},
		Escalation: escalation,
	}

	return cfg, nil
}

// loadEscalation resolves rule settings: rules file over env over defaults.
func loadEscalation() (EscalationConfig, error) {
	cfg := EscalationConfig{
		AgeThreshold: time.Hour,
		Keywords:     append([]string(nil), defaultKeywords...),
		RulesFile:    os.Getenv("ESCALATION_RULES_FILE"),
	}

	if raw := os.Getenv("ESCALATION_AGE_THRESHOLD"); raw != "" {
		d, err := parseThreshold(raw)
		if err != nil {
			return EscalationConfig{}, fmt.Errorf("invalid ESCALATION_AGE_THRESHOLD: %w", err)
		}
		cfg.AgeThreshold = d
	}
	if keywords := splitList(os.Getenv("ESCALATION_KEYWORDS")); len(keywords) > 0 {
		cfg.Keywords = keywords
	}

	if cfg.RulesFile == "" {
		return cfg, nil
	}
	file, err := LoadRulesFile(cfg.RulesFile)
	if err != nil {
		return EscalationConfig{}, err
	}
	if file.AgeThreshold > 0 {
		cfg.AgeThreshold = file.AgeThreshold
	}
	if len(file.Keywords) > 0 {
		cfg.Keywords = file.Keywords
	}
	return cfg, nil
}

// LoadRulesFile parses an escalation rules YAML file. Fields left out stay zero.
func LoadRulesFile(path string) (EscalationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EscalationConfig{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var raw rulesFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return EscalationConfig{}, fmt.Errorf("failed to parse rules file: %w", err)
	}

	cfg := EscalationConfig{RulesFile: path}
	if raw.AgeThreshold != "" {
		d, err := parseThreshold(raw.AgeThreshold)
		if err != nil {
			return EscalationConfig{}, fmt.Errorf("invalid age_threshold in %s: %w", path, err)
		}
		cfg.AgeThreshold = d
	}
	for _, k := range raw.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			cfg.Keywords = append(cfg.Keywords, k)
		}
	}
	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// UserCacheTTL returns how long resolved users stay cached.
func (r RedisConfig) UserCacheTTL() time.Duration {
	if r.UserCacheTTLSec <= 0 {
		return 0
	}
	return time.Duration(r.UserCacheTTLSec) * time.Second
}

func parseThreshold(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("threshold must be positive, got %s", d)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
