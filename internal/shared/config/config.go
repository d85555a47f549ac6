package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"finmgmt/internal/shared/money"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"

	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Firebase  FirebaseConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Scheduler SchedulerConfig
	TLS       TLSConfig
	Telemetry TelemetryConfig
	Finance   FinanceConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

// StoreConfig selects where transactions, payments and the summary live.
type StoreConfig struct {
	Backend     string
	AutoMigrate bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

type AuthConfig struct {
	Provider   string
	JWTSecret  string
	TokenTTL   time.Duration
	CookieName string
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SummaryTTL time.Duration
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type KafkaConfig struct {
	Brokers         []string
	Topic           string
	ConnectAttempts int
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type SchedulerConfig struct {
	Enabled       bool
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	Environment  string
	OTLPEndpoint string
	MetricsPort  string
	SampleRatio  float64
}

// FinanceConfig holds the settings of the financial module itself.
type FinanceConfig struct {
	Role         string
	BaseCurrency string
	MessagesFile string
	AlertTopic   string
	AlertTokens  []string
}

func Load() (*Config, error) {

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	dbMaxOpen, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}
	dbMaxIdle, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}
	dbConnLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	redisTTL, err := time.ParseDuration(getEnv("REDIS_SUMMARY_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_SUMMARY_TTL: %w", err)
	}

	kafkaAttempts, err := strconv.Atoi(getEnv("KAFKA_CONNECT_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_CONNECT_ATTEMPTS: %w", err)
	}

	tokenTTL, err := time.ParseDuration(getEnv("AUTH_TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_TOKEN_TTL: %w", err)
	}

	// Parse scheduler configuration
	schedulerEnabled := getBoolEnv("SCHEDULER_ENABLED", true)
	schedulerTimes := getListEnv("SCHEDULER_TIMES", "06:00,18:00")
	schedulerWorkers, err := strconv.Atoi(getEnv("SCHEDULER_WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_WORKERS: %w", err)
	}
	schedulerJobDelay, err := time.ParseDuration(getEnv("SCHEDULER_JOB_DELAY", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
	}
	sampleRatio, err := strconv.ParseFloat(getEnv("OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_SAMPLE_RATIO: %w", err)
	}

	schedulerQueueSize, err := strconv.Atoi(getEnv("SCHEDULER_QUEUE_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_QUEUE_SIZE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: getListEnv("ALLOWED_HOSTS", ""),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(getEnv("STORE_BACKEND", BackendFirestore)),
			AutoMigrate: getBoolEnv("DB_AUTO_MIGRATE", true),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "finmgmt"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    dbMaxOpen,
			MaxIdleConns:    dbMaxIdle,
			ConnMaxLifetime: dbConnLifetime,
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Auth: AuthConfig{
			Provider:   strings.ToLower(getEnv("AUTH_PROVIDER", AuthProviderJWT)),
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   tokenTTL,
			CookieName: getEnv("AUTH_COOKIE_NAME", "finmgmt_token"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         redisDB,
			SummaryTTL: redisTTL,
		},
		Kafka: KafkaConfig{
			Brokers:         getListEnv("KAFKA_BROKERS", ""),
			Topic:           getEnv("KAFKA_TOPIC", "financial.events"),
			ConnectAttempts: kafkaAttempts,
		},
		Scheduler: SchedulerConfig{
			Enabled:       schedulerEnabled,
			ScheduleTimes: schedulerTimes,
			WorkerCount:   schedulerWorkers,
			JobDelay:      schedulerJobDelay,
			QueueSize:     schedulerQueueSize,
			RunOnStartup:  getBoolEnv("SCHEDULER_RUN_ON_STARTUP", false),
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "finmgmt-api"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
			SampleRatio:  sampleRatio,
		},
		Finance: FinanceConfig{
			Role:         getEnv("FINANCE_ROLE", "manager"),
			BaseCurrency: strings.ToUpper(getEnv("FINANCE_BASE_CURRENCY", money.DefaultCurrency)),
			MessagesFile: getEnv("FINANCE_MESSAGES_FILE", ""),
			AlertTopic:   getEnv("FINANCE_ALERT_TOPIC", "finance-managers"),
			AlertTokens:  getListEnv("FINANCE_ALERT_TOKENS", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendFirestore:
		if c.Firebase.ProjectID == "" && c.Firebase.CredentialsFile == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS_FILE is required when STORE_BACKEND=firestore")
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendFirestore, BackendPostgres, c.Store.Backend)
	}

	switch c.Auth.Provider {
	case AuthProviderJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required")
		}
	case AuthProviderFirebase:
		if c.Firebase.ProjectID == "" && c.Firebase.CredentialsFile == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS_FILE is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("AUTH_PROVIDER must be %q or %q, got %q", AuthProviderJWT, AuthProviderFirebase, c.Auth.Provider)
	}

	if !money.IsValidCurrency(c.Finance.BaseCurrency) {
		return fmt.Errorf("FINANCE_BASE_CURRENCY %q is not an ISO 4217 code", c.Finance.BaseCurrency)
	}
	if c.Finance.Role == "" {
		return fmt.Errorf("FINANCE_ROLE must not be empty")
	}

	for _, t := range c.Scheduler.ScheduleTimes {
		if _, err := time.Parse("15:04", t); err != nil {
			return fmt.Errorf("invalid SCHEDULER_TIMES entry %q: %w", t, err)
		}
	}

	// Validate TLS configuration
	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

// getListEnv splits a comma-separated variable, dropping blank entries.
func getListEnv(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
