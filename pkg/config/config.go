package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "PARTSMARKET"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PARTSMARKET_DB_DSN"
	EnvDBHost = "PARTSMARKET_DB_HOST"
	EnvDBUser = "PARTSMARKET_DB_USER"
	EnvDBName = "PARTSMARKET_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	RateLimit    RateLimitConfig
	Checkout     CheckoutConfig
	Quotes       QuotesConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PARTSMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"PARTSMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PARTSMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PARTSMARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PARTSMARKET_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PARTSMARKET_DB_DSN"`
	Driver string `envconfig:"PARTSMARKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PARTSMARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"PARTSMARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PARTSMARKET_DB_USER"`
	LegacyPassword string `envconfig:"PARTSMARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"PARTSMARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"PARTSMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PARTSMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PARTSMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PARTSMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PARTSMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PARTSMARKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PARTSMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"PARTSMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"PARTSMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PARTSMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PARTSMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PARTSMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PARTSMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PARTSMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PARTSMARKET_AUTO_MIGRATE" default:"false"`
}

type RateLimitConfig struct {
	CheckoutWindow       time.Duration `envconfig:"PARTSMARKET_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutIPLimit      int           `envconfig:"PARTSMARKET_RATE_LIMIT_CHECKOUT_IP_LIMIT" default:"30"`
	CheckoutSessionLimit int           `envconfig:"PARTSMARKET_RATE_LIMIT_CHECKOUT_SESSION_LIMIT" default:"10"`
}

type CheckoutConfig struct {
	FlatShippingRate decimal.Decimal `envconfig:"PARTSMARKET_FLAT_SHIPPING_RATE" default:"0"`
}

type QuotesConfig struct {
	DefaultExpiryDays int `envconfig:"PARTSMARKET_QUOTE_EXPIRY_DAYS" default:"30"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PARTSMARKET_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"PARTSMARKET_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"PARTSMARKET_PUBSUB_DOMAIN_TOPIC" default:"pm-domain-events"`
	DomainSubscription string `envconfig:"PARTSMARKET_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PARTSMARKET_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PARTSMARKET_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PARTSMARKET_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"PARTSMARKET_OUTBOX_RETENTION_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
