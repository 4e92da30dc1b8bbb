package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	Payments     PaymentsConfig
	Events       EventsConfig
	Admin        AdminConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"BOOKVERSE_APP_ENV" required:"true"`
	Port         string   `envconfig:"BOOKVERSE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"BOOKVERSE_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"BOOKVERSE_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"BOOKVERSE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"BOOKVERSE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"BOOKVERSE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BOOKVERSE_DB_DSN"`
	Driver string `envconfig:"BOOKVERSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOOKVERSE_DB_HOST"`
	LegacyPort     int    `envconfig:"BOOKVERSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOOKVERSE_DB_USER"`
	LegacyPassword string `envconfig:"BOOKVERSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOOKVERSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOOKVERSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOOKVERSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOOKVERSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOOKVERSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOOKVERSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// UsesSQLite reports whether the local sqlite driver is selected.
func (db DBConfig) UsesSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"BOOKVERSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOOKVERSE_REDIS_ADDR"`
	Password     string        `envconfig:"BOOKVERSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOOKVERSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOOKVERSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOOKVERSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOOKVERSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOOKVERSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOOKVERSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes the tokens issued by the identity provider.
type JWTConfig struct {
	Secret            string `envconfig:"BOOKVERSE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOOKVERSE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BOOKVERSE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BOOKVERSE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BOOKVERSE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"BOOKVERSE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BOOKVERSE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	AnalyticsTopic        string `envconfig:"BOOKVERSE_PUBSUB_ANALYTICS_TOPIC" default:"bookverse-analytics-events"`
	AnalyticsSubscription string `envconfig:"BOOKVERSE_PUBSUB_ANALYTICS_SUBSCRIPTION" default:"bookverse-analytics-worker"`
}

type BigQueryConfig struct {
	Dataset     string `envconfig:"BOOKVERSE_BIGQUERY_DATASET" default:"bookverse"`
	EventsTable string `envconfig:"BOOKVERSE_BIGQUERY_EVENTS_TABLE" default:"storefront_events"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"BOOKVERSE_CART_TTL" default:"720h"`
}

// CheckoutConfig controls pricing and the checkout state machine.
type CheckoutConfig struct {
	CountryCode        string        `envconfig:"BOOKVERSE_CHECKOUT_COUNTRY_CODE" default:"256"`
	Currency           string        `envconfig:"BOOKVERSE_CHECKOUT_CURRENCY" default:"USD"`
	BorrowFeeMinor     int64         `envconfig:"BOOKVERSE_CHECKOUT_BORROW_FEE_MINOR" default:"500"`
	BorrowDurationDays int           `envconfig:"BOOKVERSE_CHECKOUT_BORROW_DURATION_DAYS" default:"14"`
	ProviderTimeout    time.Duration `envconfig:"BOOKVERSE_CHECKOUT_PROVIDER_TIMEOUT" default:"30s"`
	SessionTTL         time.Duration `envconfig:"BOOKVERSE_CHECKOUT_SESSION_TTL" default:"30m"`
	SubmitLockTTL      time.Duration `envconfig:"BOOKVERSE_CHECKOUT_SUBMIT_LOCK_TTL" default:"2m"`
}

func (c CheckoutConfig) validate() error {
	if len(strings.TrimSpace(c.CountryCode)) != 3 {
		return fmt.Errorf("%s must be a 3-digit country code", EnvCheckoutCountryCode)
	}
	if c.BorrowFeeMinor < 0 {
		return fmt.Errorf("%s must be non-negative", EnvCheckoutBorrowFee)
	}
	if c.BorrowDurationDays <= 0 {
		return fmt.Errorf("%s must be positive", EnvCheckoutBorrowDuration)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvCheckoutProviderTimeout)
	}
	return nil
}

// PaymentsConfig selects and tunes the mobile money gateway.
type PaymentsConfig struct {
	Gateway            string        `envconfig:"BOOKVERSE_PAYMENTS_GATEWAY" default:"random"`
	SuccessRate        float64       `envconfig:"BOOKVERSE_PAYMENTS_SUCCESS_RATE" default:"0.9"`
	SimulatedDelay     time.Duration `envconfig:"BOOKVERSE_PAYMENTS_SIMULATED_DELAY" default:"2s"`
	BreakerMaxFailures uint32        `envconfig:"BOOKVERSE_PAYMENTS_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"BOOKVERSE_PAYMENTS_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

type EventsConfig struct {
	QueueSize      int           `envconfig:"BOOKVERSE_EVENTS_QUEUE_SIZE" default:"1024"`
	Workers        int           `envconfig:"BOOKVERSE_EVENTS_WORKERS" default:"2"`
	SinkTimeout    time.Duration `envconfig:"BOOKVERSE_EVENTS_SINK_TIMEOUT" default:"5s"`
	PublishEnabled bool          `envconfig:"BOOKVERSE_EVENTS_PUBLISH_ENABLED" default:"false"`
	DedupeTTL      time.Duration `envconfig:"BOOKVERSE_EVENTS_DEDUPE_TTL" default:"720h"`
	IngestLimit    int64         `envconfig:"BOOKVERSE_EVENTS_INGEST_LIMIT" default:"120"`
	IngestWindow   time.Duration `envconfig:"BOOKVERSE_EVENTS_INGEST_WINDOW" default:"1m"`
}

type AdminConfig struct {
	UserIDs []string `envconfig:"BOOKVERSE_ADMIN_USERS"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"BOOKVERSE_CRON_INTERVAL" default:"15m"`
	OrphanOrderAge  time.Duration `envconfig:"BOOKVERSE_CRON_ORPHAN_ORDER_AGE" default:"1h"`
	OrphanBatchSize int           `envconfig:"BOOKVERSE_CRON_ORPHAN_BATCH_SIZE" default:"200"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.UsesSQLite() {
		db.DSN = defaultSQLiteDSN
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
