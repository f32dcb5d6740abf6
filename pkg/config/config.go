package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	RateLimit    RateLimitConfig
	Availability AvailabilityConfig
	Cron         CronConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Availability.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LOFTSTAY_APP_ENV" required:"true"`
	Port         string `envconfig:"LOFTSTAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOFTSTAY_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOFTSTAY_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"LOFTSTAY_LOG_WARN_STACK" default:"false"`
	// MetricsAddr is the listen address for worker /metrics. Empty disables it.
	MetricsAddr string `envconfig:"LOFTSTAY_METRICS_ADDR"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LOFTSTAY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LOFTSTAY_DB_DSN"`
	Driver string `envconfig:"LOFTSTAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOFTSTAY_DB_HOST"`
	LegacyPort     int    `envconfig:"LOFTSTAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOFTSTAY_DB_USER"`
	LegacyPassword string `envconfig:"LOFTSTAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOFTSTAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOFTSTAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOFTSTAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOFTSTAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOFTSTAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOFTSTAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"LOFTSTAY_DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
	TxAttempts         int           `envconfig:"LOFTSTAY_DB_TX_ATTEMPTS" default:"3"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"LOFTSTAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOFTSTAY_REDIS_ADDR"`
	Password     string        `envconfig:"LOFTSTAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOFTSTAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOFTSTAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOFTSTAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOFTSTAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOFTSTAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOFTSTAY_REDIS_WRITE_TIMEOUT" default:"5s"`
	Namespace    string        `envconfig:"LOFTSTAY_REDIS_NAMESPACE" default:"ls"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LOFTSTAY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LOFTSTAY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LOFTSTAY_JWT_EXPIRATION_MINUTES" default:"60"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LOFTSTAY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LOFTSTAY_AUTO_MIGRATE" default:"false"`
}

// RateLimitConfig throttles reservation lock creation per client IP and per user.
type RateLimitConfig struct {
	LockWindow    time.Duration `envconfig:"LOFTSTAY_RATE_LIMIT_LOCK_WINDOW" default:"1m"`
	LockIPLimit   int           `envconfig:"LOFTSTAY_RATE_LIMIT_LOCK_IP_LIMIT" default:"30"`
	LockUserLimit int           `envconfig:"LOFTSTAY_RATE_LIMIT_LOCK_USER_LIMIT" default:"10"`
}

// AvailabilityConfig holds the booking rules shared by the availability,
// pricing and lock services.
type AvailabilityConfig struct {
	BookingHorizonMonths int           `envconfig:"LOFTSTAY_BOOKING_HORIZON_MONTHS" default:"24"`
	LockTTL              time.Duration `envconfig:"LOFTSTAY_RESERVATION_LOCK_TTL" default:"15m"`
	ServiceFeeRate       string        `envconfig:"LOFTSTAY_SERVICE_FEE_RATE" default:"0.12"`
	Currency             string        `envconfig:"LOFTSTAY_CURRENCY" default:"EUR"`
	MaxCalendarDays      int           `envconfig:"LOFTSTAY_MAX_CALENDAR_DAYS" default:"366"`
}

// FeeRate returns the parsed service fee rate.
func (a AvailabilityConfig) FeeRate() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(a.ServiceFeeRate))
	if err != nil {
		return decimal.Zero
	}
	return rate
}

func (a AvailabilityConfig) validate() error {
	if a.BookingHorizonMonths <= 0 {
		return fmt.Errorf("%s must be positive", EnvBookingHorizonMonths)
	}
	if a.LockTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvReservationLockTTL)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(a.ServiceFeeRate))
	if err != nil {
		return fmt.Errorf("%s: %w", EnvServiceFeeRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be in [0, 1)", EnvServiceFeeRate)
	}
	if strings.TrimSpace(a.Currency) == "" {
		return fmt.Errorf("%s is required", EnvCurrency)
	}
	return nil
}

type CronConfig struct {
	Interval time.Duration `envconfig:"LOFTSTAY_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"LOFTSTAY_CRON_LOCK_TTL" default:"10m"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"LOFTSTAY_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"LOFTSTAY_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"LOFTSTAY_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	ReservationsTopic        string `envconfig:"LOFTSTAY_PUBSUB_RESERVATIONS_TOPIC" default:"ls-reservation-events"`
	ReservationsSubscription string `envconfig:"LOFTSTAY_PUBSUB_RESERVATIONS_SUBSCRIPTION" default:"ls-reservation-events-availability"`
	MaxOutstandingMessages   int    `envconfig:"LOFTSTAY_PUBSUB_MAX_OUTSTANDING_MESSAGES" default:"100"`
	NumGoroutines            int    `envconfig:"LOFTSTAY_PUBSUB_NUM_GOROUTINES" default:"2"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:loftstay.db?cache=shared"
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
