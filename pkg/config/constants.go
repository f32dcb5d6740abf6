package config

const EnvPrefix = "LOFTSTAY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "LOFTSTAY_APP_ENV"
	EnvPort     = "LOFTSTAY_APP_PORT"
	EnvLogLevel = "LOFTSTAY_LOG_LEVEL"

	EnvDBDSN    = "LOFTSTAY_DB_DSN"
	EnvDBDriver = "LOFTSTAY_DB_DRIVER"
	EnvDBHost   = "LOFTSTAY_DB_HOST"
	EnvDBUser   = "LOFTSTAY_DB_USER"
	EnvDBName   = "LOFTSTAY_DB_NAME"

	EnvUseSQLite = "LOFTSTAY_USE_SQLITE"

	EnvRedisURL = "LOFTSTAY_REDIS_URL"

	EnvJWTSecret  = "LOFTSTAY_JWT_SECRET"
	EnvJWTIssuer  = "LOFTSTAY_JWT_ISSUER"
	EnvJWTExpMins = "LOFTSTAY_JWT_EXPIRATION_MINUTES"

	EnvBookingHorizonMonths = "LOFTSTAY_BOOKING_HORIZON_MONTHS"
	EnvReservationLockTTL   = "LOFTSTAY_RESERVATION_LOCK_TTL"
	EnvServiceFeeRate       = "LOFTSTAY_SERVICE_FEE_RATE"
	EnvCurrency             = "LOFTSTAY_CURRENCY"

	EnvCronInterval = "LOFTSTAY_CRON_INTERVAL"

	EnvGCPProjectID         = "LOFTSTAY_GCP_PROJECT_ID"
	EnvPubSubReservationSub = "LOFTSTAY_PUBSUB_RESERVATIONS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
