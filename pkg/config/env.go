package config

// EnvPrefix is handed to envconfig; every field carries its full variable name.
const EnvPrefix = "BOOKVERSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:bookverse.db?cache=shared"
)

const (
	EnvAppEnv    = "BOOKVERSE_APP_ENV"
	EnvPort      = "BOOKVERSE_APP_PORT"
	EnvLogFormat = "BOOKVERSE_LOG_FORMAT"

	EnvDBDSN    = "BOOKVERSE_DB_DSN"
	EnvDBDriver = "BOOKVERSE_DB_DRIVER"
	EnvDBHost   = "BOOKVERSE_DB_HOST"
	EnvDBUser   = "BOOKVERSE_DB_USER"
	EnvDBName   = "BOOKVERSE_DB_NAME"

	EnvRedisURL = "BOOKVERSE_REDIS_URL"

	EnvJWTSecret  = "BOOKVERSE_JWT_SECRET"
	EnvJWTIssuer  = "BOOKVERSE_JWT_ISSUER"
	EnvJWTExpMins = "BOOKVERSE_JWT_EXPIRATION_MINUTES"

	EnvCheckoutCountryCode     = "BOOKVERSE_CHECKOUT_COUNTRY_CODE"
	EnvCheckoutBorrowFee       = "BOOKVERSE_CHECKOUT_BORROW_FEE_MINOR"
	EnvCheckoutBorrowDuration  = "BOOKVERSE_CHECKOUT_BORROW_DURATION_DAYS"
	EnvCheckoutProviderTimeout = "BOOKVERSE_CHECKOUT_PROVIDER_TIMEOUT"

	EnvPaymentsGateway = "BOOKVERSE_PAYMENTS_GATEWAY"
	EnvAdminUsers      = "BOOKVERSE_ADMIN_USERS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
