package config

const (
	EnvPrefix = "EPS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "EPS_APP_ENV"
	EnvPort       = "EPS_APP_PORT"
	EnvDBDSN      = "EPS_DB_DSN"
	EnvDBHost     = "EPS_DB_HOST"
	EnvDBPort     = "EPS_DB_PORT"
	EnvDBUser     = "EPS_DB_USER"
	EnvDBPassword = "EPS_DB_PASSWORD"
	EnvDBName     = "EPS_DB_NAME"
	EnvRedisURL   = "EPS_REDIS_URL"
	EnvJWTSecret  = "EPS_JWT_SECRET"
	EnvJWTIssuer  = "EPS_JWT_ISSUER"
	EnvJWTExpMins = "EPS_JWT_EXPIRATION_MINUTES"
	EnvPageSize   = "EPS_CATALOG_DEFAULT_PAGE_SIZE"
	EnvCORS       = "EPS_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
