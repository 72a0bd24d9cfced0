package config

const EnvPrefix = "MEADOWCART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "MEADOWCART_APP_ENV"
	EnvPort       = "MEADOWCART_APP_PORT"
	EnvDBDSN      = "MEADOWCART_DB_DSN"
	EnvDBHost     = "MEADOWCART_DB_HOST"
	EnvDBUser     = "MEADOWCART_DB_USER"
	EnvDBName     = "MEADOWCART_DB_NAME"
	EnvRedisURL   = "MEADOWCART_REDIS_URL"
	EnvJWTSecret  = "MEADOWCART_JWT_SECRET"
	EnvJWTIssuer  = "MEADOWCART_JWT_ISSUER"
	EnvJWTExpMins = "MEADOWCART_JWT_EXPIRATION_MINUTES"
	EnvGCSBucket  = "MEADOWCART_GCS_BUCKET_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
