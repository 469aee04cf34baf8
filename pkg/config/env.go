package config

// EnvPrefix namespaces every configuration variable read by envconfig.
const EnvPrefix = "ORDERHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "ORDERHUB_APP_ENV"
	EnvPort       = "ORDERHUB_APP_PORT"
	EnvDBDSN      = "ORDERHUB_DB_DSN"
	EnvDBHost     = "ORDERHUB_DB_HOST"
	EnvDBUser     = "ORDERHUB_DB_USER"
	EnvDBName     = "ORDERHUB_DB_NAME"
	EnvRedisURL   = "ORDERHUB_REDIS_URL"
	EnvJWTSecret  = "ORDERHUB_JWT_SECRET"
	EnvJWTIssuer  = "ORDERHUB_JWT_ISSUER"
	EnvJWTExpMins = "ORDERHUB_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
