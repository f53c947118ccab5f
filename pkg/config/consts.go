package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "AGENCYPULSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "AGENCYPULSE_DB_DSN"
	EnvDBHost = "AGENCYPULSE_DB_HOST"
	EnvDBUser = "AGENCYPULSE_DB_USER"
	EnvDBName = "AGENCYPULSE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
