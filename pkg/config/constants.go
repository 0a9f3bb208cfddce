package config

// EnvPrefix is passed to envconfig; explicit envconfig tags on each field
// keep variable names stable regardless of struct layout.
const EnvPrefix = "TRAVORA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names, centralized so tests and error messages stay
// in sync with the struct tags.
const (
	EnvAppEnv   = "TRAVORA_APP_ENV"
	EnvPort     = "TRAVORA_APP_PORT"
	EnvLogLevel = "TRAVORA_LOG_LEVEL"

	EnvDBDSN  = "TRAVORA_DB_DSN"
	EnvDBHost = "TRAVORA_DB_HOST"
	EnvDBUser = "TRAVORA_DB_USER"
	EnvDBName = "TRAVORA_DB_NAME"

	EnvRedisURL = "TRAVORA_REDIS_URL"

	EnvJWTSecret  = "TRAVORA_JWT_SECRET"
	EnvJWTIssuer  = "TRAVORA_JWT_ISSUER"
	EnvJWTExpMins = "TRAVORA_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "TRAVORA_GCP_PROJECT_ID"

	EnvPubSubNotificationTopic = "TRAVORA_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubDeliverySub       = "TRAVORA_PUBSUB_DELIVERY_SUBSCRIPTION"
	EnvPubSubAnalyticsSub      = "TRAVORA_PUBSUB_ANALYTICS_SUBSCRIPTION"
)

// legacyDBEnvVars are the discrete connection variables accepted when
// TRAVORA_DB_DSN is unset.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
