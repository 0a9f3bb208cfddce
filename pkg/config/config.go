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
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Delivery     DeliveryConfig
	Push         PushConfig
	Functions    FunctionsConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRAVORA_APP_ENV" required:"true"`
	Port         string `envconfig:"TRAVORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRAVORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRAVORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TRAVORA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TRAVORA_DB_DSN"`
	Driver string `envconfig:"TRAVORA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRAVORA_DB_HOST"`
	LegacyPort     int    `envconfig:"TRAVORA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRAVORA_DB_USER"`
	LegacyPassword string `envconfig:"TRAVORA_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRAVORA_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRAVORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRAVORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRAVORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRAVORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRAVORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRAVORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRAVORA_REDIS_ADDR"`
	Password     string        `envconfig:"TRAVORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRAVORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRAVORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRAVORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRAVORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRAVORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRAVORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TRAVORA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TRAVORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TRAVORA_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"TRAVORA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TRAVORA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TRAVORA_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"TRAVORA_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TRAVORA_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"TRAVORA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TRAVORA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"TRAVORA_PUBSUB_NOTIFICATION_TOPIC" default:"tv-notification-events"`
	DeliverySubscription     string `envconfig:"TRAVORA_PUBSUB_DELIVERY_SUBSCRIPTION" required:"true"`
	AnalyticsSubscription    string `envconfig:"TRAVORA_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
	NotificationSubscription string `envconfig:"TRAVORA_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset                string `envconfig:"TRAVORA_BIGQUERY_DATASET" default:"travora"`
	DeliveryFactsTable     string `envconfig:"TRAVORA_BIGQUERY_DELIVERY_TABLE" default:"notification_delivery_facts"`
	MarketplaceEventsTable string `envconfig:"TRAVORA_BIGQUERY_MARKETPLACE_TABLE" default:"marketplace_events"`
	AdEventsTable          string `envconfig:"TRAVORA_BIGQUERY_AD_TABLE" default:"ad_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TRAVORA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TRAVORA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TRAVORA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// DeliveryConfig tunes the in-process delivery queue. The per-priority
// delays stagger initial sends so high priority notifications go out first.
type DeliveryConfig struct {
	HighDelay    time.Duration `envconfig:"TRAVORA_DELIVERY_HIGH_DELAY" default:"1s"`
	MediumDelay  time.Duration `envconfig:"TRAVORA_DELIVERY_MEDIUM_DELAY" default:"15s"`
	LowDelay     time.Duration `envconfig:"TRAVORA_DELIVERY_LOW_DELAY" default:"60s"`
	MaxAttempts  int           `envconfig:"TRAVORA_DELIVERY_MAX_ATTEMPTS" default:"3"`
	PollInterval time.Duration `envconfig:"TRAVORA_DELIVERY_POLL_INTERVAL" default:"5s"`
	SendTimeout  time.Duration `envconfig:"TRAVORA_DELIVERY_SEND_TIMEOUT" default:"10s"`
	RecoverLimit int           `envconfig:"TRAVORA_DELIVERY_RECOVER_LIMIT" default:"500"`
}

// PushConfig points at the Expo push gateway used for mobile push sends.
type PushConfig struct {
	BaseURL   string        `envconfig:"TRAVORA_PUSH_BASE_URL" default:"https://exp.host/--/api/v2"`
	AuthToken string        `envconfig:"TRAVORA_PUSH_AUTH_TOKEN"`
	Timeout   time.Duration `envconfig:"TRAVORA_PUSH_TIMEOUT" default:"10s"`
}

// FunctionsConfig points at the hosted function endpoint that renders and
// sends email notifications.
type FunctionsConfig struct {
	BaseURL    string        `envconfig:"TRAVORA_FUNCTIONS_BASE_URL"`
	ServiceKey string        `envconfig:"TRAVORA_FUNCTIONS_SERVICE_KEY"`
	Timeout    time.Duration `envconfig:"TRAVORA_FUNCTIONS_TIMEOUT" default:"15s"`
}

type CronConfig struct {
	NotificationRetentionDays int           `envconfig:"TRAVORA_CRON_NOTIFICATION_RETENTION_DAYS" default:"90"`
	MuteSweepInterval         time.Duration `envconfig:"TRAVORA_CRON_MUTE_SWEEP_INTERVAL" default:"10m"`
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
