package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Dashboard     DashboardConfig
	OpenAI        OpenAIConfig
	GCP           GCPConfig
	BigQuery      BigQueryConfig
	PubSub        PubSubConfig
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
	Env          string   `envconfig:"AGENCYPULSE_APP_ENV" required:"true"`
	Port         string   `envconfig:"AGENCYPULSE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"AGENCYPULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"AGENCYPULSE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"AGENCYPULSE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGENCYPULSE_DB_DSN"`
	Driver string `envconfig:"AGENCYPULSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGENCYPULSE_DB_HOST"`
	LegacyPort     int    `envconfig:"AGENCYPULSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGENCYPULSE_DB_USER"`
	LegacyPassword string `envconfig:"AGENCYPULSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGENCYPULSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGENCYPULSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGENCYPULSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGENCYPULSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGENCYPULSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGENCYPULSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGENCYPULSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AGENCYPULSE_REDIS_ADDR"`
	Password     string        `envconfig:"AGENCYPULSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGENCYPULSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGENCYPULSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGENCYPULSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGENCYPULSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGENCYPULSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGENCYPULSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AGENCYPULSE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AGENCYPULSE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AGENCYPULSE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"AGENCYPULSE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AGENCYPULSE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AGENCYPULSE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AGENCYPULSE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AGENCYPULSE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AGENCYPULSE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"AGENCYPULSE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"AGENCYPULSE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"AGENCYPULSE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AGENCYPULSE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AGENCYPULSE_AUTO_MIGRATE" default:"false"`
}

// DashboardConfig tunes KPI snapshot caching and composition.
type DashboardConfig struct {
	CacheTTL        time.Duration `envconfig:"AGENCYPULSE_DASHBOARD_CACHE_TTL" default:"5m"`
	StaleGrace      time.Duration `envconfig:"AGENCYPULSE_DASHBOARD_STALE_GRACE" default:"1h"`
	ComposeTimeout  time.Duration `envconfig:"AGENCYPULSE_DASHBOARD_COMPOSE_TIMEOUT" default:"30s"`
	MaxRangeDays    int           `envconfig:"AGENCYPULSE_DASHBOARD_MAX_RANGE_DAYS" default:"366"`
	DefaultTimezone string        `envconfig:"AGENCYPULSE_DASHBOARD_TIMEZONE" default:"UTC"`
}

type OpenAIConfig struct {
	APIKey  string        `envconfig:"AGENCYPULSE_OPENAI_API_KEY"`
	Model   string        `envconfig:"AGENCYPULSE_OPENAI_MODEL" default:"gpt-4o-mini"`
	BaseURL string        `envconfig:"AGENCYPULSE_OPENAI_BASE_URL"`
	Timeout time.Duration `envconfig:"AGENCYPULSE_OPENAI_TIMEOUT" default:"60s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AGENCYPULSE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AGENCYPULSE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AGENCYPULSE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type BigQueryConfig struct {
	Dataset        string `envconfig:"AGENCYPULSE_BIGQUERY_DATASET" default:"agencypulse"`
	WebEventsTable string `envconfig:"AGENCYPULSE_BIGQUERY_WEB_EVENTS_TABLE" default:"web_events"`
}

type PubSubConfig struct {
	AuditTopic        string `envconfig:"AGENCYPULSE_PUBSUB_AUDIT_TOPIC" default:"ap-audit-events"`
	AuditSubscription string `envconfig:"AGENCYPULSE_PUBSUB_AUDIT_SUBSCRIPTION"`
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
