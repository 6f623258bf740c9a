package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "brewstock"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "BREWSTOCK_DB_DSN"
	EnvDBHost = "BREWSTOCK_DB_HOST"
	EnvDBUser = "BREWSTOCK_DB_USER"
	EnvDBName = "BREWSTOCK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Eventing     EventingConfig
	Reorder      ReorderConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"BREWSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"BREWSTOCK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BREWSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BREWSTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BREWSTOCK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BREWSTOCK_DB_DSN"`
	Driver string `envconfig:"BREWSTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BREWSTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"BREWSTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BREWSTOCK_DB_USER"`
	LegacyPassword string `envconfig:"BREWSTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"BREWSTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"BREWSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BREWSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BREWSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BREWSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BREWSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BREWSTOCK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BREWSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"BREWSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"BREWSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BREWSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BREWSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BREWSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BREWSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BREWSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BREWSTOCK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BREWSTOCK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BREWSTOCK_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BREWSTOCK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BREWSTOCK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BREWSTOCK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BREWSTOCK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BREWSTOCK_ARGON_KEY_LEN" default:"32"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BREWSTOCK_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"BREWSTOCK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BREWSTOCK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	StockTopic        string `envconfig:"BREWSTOCK_PUBSUB_STOCK_TOPIC" default:"bs-stock-events"`
	StockSubscription string `envconfig:"BREWSTOCK_PUBSUB_STOCK_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BREWSTOCK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BREWSTOCK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BREWSTOCK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"BREWSTOCK_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

// ReorderConfig tunes the low-stock trigger.
type ReorderConfig struct {
	// Buffer is added on top of the shortfall when suggesting a reorder
	// quantity: suggested = max(threshold - qty + Buffer, 1).
	Buffer int `envconfig:"BREWSTOCK_REORDER_BUFFER" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BREWSTOCK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BREWSTOCK_AUTO_MIGRATE" default:"false"`
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
