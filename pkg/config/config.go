package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SHOPYARD"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "SHOPYARD_APP_ENV"
	EnvPort   = "SHOPYARD_APP_PORT"
	EnvDBDSN  = "SHOPYARD_DB_DSN"
	EnvDBHost = "SHOPYARD_DB_HOST"
	EnvDBUser = "SHOPYARD_DB_USER"
	EnvDBName = "SHOPYARD_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Admin        AdminConfig
	Orders       OrdersConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPYARD_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPYARD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPYARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPYARD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPYARD_DB_DSN"`
	Driver string `envconfig:"SHOPYARD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPYARD_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPYARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPYARD_DB_USER"`
	LegacyPassword string `envconfig:"SHOPYARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPYARD_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPYARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPYARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPYARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPYARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPYARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPYARD_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPYARD_JWT_ISSUER" default:"shopyard"`
	ExpirationMinutes int    `envconfig:"SHOPYARD_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token TTL configured in minutes.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPYARD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPYARD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPYARD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPYARD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPYARD_ARGON_KEY_LEN" default:"32"`
}

type AdminConfig struct {
	// Password seeds the "admin" account at startup when it does not exist
	// yet. Empty skips seeding.
	Password string `envconfig:"SHOPYARD_ADMIN_PASSWORD"`
	FullName string `envconfig:"SHOPYARD_ADMIN_FULL_NAME" default:"Administrator"`
}

type OrdersConfig struct {
	CancelTokenLength int `envconfig:"SHOPYARD_CANCEL_TOKEN_LENGTH" default:"24"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"SHOPYARD_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"SHOPYARD_SQLITE_PATH" default:"shopyard.db"`
	AutoMigrate bool   `envconfig:"SHOPYARD_AUTO_MIGRATE" default:"true"`
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
