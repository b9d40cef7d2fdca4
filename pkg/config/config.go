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
	Catalog       CatalogConfig
	CORS          CORSConfig
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
	Env          string `envconfig:"EPS_APP_ENV" required:"true"`
	Port         string `envconfig:"EPS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EPS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"EPS_DB_DSN"`

	LegacyHost     string `envconfig:"EPS_DB_HOST"`
	LegacyPort     int    `envconfig:"EPS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EPS_DB_USER"`
	LegacyPassword string `envconfig:"EPS_DB_PASSWORD"`
	LegacyName     string `envconfig:"EPS_DB_NAME"`
	LegacySSLMode  string `envconfig:"EPS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EPS_REDIS_URL"`
	Address      string        `envconfig:"EPS_REDIS_ADDR"`
	Password     string        `envconfig:"EPS_REDIS_PASSWORD"`
	DB           int           `envconfig:"EPS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EPS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"EPS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"EPS_JWT_ISSUER" default:"eps-storefront"`
	ExpirationMinutes int    `envconfig:"EPS_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EPS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EPS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EPS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EPS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EPS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"EPS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"EPS_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"EPS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"EPS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"EPS_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"EPS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EPS_AUTO_MIGRATE" default:"false"`
}

type CatalogConfig struct {
	DefaultPageSize int `envconfig:"EPS_CATALOG_DEFAULT_PAGE_SIZE" default:"12"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"EPS_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
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
