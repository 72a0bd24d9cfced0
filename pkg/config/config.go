package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Stripe   StripeConfig
	GCS      GCSConfig
	Checkout CheckoutConfig
	Flags    FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEADOWCART_APP_ENV" required:"true"`
	Port         string `envconfig:"MEADOWCART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEADOWCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEADOWCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEADOWCART_DB_DSN"`
	Driver string `envconfig:"MEADOWCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEADOWCART_DB_HOST"`
	LegacyPort     int    `envconfig:"MEADOWCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEADOWCART_DB_USER"`
	LegacyPassword string `envconfig:"MEADOWCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEADOWCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEADOWCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEADOWCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEADOWCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEADOWCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEADOWCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEADOWCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEADOWCART_REDIS_ADDR"`
	Password     string        `envconfig:"MEADOWCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEADOWCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEADOWCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEADOWCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEADOWCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEADOWCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEADOWCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEADOWCART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEADOWCART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEADOWCART_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MEADOWCART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MEADOWCART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MEADOWCART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MEADOWCART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MEADOWCART_ARGON_KEY_LEN" default:"32"`
}

type StripeConfig struct {
	APIKey string `envconfig:"MEADOWCART_STRIPE_API_KEY"`
	Env    string `envconfig:"MEADOWCART_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type GCSConfig struct {
	BucketName        string        `envconfig:"MEADOWCART_GCS_BUCKET_NAME"`
	UploadURLExpiry   time.Duration `envconfig:"MEADOWCART_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"MEADOWCART_GCS_DOWNLOAD_URL_EXPIRY" default:"24h"`
}

type CheckoutConfig struct {
	Currency       string        `envconfig:"MEADOWCART_CHECKOUT_CURRENCY" default:"gbp"`
	ShippingFee    string        `envconfig:"MEADOWCART_CHECKOUT_SHIPPING_FEE" default:"5.99"`
	CartSessionTTL time.Duration `envconfig:"MEADOWCART_CART_SESSION_TTL" default:"720h"`
}

// ShippingFeeAmount parses the configured flat shipping fee.
func (c CheckoutConfig) ShippingFeeAmount() decimal.Decimal {
	fee, err := decimal.NewFromString(strings.TrimSpace(c.ShippingFee))
	if err != nil {
		return decimal.Zero
	}
	return fee
}

func (c CheckoutConfig) validate() error {
	fee, err := decimal.NewFromString(strings.TrimSpace(c.ShippingFee))
	if err != nil {
		return fmt.Errorf("parsing shipping fee %q: %w", c.ShippingFee, err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("shipping fee must be non-negative, got %s", fee)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("currency must be a three-letter code, got %q", c.Currency)
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEADOWCART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEADOWCART_AUTO_MIGRATE" default:"false"`
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
