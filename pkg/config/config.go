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
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Identity     IdentityConfig
	Storefront   StorefrontConfig
	Listings     ListingsConfig
	Contacts     ContactsConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GoogleMaps   GoogleMapsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Identity.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storefront.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env               string        `envconfig:"ELAROSE_APP_ENV" required:"true"`
	Port              string        `envconfig:"ELAROSE_APP_PORT" default:"8080"`
	LogLevel          string        `envconfig:"ELAROSE_LOG_LEVEL" default:"info"`
	LogWarnStack      bool          `envconfig:"ELAROSE_LOG_WARN_STACK" default:"false"`
	AllowedOrigins    []string      `envconfig:"ELAROSE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout   time.Duration `envconfig:"ELAROSE_SHUTDOWN_TIMEOUT" default:"15s"`
	ReadHeaderTimeout time.Duration `envconfig:"ELAROSE_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `envconfig:"ELAROSE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout      time.Duration `envconfig:"ELAROSE_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `envconfig:"ELAROSE_HTTP_IDLE_TIMEOUT" default:"60s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ELAROSE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN        string `envconfig:"ELAROSE_DB_DSN"`
	SQLitePath string `envconfig:"ELAROSE_DB_SQLITE_PATH" default:"elarose.db"`

	Host     string `envconfig:"ELAROSE_DB_HOST"`
	Port     int    `envconfig:"ELAROSE_DB_PORT" default:"5432"`
	User     string `envconfig:"ELAROSE_DB_USER"`
	Password string `envconfig:"ELAROSE_DB_PASSWORD"`
	Name     string `envconfig:"ELAROSE_DB_NAME"`
	SSLMode  string `envconfig:"ELAROSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ELAROSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ELAROSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ELAROSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ELAROSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ELAROSE_REDIS_URL"`
	Address      string        `envconfig:"ELAROSE_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"ELAROSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ELAROSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ELAROSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ELAROSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ELAROSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ELAROSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ELAROSE_REDIS_WRITE_TIMEOUT" default:"5s"`
	// SlotTTL bounds how long an idle cart/wishlist slot survives. Zero keeps slots forever.
	SlotTTL time.Duration `envconfig:"ELAROSE_REDIS_SLOT_TTL" default:"720h"`
}

type IdentityConfig struct {
	Provider            string   `envconfig:"ELAROSE_IDENTITY_PROVIDER" default:"jwt"`
	JWTSecret           string   `envconfig:"ELAROSE_JWT_SECRET"`
	JWTIssuer           string   `envconfig:"ELAROSE_JWT_ISSUER" default:"elarose-identity"`
	FirebaseProjectID   string   `envconfig:"ELAROSE_FIREBASE_PROJECT_ID"`
	FirebaseCredentials string   `envconfig:"ELAROSE_FIREBASE_CREDENTIALS_FILE"`
	AdminRoleClaim      string   `envconfig:"ELAROSE_IDENTITY_ROLE_CLAIM" default:"role"`
	AdminEmails         []string `envconfig:"ELAROSE_IDENTITY_ADMIN_EMAILS"`
}

func (i IdentityConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(i.Provider)) {
	case IdentityProviderJWT:
		if i.JWTSecret == "" {
			return fmt.Errorf("%s is required when identity provider is %q", EnvJWTSecret, IdentityProviderJWT)
		}
	case IdentityProviderFirebase:
		if i.FirebaseProjectID == "" {
			return fmt.Errorf("%s is required when identity provider is %q", EnvFirebaseProjectID, IdentityProviderFirebase)
		}
	default:
		return fmt.Errorf("unsupported identity provider %q", i.Provider)
	}
	return nil
}

// StorefrontConfig holds the pricing policy applied to every cart quote.
type StorefrontConfig struct {
	Currency              string  `envconfig:"ELAROSE_CURRENCY" default:"USD"`
	TaxRate               float64 `envconfig:"ELAROSE_TAX_RATE" default:"0.08"`
	FreeShippingThreshold float64 `envconfig:"ELAROSE_FREE_SHIPPING_THRESHOLD" default:"100"`
	ShippingFee           float64 `envconfig:"ELAROSE_SHIPPING_FEE" default:"9.99"`
	CatalogPageSize       int     `envconfig:"ELAROSE_CATALOG_PAGE_SIZE" default:"12"`
	CatalogMaxPageSize    int     `envconfig:"ELAROSE_CATALOG_MAX_PAGE_SIZE" default:"60"`
}

func (s StorefrontConfig) validate() error {
	if s.TaxRate < 0 || s.TaxRate >= 1 {
		return fmt.Errorf("%s must be within [0, 1)", EnvTaxRate)
	}
	if s.FreeShippingThreshold < 0 || s.ShippingFee < 0 {
		return fmt.Errorf("shipping settings must not be negative")
	}
	return nil
}

func (s StorefrontConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.TaxRate)
}

func (s StorefrontConfig) FreeShippingThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.FreeShippingThreshold)
}

func (s StorefrontConfig) ShippingFeeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.ShippingFee)
}

type ListingsConfig struct {
	DatasetPath     string `envconfig:"ELAROSE_LISTINGS_DATASET" default:"data/listings.json"`
	GeocodeMissing  bool   `envconfig:"ELAROSE_LISTINGS_GEOCODE_MISSING" default:"false"`
	DefaultPageSize int    `envconfig:"ELAROSE_LISTINGS_PAGE_SIZE" default:"9"`
}

type ContactsConfig struct {
	RateLimitWindow time.Duration `envconfig:"ELAROSE_CONTACTS_RATE_LIMIT_WINDOW" default:"10m"`
	RateLimitIP     int           `envconfig:"ELAROSE_CONTACTS_RATE_LIMIT_IP" default:"5"`
	RateLimitEmail  int           `envconfig:"ELAROSE_CONTACTS_RATE_LIMIT_EMAIL" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"ELAROSE_USE_SQLITE" default:"false"`
	AutoMigrate    bool `envconfig:"ELAROSE_AUTO_MIGRATE" default:"false"`
	RenderInvoices bool `envconfig:"ELAROSE_FEATURE_RENDER_INVOICES" default:"true"`
}

type EventingConfig struct {
	IdempotencyTTL  time.Duration `envconfig:"ELAROSE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
	HTTPIdempotency time.Duration `envconfig:"ELAROSE_HTTP_IDEMPOTENCY_TTL" default:"24h"`
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"ELAROSE_GOOGLE_MAPS_API_KEY"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ELAROSE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ELAROSE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ELAROSE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"ELAROSE_PUBSUB_ORDERS_TOPIC" default:"elarose-order-events"`
	OrdersSubscription string `envconfig:"ELAROSE_PUBSUB_ORDERS_SUBSCRIPTION" default:"elarose-order-events-invoices"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ELAROSE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ELAROSE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ELAROSE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"ELAROSE_CRON_INTERVAL" default:"15m"`
	LockTTL         time.Duration `envconfig:"ELAROSE_CRON_LOCK_TTL" default:"5m"`
	OutboxRetention time.Duration `envconfig:"ELAROSE_CRON_OUTBOX_RETENTION" default:"720h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
