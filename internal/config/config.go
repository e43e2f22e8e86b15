package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Xero     XeroConfig     `env:",prefix=XERO_"`
	Identity IdentityConfig `env:",prefix=IDENTITY_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Frontend FrontendConfig `env:",prefix=FRONTEND_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=30s"`

	// TrustedProxies lists proxy CIDRs whose X-Forwarded-For is honoured
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

type PostgresConfig struct {
	Host        string `env:"HOST,default=localhost"`
	Port        string `env:"PORT,default=5432"`
	User        string `env:"USER,default=jobdesk"`
	Password    string `env:"PASSWORD,default=jobdesk_password"`
	DBName      string `env:"DB,default=jobdesk_db"`
	SSLMode     string `env:"SSLMODE,default=disable"`
	AutoMigrate bool   `env:"AUTO_MIGRATE,default=true"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// XeroConfig holds provider endpoints and account defaults. Client credentials
// are per user and live in the token store, not here.
type XeroConfig struct {
	AuthURL             string   `env:"AUTH_URL,default=https://login.xero.com/identity/connect/authorize"`
	TokenURL            string   `env:"TOKEN_URL,default=https://identity.xero.com/connect/token"`
	RevocationURL       string   `env:"REVOCATION_URL,default=https://identity.xero.com/connect/revocation"`
	ConnectionsURL      string   `env:"CONNECTIONS_URL,default=https://api.xero.com/connections"`
	APIBaseURL          string   `env:"API_BASE_URL,default=https://api.xero.com/api.xro/2.0"`
	RedirectURL         string   `env:"REDIRECT_URL,default=http://localhost:8080/api/xero/callback"`
	Scopes              []string `env:"SCOPES,default=openid,profile,email,offline_access,accounting.transactions,accounting.contacts,accounting.settings"`
	StateSecret         string   `env:"STATE_SECRET,required"`
	StateTTL            Duration `env:"STATE_TTL,default=10m"`
	RequestTimeout      Duration `env:"REQUEST_TIMEOUT,default=30s"`
	SalesAccountCode    string   `env:"SALES_ACCOUNT_CODE,default=200"`
	PurchaseAccountCode string   `env:"PURCHASE_ACCOUNT_CODE,default=300"`
}

type IdentityConfig struct {
	GoogleUserInfoURL    string   `env:"GOOGLE_USERINFO_URL,default=https://openidconnect.googleapis.com/v1/userinfo"`
	MicrosoftUserInfoURL string   `env:"MICROSOFT_USERINFO_URL,default=https://graph.microsoft.com/oidc/userinfo"`
	CacheTTL             Duration `env:"CACHE_TTL,default=5m"`
}

type SecurityConfig struct {
	EncryptionKey     string   `env:"ENCRYPTION_KEY,required"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	SyncLockTTL       Duration `env:"SYNC_LOCK_TTL,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,X-Auth-Token,X-Auth-Provider"`
}

type FrontendConfig struct {
	URL string `env:"URL,default=http://localhost:3000"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.Xero.StateSecret) < 32 {
		return nil, fmt.Errorf("XERO_STATE_SECRET must be at least 32 characters long")
	}

	if len(config.Security.EncryptionKey) < 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be at least 32 characters long")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
