package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samedayramps/ramp-api/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	ApiKey     ApiKeyConfig
	Secrets    SecretsConfig
	Logging    LoggingConfig
	Server     ServerConfig
	CORS       CORSConfig
	Security   SecurityConfig
	RateLimit  RateLimitConfig
	Quote      QuoteConfig
	Stripe     StripeConfig
	Esignature EsignatureConfig
	GoogleMaps GoogleMapsConfig
	Calendar   CalendarConfig
	Email      EmailConfig
	Push       PushConfig
	Jobs       JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

type ApiKeyConfig struct {
	Value string // Loaded from secrets or environment
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// QuoteConfig holds the acceptance token and link settings
type QuoteConfig struct {
	// TokenSecret signs acceptance tokens
	TokenSecret string
	// TokenTTLHours is how long an acceptance link stays valid
	TokenTTLHours int
	// FrontendURL is the customer-facing web app base, used in acceptance links
	FrontendURL string
	// AppBaseURL is this API's public base, used for the manual signing page
	AppBaseURL string
}

type StripeConfig struct {
	APIKey        string
	WebhookSecret string
}

type EsignatureConfig struct {
	// Token authenticates against the esignatures.io API and incoming webhooks
	Token string
	// TemplateID is the rental agreement template
	TemplateID string
}

type GoogleMapsConfig struct {
	APIKey string
}

// CalendarConfig holds Google Calendar OAuth settings. Calendar sync is
// disabled when ClientID is empty.
type CalendarConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
}

// EmailConfig holds outbound SMTP settings
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// PushConfig holds Pushover settings. Push is disabled when AppToken is empty.
type PushConfig struct {
	AppToken string
	UserKey  string
}

// JobsConfig holds cron schedules for background jobs
type JobsConfig struct {
	// AgreementSyncSchedule is the cron expression for the agreement
	// reconciliation sweep
	AgreementSyncSchedule string
	// AgreementSyncEnabled toggles the sweep
	AgreementSyncEnabled bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
	WhitelistIPs      []string
	WhitelistPaths    []string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// TokenTTL returns the acceptance token lifetime as duration
func (q *QuoteConfig) TokenTTL() time.Duration {
	return time.Duration(q.TokenTTLHours) * time.Hour
}

// Enabled reports whether calendar sync is configured
func (c *CalendarConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Enabled reports whether push notifications are configured
func (p *PushConfig) Enabled() bool {
	return p.AppToken != "" && p.UserKey != ""
}

// Load loads configuration from file and environment variables.
// This is a basic load that doesn't fetch secrets from vault.
// Use LoadWithSecrets for full secret resolution.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	// Read from config file
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Vendor credentials default to flat env vars when not set through nested keys
	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Quote.TokenSecret == "" {
		cfg.Quote.TokenSecret = v.GetString("QUOTE_TOKEN_SECRET")
	}
	if cfg.Stripe.APIKey == "" {
		cfg.Stripe.APIKey = v.GetString("STRIPE_API_KEY")
	}
	if cfg.Stripe.WebhookSecret == "" {
		cfg.Stripe.WebhookSecret = v.GetString("STRIPE_WEBHOOK_SECRET")
	}
	if cfg.Esignature.Token == "" {
		cfg.Esignature.Token = v.GetString("ESIGNATURES_TOKEN")
	}
	if cfg.Esignature.TemplateID == "" {
		cfg.Esignature.TemplateID = v.GetString("ESIGNATURES_TEMPLATE_ID")
	}
	if cfg.GoogleMaps.APIKey == "" {
		cfg.GoogleMaps.APIKey = v.GetString("GOOGLE_MAPS_API_KEY")
	}
	if cfg.Push.AppToken == "" {
		cfg.Push.AppToken = v.GetString("PUSHOVER_APP_TOKEN")
	}
	if cfg.Push.UserKey == "" {
		cfg.Push.UserKey = v.GetString("PUSHOVER_USER_KEY")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the
// configured source. In development (or when secrets.source = "environment"),
// secrets come from env vars. In staging/production (or when secrets.source =
// "vault"), vendor credentials come from Azure Key Vault.
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	if !provider.IsVaultEnabled() {
		return nil, fmt.Errorf("vault provider not enabled despite USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Loading secrets from Azure Key Vault")

	// Database credentials
	if host, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	if user, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-USER", "DATABASE_USER"); err == nil && user != "" {
		cfg.Database.User = user
	}
	if password, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	// Vendor credentials
	if apiKey, err := provider.GetSecretOrEnv(ctx, "admin-api-key", "ADMIN_API_KEY"); err == nil && apiKey != "" {
		cfg.ApiKey.Value = apiKey
	}
	if secret, err := provider.GetSecretOrEnv(ctx, "quote-token-secret", "QUOTE_TOKEN_SECRET"); err == nil && secret != "" {
		cfg.Quote.TokenSecret = secret
	}
	if key, err := provider.GetSecretOrEnv(ctx, "stripe-api-key", "STRIPE_API_KEY"); err == nil && key != "" {
		cfg.Stripe.APIKey = key
	}
	if secret, err := provider.GetSecretOrEnv(ctx, "stripe-webhook-secret", "STRIPE_WEBHOOK_SECRET"); err == nil && secret != "" {
		cfg.Stripe.WebhookSecret = secret
	}
	if token, err := provider.GetSecretOrEnv(ctx, "esignatures-token", "ESIGNATURES_TOKEN"); err == nil && token != "" {
		cfg.Esignature.Token = token
	}
	if key, err := provider.GetSecretOrEnv(ctx, "google-maps-api-key", "GOOGLE_MAPS_API_KEY"); err == nil && key != "" {
		cfg.GoogleMaps.APIKey = key
	}
	if secret, err := provider.GetSecretOrEnv(ctx, "google-calendar-client-secret", "CALENDAR_CLIENTSECRET"); err == nil && secret != "" {
		cfg.Calendar.ClientSecret = secret
	}
	if token, err := provider.GetSecretOrEnv(ctx, "google-calendar-refresh-token", "CALENDAR_REFRESHTOKEN"); err == nil && token != "" {
		cfg.Calendar.RefreshToken = token
	}
	if password, err := provider.GetSecretOrEnv(ctx, "smtp-password", "EMAIL_PASSWORD"); err == nil && password != "" {
		cfg.Email.Password = password
	}
	if token, err := provider.GetSecretOrEnv(ctx, "pushover-app-token", "PUSHOVER_APP_TOKEN"); err == nil && token != "" {
		cfg.Push.AppToken = token
	}
	if key, err := provider.GetSecretOrEnv(ctx, "pushover-user-key", "PUSHOVER_USER_KEY"); err == nil && key != "" {
		cfg.Push.UserKey = key
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Ramp Rental API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "ramprental")
	v.SetDefault("database.user", "ramp_user")
	v.SetDefault("database.password", "ramp_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// Quote defaults
	v.SetDefault("quote.tokenTTLHours", 24)
	v.SetDefault("quote.frontendURL", "http://localhost:3000")
	v.SetDefault("quote.appBaseURL", "http://localhost:8080")

	// Email defaults
	v.SetDefault("email.host", "localhost")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.from", "quotes@samedayramps.com")

	// Background job defaults
	v.SetDefault("jobs.agreementSyncEnabled", true)
	v.SetDefault("jobs.agreementSyncSchedule", "0 */30 * * * *") // every 30 minutes

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300) // 5 minutes

	// Security header defaults. HSTS stays off until the deployment
	// terminates TLS itself.
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000) // 1 year
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.burstSize", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})
}
