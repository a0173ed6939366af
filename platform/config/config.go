// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides the shared Redis connection settings.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetRedisKeyPrefix() string
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetCatalogRefreshCron() string
	GetInsightsCleanupCron() string
	GetInsightsRetentionDays() int
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AdminAuthConfig provides settings for the admin login.
type AdminAuthConfig interface {
	JWTConfig
	GetAdminUsername() string
	GetAdminPasswordHash() string
	GetAccessTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SessionConfig provides settings for conversation state persistence.
type SessionConfig interface {
	GetSessionTTL() time.Duration
}

// CatalogConfig provides settings for the catalog provider.
type CatalogConfig interface {
	GetShopifyShopURL() string
	GetShopifyAccessToken() string
	GetShopifyAPIVersion() string
	GetCatalogCacheTTL() time.Duration
	GetCatalogFile() string
}

// WhatsAppConfig provides settings for the messaging gateway.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
	GetPhoneRegion() string
}

// SpeechConfig provides settings for speech-to-text.
type SpeechConfig interface {
	GetOpenAIAPIKey() string
	GetSpeechModel() string
	GetSpeechLanguage() string
}

// VisionConfig provides settings for image-text extraction.
type VisionConfig interface {
	GetGeminiAPIKey() string
	GetVisionFastModel() string
	GetVisionAccurateModel() string
	GetVisionMinQuality() float64
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketQuotePDFs() string
	IsMinIOEnabled() bool
}

// SMTPConfig provides settings for sales notification mail.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFrom() string
	GetSalesInbox() string
	IsSMTPEnabled() bool
}

// MatcherConfig points at the matcher vocabulary document.
type MatcherConfig interface {
	GetMatcherConfigPath() string
}

// PricingConfig provides discount and presentation settings for quotes.
type PricingConfig interface {
	GetCashDiscount() float64
	GetTransferDiscount() float64
	GetQuoteValidityDays() int
	GetBusinessName() string
}

// InboundConfig provides throttling settings for inbound messages.
type InboundConfig interface {
	GetInboundRatePerMinute() float64
	GetInboundBurst() int
	GetWebhookSecret() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	RedisURL              string
	RedisTLSInsecure      bool
	RedisKeyPrefix        string
	AsynqQueueName        string
	AsynqConcurrency      int
	CatalogRefreshCron    string
	InsightsCleanupCron   string
	InsightsRetentionDays int
	JWTAccessSecret       string
	AdminUsername         string
	AdminPasswordHash     string
	AccessTokenTTL        time.Duration
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	SessionTTL            time.Duration
	ShopifyShopURL        string
	ShopifyAccessToken    string
	ShopifyAPIVersion     string
	CatalogCacheTTL       time.Duration
	CatalogFile           string
	WhatsAppURL           string
	WhatsAppKey           string
	WhatsAppDeviceID      string
	PhoneRegion           string
	OpenAIAPIKey          string
	SpeechModel           string
	SpeechLanguage        string
	GeminiAPIKey          string
	VisionFastModel       string
	VisionAccurateModel   string
	VisionMinQuality      float64
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinioBucketQuotePDFs  string
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	SMTPFrom              string
	SalesInbox            string
	MatcherConfigPath     string
	CashDiscount          float64
	TransferDiscount      float64
	QuoteValidityDays     int
	BusinessName          string
	InboundRatePerMinute  float64
	InboundBurst          int
	WebhookSecret         string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetRedisKeyPrefix() string { return c.RedisKeyPrefix }

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string      { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int       { return c.AsynqConcurrency }
func (c *Config) GetCatalogRefreshCron() string  { return c.CatalogRefreshCron }
func (c *Config) GetInsightsCleanupCron() string { return c.InsightsCleanupCron }
func (c *Config) GetInsightsRetentionDays() int  { return c.InsightsRetentionDays }

// AdminAuthConfig implementation
func (c *Config) GetJWTAccessSecret() string       { return c.JWTAccessSecret }
func (c *Config) GetAdminUsername() string         { return c.AdminUsername }
func (c *Config) GetAdminPasswordHash() string     { return c.AdminPasswordHash }
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SessionConfig implementation
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

// CatalogConfig implementation
func (c *Config) GetShopifyShopURL() string         { return c.ShopifyShopURL }
func (c *Config) GetShopifyAccessToken() string     { return c.ShopifyAccessToken }
func (c *Config) GetShopifyAPIVersion() string      { return c.ShopifyAPIVersion }
func (c *Config) GetCatalogCacheTTL() time.Duration { return c.CatalogCacheTTL }
func (c *Config) GetCatalogFile() string            { return c.CatalogFile }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppURL() string      { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string      { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }
func (c *Config) GetPhoneRegion() string      { return c.PhoneRegion }

// SpeechConfig implementation
func (c *Config) GetOpenAIAPIKey() string   { return c.OpenAIAPIKey }
func (c *Config) GetSpeechModel() string    { return c.SpeechModel }
func (c *Config) GetSpeechLanguage() string { return c.SpeechLanguage }

// VisionConfig implementation
func (c *Config) GetGeminiAPIKey() string        { return c.GeminiAPIKey }
func (c *Config) GetVisionFastModel() string     { return c.VisionFastModel }
func (c *Config) GetVisionAccurateModel() string { return c.VisionAccurateModel }
func (c *Config) GetVisionMinQuality() float64   { return c.VisionMinQuality }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketQuotePDFs() string { return c.MinioBucketQuotePDFs }
func (c *Config) IsMinIOEnabled() bool            { return c.MinIOEndpoint != "" }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string     { return c.SMTPHost }
func (c *Config) GetSMTPPort() int        { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string { return c.SMTPPassword }
func (c *Config) GetSMTPFrom() string     { return c.SMTPFrom }
func (c *Config) GetSalesInbox() string   { return c.SalesInbox }
func (c *Config) IsSMTPEnabled() bool     { return c.SMTPHost != "" && c.SalesInbox != "" }

// MatcherConfig implementation
func (c *Config) GetMatcherConfigPath() string { return c.MatcherConfigPath }

// PricingConfig implementation
func (c *Config) GetCashDiscount() float64     { return c.CashDiscount }
func (c *Config) GetTransferDiscount() float64 { return c.TransferDiscount }
func (c *Config) GetQuoteValidityDays() int    { return c.QuoteValidityDays }
func (c *Config) GetBusinessName() string      { return c.BusinessName }

// InboundConfig implementation
func (c *Config) GetInboundRatePerMinute() float64 { return c.InboundRatePerMinute }
func (c *Config) GetInboundBurst() int             { return c.InboundBurst }
func (c *Config) GetWebhookSecret() string         { return c.WebhookSecret }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		RedisKeyPrefix:        getEnv("REDIS_KEY_PREFIX", "d90"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		CatalogRefreshCron:    getEnv("CATALOG_REFRESH_CRON", "*/10 * * * *"),
		InsightsCleanupCron:   getEnv("INSIGHTS_CLEANUP_CRON", "30 3 * * *"),
		InsightsRetentionDays: mustInt(getEnv("INSIGHTS_RETENTION_DAYS", "30")),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash:     getEnv("ADMIN_PASSWORD_HASH", ""),
		AccessTokenTTL:        mustDuration(getEnv("JWT_ACCESS_TTL", "12h")),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		SessionTTL:            mustDuration(getEnv("SESSION_TTL", "24h")),
		ShopifyShopURL:        getEnv("SHOPIFY_SHOP_URL", ""),
		ShopifyAccessToken:    getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyAPIVersion:     getEnv("SHOPIFY_API_VERSION", "2024-07"),
		CatalogCacheTTL:       mustDuration(getEnv("CATALOG_CACHE_TTL", "10m")),
		CatalogFile:           getEnv("CATALOG_FILE", ""),
		WhatsAppURL:           getEnv("WHATSAPP_URL", ""),
		WhatsAppKey:           getEnv("WHATSAPP_KEY", ""),
		WhatsAppDeviceID:      getEnv("WHATSAPP_DEVICE_ID", ""),
		PhoneRegion:           getEnv("PHONE_REGION", "AR"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		SpeechModel:           getEnv("SPEECH_MODEL", "whisper-1"),
		SpeechLanguage:        getEnv("SPEECH_LANGUAGE", "es"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		VisionFastModel:       getEnv("VISION_FAST_MODEL", "gemini-2.5-flash"),
		VisionAccurateModel:   getEnv("VISION_ACCURATE_MODEL", "gemini-2.5-pro"),
		VisionMinQuality:      mustFloat(getEnv("VISION_MIN_QUALITY", "0.6")),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketQuotePDFs:  getEnv("MINIO_BUCKET_QUOTE_PDFS", "quote-pdfs"),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:              getEnv("SMTP_FROM", ""),
		SalesInbox:            getEnv("SALES_INBOX", ""),
		MatcherConfigPath:     getEnv("MATCHER_CONFIG", ""),
		CashDiscount:          mustFloat(getEnv("DISCOUNT_CASH", "0.10")),
		TransferDiscount:      mustFloat(getEnv("DISCOUNT_TRANSFER", "0.05")),
		QuoteValidityDays:     mustInt(getEnv("QUOTE_VALIDITY_DAYS", "1")),
		BusinessName:          getEnv("BUSINESS_NAME", "Corralón"),
		InboundRatePerMinute:  mustFloat(getEnv("INBOUND_RATE_PER_MINUTE", "30")),
		InboundBurst:          mustInt(getEnv("INBOUND_BURST", "10")),
		WebhookSecret:         getEnv("WEBHOOK_SECRET", ""),
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CashDiscount < 0 || cfg.CashDiscount >= 1 || cfg.TransferDiscount < 0 || cfg.TransferDiscount >= 1 {
		return nil, fmt.Errorf("DISCOUNT_CASH and DISCOUNT_TRANSFER must be in [0, 1)")
	}
	if cfg.ShopifyShopURL == "" && cfg.CatalogFile == "" {
		return nil, fmt.Errorf("SHOPIFY_SHOP_URL or CATALOG_FILE is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
