package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EmailProviderResend = "resend"
	EmailProviderSES    = "ses"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	// Site
	SiteURL      string
	SiteTimezone string
	SiteLogoURL  string
	SupportEmail string
	// Email delivery
	EmailProvider        string // "resend" or "ses"
	ResendAPIKey         string
	AWSRegion            string
	AWSAccessKeyID       string
	AWSSecretAccessKey   string
	ContactEmailTo       string
	ContactEmailFrom     string
	EmailSendTimeoutSecs int
	// Redis
	RedisURL      string
	RedisPassword string
	// Global rate limiting (all routes)
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	// Show listings
	ShowsICSURL    string
	ShowsMaxEvents int
	// Instagram proxy
	InstagramAccessToken string
	InstagramUserID      string
	InstagramLimit       int
}

func LoadConfig() (*Config, error) {
	// Only effective locally; production injects the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnvironment(),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		// Strip the trailing slash so links never end up with "//"
		SiteURL:      strings.TrimRight(getEnv("SITE_URL", "https://www.jazzcoasters.com"), "/"),
		SiteTimezone: getEnv("SITE_TIMEZONE", "America/New_York"),
		SiteLogoURL:  getEnv("SITE_LOGO_URL", "https://www.jazzcoasters.com/logo.png"),
		SupportEmail: getEnv("SUPPORT_EMAIL", "thejazzcoasters@gmail.com"),
		// Email delivery
		EmailProvider:        strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderResend)),
		ResendAPIKey:         getEnv("RESEND_API_KEY", ""),
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		ContactEmailTo:       getEnv("CONTACT_EMAIL_TO", ""),
		ContactEmailFrom:     getEnv("CONTACT_EMAIL_FROM", ""),
		EmailSendTimeoutSecs: getEnvInt("EMAIL_SEND_TIMEOUT_SECONDS", 10),
		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Global rate limiting
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),    // 1 minute window
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100), // 100 requests per window
		// Show listings
		ShowsICSURL:    getEnv("SHOWS_ICS_URL", ""),
		ShowsMaxEvents: getEnvInt("SHOWS_MAX_EVENTS", 25),
		// Instagram
		InstagramAccessToken: getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
		InstagramUserID:      getEnv("INSTAGRAM_USER_ID", ""),
		InstagramLimit:       getEnvInt("INSTAGRAM_LIMIT", 9),
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Abuse counters and caches will use in-memory fallback.")
	}
	if !cfg.EmailConfigured() {
		log.Println("WARNING: email delivery is not fully configured. Contact form submissions will be rejected.")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with GIN_MODE=release.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SiteHost returns the host[:port] of SiteURL, or "" when SiteURL is not a URL.
func (c *Config) SiteHost() string {
	u, err := url.Parse(c.SiteURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// EmailConfigured checks that the selected provider has credentials and both
// addresses used by the contact form are set.
func (c *Config) EmailConfigured() bool {
	if c.ContactEmailTo == "" || c.ContactEmailFrom == "" {
		return false
	}
	switch c.EmailProvider {
	case EmailProviderResend:
		return c.ResendAPIKey != ""
	case EmailProviderSES:
		return c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != ""
	default:
		return false
	}
}

// EmailSendTimeout is the per-dispatch deadline for both outgoing messages.
func (c *Config) EmailSendTimeout() time.Duration {
	if c.EmailSendTimeoutSecs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.EmailSendTimeoutSecs) * time.Second
}

// Location loads SiteTimezone, falling back to UTC when the zone is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SiteTimezone)
	if err != nil {
		log.Printf("WARNING: unknown SITE_TIMEZONE %q, using UTC", c.SiteTimezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
