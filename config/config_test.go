package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("SITE_URL", "https://www.jazzcoasters.com/")
	t.Setenv("RATE_LIMIT_GLOBAL_THRESHOLD", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "https://www.jazzcoasters.com", cfg.SiteURL)
	assert.Equal(t, "www.jazzcoasters.com", cfg.SiteHost())
	assert.Equal(t, 100, cfg.RateLimitGlobalThreshold)
}

func TestIsProduction(t *testing.T) {
	t.Setenv("GIN_MODE", "release")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestEmailConfigured(t *testing.T) {
	base := Config{ContactEmailTo: "band@jazzcoasters.com", ContactEmailFrom: "bookings@jazzcoasters.com"}

	resend := base
	resend.EmailProvider = EmailProviderResend
	assert.False(t, resend.EmailConfigured())
	resend.ResendAPIKey = "re_123"
	assert.True(t, resend.EmailConfigured())

	ses := base
	ses.EmailProvider = EmailProviderSES
	ses.AWSAccessKeyID = "AKIA"
	assert.False(t, ses.EmailConfigured())
	ses.AWSSecretAccessKey = "secret"
	assert.True(t, ses.EmailConfigured())

	noRecipient := resend
	noRecipient.ContactEmailTo = ""
	assert.False(t, noRecipient.EmailConfigured())

	unknown := resend
	unknown.EmailProvider = "smtp"
	assert.False(t, unknown.EmailConfigured())
}

func TestEmailSendTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, (&Config{}).EmailSendTimeout())
	assert.Equal(t, 3*time.Second, (&Config{EmailSendTimeoutSecs: 3}).EmailSendTimeout())
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, (&Config{SiteTimezone: "Not/AZone"}).Location())
	assert.Equal(t, "UTC", (&Config{SiteTimezone: "UTC"}).Location().String())
}

func TestSiteHostInvalid(t *testing.T) {
	assert.Equal(t, "", (&Config{SiteURL: "://bad"}).SiteHost())
}
