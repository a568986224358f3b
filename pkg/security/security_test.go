package security

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"jane.doe@example.com": "ja***@example.com",
		"jo@example.com":       "jo***@example.com",
		"j@example.com":        "j***@example.com",
		"  ab@x.io ":           "ab***@x.io",
		"not-an-email":         "***",
		"":                     "***",
	}
	for in, want := range tests {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "ééé", Truncate("éééé", 3))
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "203.0.113.7", ClientIP("203.0.113.7, 10.0.0.1", "10.0.0.2"))
	assert.Equal(t, "10.0.0.2", ClientIP("", "10.0.0.2"))
	assert.Equal(t, "10.0.0.2", ClientIP(" , 10.0.0.1", "10.0.0.2"))
	assert.Equal(t, "unknown", ClientIP("", ""))
}

func TestRequestHost(t *testing.T) {
	assert.Equal(t, "api.jazzcoasters.com", RequestHost("API.jazzcoasters.com, proxy", "internal:8080"))
	assert.Equal(t, "internal:8080", RequestHost("", "internal:8080"))
}

func TestOriginPolicy(t *testing.T) {
	prod := OriginPolicy{SiteHost: "www.jazzcoasters.com"}
	dev := OriginPolicy{SiteHost: "www.jazzcoasters.com", AllowDev: true, DevHosts: DevHosts}

	tests := []struct {
		name    string
		policy  OriginPolicy
		origin  string
		referer string
		host    string
		want    bool
	}{
		{"no headers", prod, "", "", "", true},
		{"site origin", prod, "https://www.jazzcoasters.com", "", "", true},
		{"site origin any case", prod, "https://WWW.JazzCoasters.com", "", "", true},
		{"referer fallback", prod, "", "https://www.jazzcoasters.com/contact", "", true},
		{"origin wins over referer", prod, "https://evil.example", "https://www.jazzcoasters.com/", "", false},
		{"matches request host", prod, "https://preview.jazzcoasters.com", "", "preview.jazzcoasters.com", true},
		{"foreign origin", prod, "https://evil.example", "", "api.jazzcoasters.com", false},
		{"unparseable origin", prod, "::not a url", "", "", false},
		{"opaque origin", prod, "null", "", "", false},
		{"dev host in production", prod, "http://localhost:3000", "", "", false},
		{"dev host in development", dev, "http://localhost:3000", "", "", true},
		{"unlisted dev port", dev, "http://localhost:4000", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Trusted(tt.origin, tt.referer, tt.host))
		})
	}
}

func TestCountLinks(t *testing.T) {
	assert.Equal(t, 0, CountLinks("call me at 555-0100"))
	assert.Equal(t, 2, CountLinks("see http://a.example and HTTPS://b.example/path?x=1"))
	assert.Equal(t, 1, CountLinks("www.example.com does not count but https://x.example does"))
	assert.Equal(t, 5, CountLinks(strings.Repeat("https://spam.example ", 5)))
}

func TestSecurityLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewSecurityLogger(zap.New(core), "jazzcoasters-backend", "test")
	ctx := context.Background()

	sl.Log(ctx, SecurityEvent{Event: EventContactRawPayload})
	sl.Log(ctx, SecurityEvent{Event: EventContactAccepted, RequestID: "req-1"})
	sl.Log(ctx, SecurityEvent{Event: EventContactRejected, Reason: "too-fast"})
	sl.Log(ctx, SecurityEvent{Event: EventContactDeliveryFailed})
	sl.LogRateLimitTriggered(ctx, "203.0.113.7", "curl/8", "req-2", "/v1/contact")

	entries := logs.All()
	require.Len(t, entries, 5)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[4].Level)

	assert.Equal(t, "req-1", entries[1].ContextMap()["request_id"])
	assert.Equal(t, "too-fast", entries[2].ContextMap()["reason"])
	assert.Equal(t, "HIGH", entries[3].ContextMap()["severity"])
	assert.Equal(t, true, entries[3].ContextMap()["alert"])
	assert.NotContains(t, entries[2].ContextMap(), "alert")
	assert.Contains(t, entries[4].ContextMap()["details"], "/v1/contact")
}

func TestGetSeverity(t *testing.T) {
	assert.Equal(t, SeverityINFO, GetSeverity(EventContactAccepted))
	assert.Equal(t, SeverityMEDIUM, GetSeverity(EventType("unknown")))
	assert.True(t, IsHighOrAbove(EventContactDeliveryFailed))
	assert.False(t, IsHighOrAbove(EventContactRejected))
}
