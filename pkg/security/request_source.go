package security

import (
	"net/url"
	"regexp"
	"strings"
)

// DevHosts are accepted as request sources outside production.
var DevHosts = []string{"localhost:3000", "127.0.0.1:3000", "localhost:3001"}

var linkPattern = regexp.MustCompile(`(?i)https?://\S+`)

// ClientIP picks the first X-Forwarded-For entry, then X-Real-IP, then "unknown".
func ClientIP(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(realIP); ip != "" {
		return ip
	}
	return "unknown"
}

// RequestHost is the first X-Forwarded-Host entry or the Host header.
func RequestHost(forwardedHost, host string) string {
	if forwardedHost != "" {
		first := strings.TrimSpace(strings.Split(forwardedHost, ",")[0])
		if first != "" {
			return strings.ToLower(first)
		}
	}
	return strings.ToLower(strings.TrimSpace(host))
}

// OriginPolicy decides whether a browser-declared source belongs to the site.
type OriginPolicy struct {
	SiteHost string
	AllowDev bool
	DevHosts []string
}

// Trusted checks Origin (or Referer when Origin is empty) against the site
// host, the requested host and, when enabled, the dev hosts. A request that
// declares neither header is trusted.
func (p OriginPolicy) Trusted(origin, referer, requestHost string) bool {
	source := strings.TrimSpace(origin)
	if source == "" {
		source = strings.TrimSpace(referer)
	}
	if source == "" {
		return true
	}

	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)

	if p.SiteHost != "" && host == strings.ToLower(p.SiteHost) {
		return true
	}
	if requestHost != "" && host == strings.ToLower(requestHost) {
		return true
	}
	if p.AllowDev {
		for _, h := range p.DevHosts {
			if host == h {
				return true
			}
		}
	}
	return false
}

// CountLinks counts http:// and https:// URLs in text.
func CountLinks(text string) int {
	return len(linkPattern.FindAllStringIndex(text, -1))
}
