package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// InquiryInput is the raw, untrusted booking inquiry posted by the contact form.
type InquiryInput struct {
	FirstName     string        `json:"firstName" validate:"required,max=80"`
	LastName      string        `json:"lastName" validate:"required,max=80"`
	Email         string        `json:"email" validate:"required,email,max=254"`
	Phone         string        `json:"phone" validate:"max=40"`
	EventDate     string        `json:"eventDate" validate:"required,calendar_date,not_past_date"`
	VenueName     string        `json:"venueName" validate:"max=200"`
	City          string        `json:"city" validate:"max=120"`
	State         string        `json:"state" validate:"max=2"`
	EventType     string        `json:"eventType" validate:"required,max=60"`
	GuestCount    string        `json:"guestCount"`
	Message       string        `json:"message" validate:"max=2000"`
	FormStartedAt FormTimestamp `json:"formStartedAt" swaggertype:"integer"`
	HPFieldA      string        `json:"hpFieldA"`
	HPFieldB      string        `json:"hpFieldB"`
	// Website is the honeypot name the site's contact form posts.
	Website string `json:"website"`
}

// Trimmed returns a copy with every free-text field trimmed.
func (in InquiryInput) Trimmed() InquiryInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.EventDate = strings.TrimSpace(in.EventDate)
	in.VenueName = strings.TrimSpace(in.VenueName)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.EventType = strings.TrimSpace(in.EventType)
	in.GuestCount = strings.TrimSpace(in.GuestCount)
	in.Message = strings.TrimSpace(in.Message)
	return in
}

// HoneypotFilled reports whether any hidden field carries a value. Whitespace
// counts: humans never see these fields.
func (in *InquiryInput) HoneypotFilled() bool {
	return in.HPFieldA != "" || in.HPFieldB != "" || in.Website != ""
}

// FormTimestamp is an epoch-milliseconds value the client sends either as a
// JSON number or as a numeric string. Anything else decodes to zero.
type FormTimestamp int64

func (t *FormTimestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*t = 0
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*t = 0
		return nil
	}
	*t = FormTimestamp(int64(f))
	return nil
}

// Time converts the timestamp; ok is false when the client sent nothing usable.
func (t FormTimestamp) Time() (time.Time, bool) {
	if t <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(t)), true
}

// ValidatedInquiry is an InquiryInput that passed schema validation. Optional
// fields are trimmed and empty when absent.
type ValidatedInquiry struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	EventDate  time.Time // midnight in the site timezone
	VenueName  string
	City       string
	State      string
	EventType  string
	GuestCount string
	Message    string
}

func (v *ValidatedInquiry) FullName() string {
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}

// NormalizedEmail is the key used for the per-email cooldown.
func (v *ValidatedInquiry) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(v.Email))
}

// AbuseSignal is the verdict of the heuristics chain for one request.
type AbuseSignal string

const (
	SignalClean           AbuseSignal = "clean"
	SignalUntrustedOrigin AbuseSignal = "untrusted-origin"
	SignalHoneypot        AbuseSignal = "honeypot-triggered"
	SignalTooFast         AbuseSignal = "too-fast"
	SignalIPRateLimited   AbuseSignal = "ip-rate-limited"
	SignalInvalidInput    AbuseSignal = "invalid-input"
	SignalTooManyLinks    AbuseSignal = "too-many-links"
	SignalEmailCooldown   AbuseSignal = "email-cooled-down"
	SignalNotConfigured   AbuseSignal = "not-configured"
	SignalMalformedBody   AbuseSignal = "malformed-body"
)

// RequestMeta carries the transport details the heuristics need.
type RequestMeta struct {
	RequestID     string
	ClientIP      string
	Origin        string
	Referer       string
	Host          string
	ForwardedHost string
	UserAgent     string
}

// ContactResult is returned for every request that is answered with 200.
type ContactResult struct {
	Message string
	// Suppressed is true when a bot was detected and nothing was sent.
	Suppressed bool
}

// AbuseStore owns the process-wide RateWindow and CooldownRegistry.
type AbuseStore interface {
	// RecordAttempt adds now to the ip's sliding window unless the window
	// already holds limit entries, in which case it reports false.
	RecordAttempt(ctx context.Context, ip string, now time.Time, window time.Duration, limit int) (bool, error)
	// ClaimCooldown records now for email unless a previous claim is younger
	// than cooldown, in which case it reports false.
	ClaimCooldown(ctx context.Context, email string, now time.Time, cooldown time.Duration) (bool, error)
}

// ContactUsecase defines the contact form intake pipeline
type ContactUsecase interface {
	// SubmitInquiry runs the full pipeline. Rejections come back as *apperror.AppError.
	SubmitInquiry(ctx context.Context, meta RequestMeta, input *InquiryInput) (*ContactResult, error)
	// RejectMalformed records a body that could not be decoded and returns the 400 to send.
	RejectMalformed(ctx context.Context, meta RequestMeta, cause error) error
}
