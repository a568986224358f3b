package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"jazzcoasters-backend/internal/domain"
	"jazzcoasters-backend/pkg/apperror"
	"jazzcoasters-backend/pkg/email"
	"jazzcoasters-backend/pkg/logger"
	"jazzcoasters-backend/pkg/security"
	"jazzcoasters-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MsgInvalidBody        = "Invalid request body"
	MsgSubmissionReceived = "Thanks! Your request has been received. Check your inbox for a confirmation copy."
	MsgUntrustedOrigin    = "Request origin not allowed."
	MsgTooFast            = "Please take a moment to complete the form before submitting."
	MsgIPRateLimited      = "Too many requests. Please try again in a few minutes."
	MsgTooManyLinks       = "Please remove some links from your message and try again."
	MsgEmailCooldown      = "You just sent a request. Please wait a moment before submitting again."
	MsgNotConfigured      = "Contact form is temporarily unavailable."
	MsgDeliveryFailed     = "We couldn't send your request right now. Please try again later."

	auditMessageLimit = 280
)

// Dispatcher sends the two composed messages and reports each outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, operator, receipt email.OutgoingMessage) email.DispatchResult
}

// ContactSettings holds the thresholds and site details of the intake pipeline.
type ContactSettings struct {
	MinFillDuration    time.Duration
	IPWindow           time.Duration
	IPMaxAttempts      int
	EmailCooldown      time.Duration
	MaxLinks           int
	Location           *time.Location
	Origin             security.OriginPolicy
	Site               email.SiteConfig
	DeliveryConfigured bool
	Now                func() time.Time
}

// DefaultContactSettings returns the production thresholds.
func DefaultContactSettings() ContactSettings {
	return ContactSettings{
		MinFillDuration: 3 * time.Second,
		IPWindow:        10 * time.Minute,
		IPMaxAttempts:   8,
		EmailCooldown:   30 * time.Second,
		MaxLinks:        4,
		Location:        time.UTC,
		Now:             time.Now,
	}
}

type contactUsecase struct {
	store      domain.AbuseStore
	dispatcher Dispatcher
	audit      *security.SecurityLogger
	validate   *validator.Validate
	settings   ContactSettings
	outcomes   *prometheus.CounterVec
}

// NewContactUsecase wires the intake pipeline. reg may be nil.
func NewContactUsecase(store domain.AbuseStore, dispatcher Dispatcher, audit *security.SecurityLogger, reg prometheus.Registerer, settings ContactSettings) domain.ContactUsecase {
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if audit == nil {
		audit = security.DefaultLogger()
	}

	validate := validator.New()
	validation.RegisterValidators(validate, settings.Now, settings.Location)

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jazzcoasters_contact_submissions_total",
		Help: "Contact form submissions by pipeline outcome",
	}, []string{"outcome"})
	if reg != nil {
		reg.MustRegister(outcomes)
	}

	return &contactUsecase{
		store:      store,
		dispatcher: dispatcher,
		audit:      audit,
		validate:   validate,
		settings:   settings,
		outcomes:   outcomes,
	}
}

// SubmitInquiry validates, filters, rate-limits and dispatches one booking inquiry
func (uc *contactUsecase) SubmitInquiry(ctx context.Context, meta domain.RequestMeta, input *domain.InquiryInput) (*domain.ContactResult, error) {
	s := &submission{meta: meta, input: input, now: uc.settings.Now()}

	uc.audit.Log(ctx, security.SecurityEvent{
		Event:     security.EventContactRawPayload,
		IP:        meta.ClientIP,
		RequestID: meta.RequestID,
		Details:   map[string]interface{}{"payload": input},
	})

	for _, c := range uc.checks() {
		v := c.run(ctx, s)
		if v == nil {
			continue
		}
		return uc.reject(ctx, s, c.state, v)
	}

	details := inquiryDetails(s.validated)
	operator, receipt, err := email.Compose(details, uc.settings.Site)
	if err != nil {
		uc.outcomes.WithLabelValues("compose_failed").Inc()
		logger.Log.Error("Failed to compose contact emails", "request_id", meta.RequestID, "error", err)
		return nil, apperror.Internal(fmt.Errorf("failed to compose contact emails: %w", err))
	}

	result := uc.dispatcher.Dispatch(ctx, operator, receipt)
	if !result.OK() {
		uc.outcomes.WithLabelValues("delivery_failed").Inc()
		uc.logEvent(ctx, s, security.EventContactDeliveryFailed, "delivery-failed", map[string]interface{}{
			"operator_sent": result.OperatorSent,
			"receipt_sent":  result.ReceiptSent,
			"operator_err":  errString(result.OperatorErr),
			"receipt_err":   errString(result.ReceiptErr),
		})
		return nil, apperror.BadGateway(MsgDeliveryFailed, firstErr(result.OperatorErr, result.ReceiptErr))
	}

	uc.outcomes.WithLabelValues("accepted").Inc()
	uc.logEvent(ctx, s, security.EventContactAccepted, "", nil)
	return &domain.ContactResult{Message: MsgSubmissionReceived}, nil
}

// RejectMalformed audits a request whose body never reached the pipeline.
func (uc *contactUsecase) RejectMalformed(ctx context.Context, meta domain.RequestMeta, cause error) error {
	uc.outcomes.WithLabelValues(string(domain.SignalMalformedBody)).Inc()
	uc.audit.Log(ctx, security.SecurityEvent{
		Event:     security.EventContactRejected,
		Reason:    string(domain.SignalMalformedBody),
		IP:        meta.ClientIP,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
		Details: map[string]interface{}{
			"failed_state": "received",
			"status":       http.StatusBadRequest,
			"error":        MsgInvalidBody,
			"cause":        security.Truncate(errString(cause), auditMessageLimit),
		},
	})
	return apperror.BadRequest(MsgInvalidBody)
}

func (uc *contactUsecase) reject(ctx context.Context, s *submission, state string, v *verdict) (*domain.ContactResult, error) {
	uc.outcomes.WithLabelValues(string(v.signal)).Inc()

	detail := map[string]interface{}{"failed_state": state}
	for k, val := range v.detail {
		detail[k] = val
	}

	if v.err == nil {
		uc.logEvent(ctx, s, security.EventContactBotSuppressed, string(v.signal), detail)
		return &domain.ContactResult{Message: MsgSubmissionReceived, Suppressed: true}, nil
	}

	detail["status"] = v.err.Code
	detail["error"] = v.err.Message
	uc.logEvent(ctx, s, security.EventContactRejected, string(v.signal), detail)
	return nil, v.err
}

func (uc *contactUsecase) logEvent(ctx context.Context, s *submission, event security.EventType, reason string, extra map[string]interface{}) {
	details := map[string]interface{}{
		"payload": maskedPayload(s.input),
		// Correlates repeat senders without logging the address
		"email_hash": security.HashValue(strings.ToLower(strings.TrimSpace(s.input.Email))),
	}
	for k, v := range extra {
		details[k] = v
	}
	uc.audit.Log(ctx, security.SecurityEvent{
		Event:        event,
		Reason:       reason,
		SubjectType:  "email",
		SubjectValue: security.MaskEmail(s.input.Email),
		IP:           s.meta.ClientIP,
		UserAgent:    s.meta.UserAgent,
		RequestID:    s.meta.RequestID,
		Details:      details,
	})
}

// maskedPayload is the audit copy of a submission: masked email, truncated message.
func maskedPayload(in *domain.InquiryInput) map[string]interface{} {
	message := strings.TrimSpace(in.Message)
	return map[string]interface{}{
		"firstName":     strings.TrimSpace(in.FirstName),
		"lastName":      strings.TrimSpace(in.LastName),
		"email":         security.MaskEmail(in.Email),
		"eventDate":     strings.TrimSpace(in.EventDate),
		"eventType":     strings.TrimSpace(in.EventType),
		"city":          strings.TrimSpace(in.City),
		"state":         strings.TrimSpace(in.State),
		"message":       security.Truncate(message, auditMessageLimit),
		"messageLength": utf8.RuneCountInString(message),
		"honeypot":      in.HoneypotFilled(),
		"formStartedAt": int64(in.FormStartedAt),
	}
}

func inquiryDetails(v *domain.ValidatedInquiry) email.InquiryDetails {
	return email.InquiryDetails{
		FirstName:  v.FirstName,
		LastName:   v.LastName,
		Email:      v.Email,
		Phone:      v.Phone,
		EventDate:  v.EventDate.Format("Monday, January 2, 2006"),
		VenueName:  v.VenueName,
		City:       v.City,
		State:      v.State,
		EventType:  v.EventType,
		GuestCount: v.GuestCount,
		Message:    v.Message,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
