package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"jazzcoasters-backend/internal/domain"
	"jazzcoasters-backend/internal/repository/memory"
	"jazzcoasters-backend/internal/usecase"
	"jazzcoasters-backend/pkg/apperror"
	"jazzcoasters-backend/pkg/email"
	"jazzcoasters-backend/pkg/security"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, operator, receipt email.OutgoingMessage) email.DispatchResult {
	args := m.Called(ctx, operator, receipt)
	return args.Get(0).(email.DispatchResult)
}

type contactFixture struct {
	uc         domain.ContactUsecase
	dispatcher *MockDispatcher
	logs       *observer.ObservedLogs
	now        *time.Time
	reg        *prometheus.Registry
}

func newContactFixture(t *testing.T, mutate func(*usecase.ContactSettings)) *contactFixture {
	t.Helper()

	now := testNow
	f := &contactFixture{
		dispatcher: new(MockDispatcher),
		now:        &now,
		reg:        prometheus.NewRegistry(),
	}

	settings := usecase.DefaultContactSettings()
	settings.Now = func() time.Time { return *f.now }
	settings.Origin = security.OriginPolicy{SiteHost: "www.jazzcoasters.com"}
	settings.Site = email.SiteConfig{
		SiteURL:         "https://www.jazzcoasters.com",
		SupportEmail:    "thejazzcoasters@gmail.com",
		FromAddress:     "bookings@jazzcoasters.com",
		OperatorAddress: "band@jazzcoasters.com",
	}
	settings.DeliveryConfigured = true
	if mutate != nil {
		mutate(&settings)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	f.logs = logs
	audit := security.NewSecurityLogger(zap.New(core), "jazzcoasters-backend", "test")

	f.uc = usecase.NewContactUsecase(memory.NewAbuseStore(), f.dispatcher, audit, f.reg, settings)
	return f
}

func (f *contactFixture) expectDelivery(result email.DispatchResult) {
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return(result)
}

func (f *contactFixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func validInput() *domain.InquiryInput {
	return &domain.InquiryInput{
		FirstName:     "Ella",
		LastName:      "Fitzgerald",
		Email:         "ella@example.com",
		Phone:         "555-0100",
		EventDate:     "2026-06-20",
		VenueName:     "The Blue Room",
		City:          "Asbury Park",
		State:         "NJ",
		EventType:     "Wedding",
		GuestCount:    "120",
		Message:       "We would love a swing set during dinner.",
		FormStartedAt: domain.FormTimestamp(testNow.Add(-45 * time.Second).UnixMilli()),
	}
}

func siteMeta() domain.RequestMeta {
	return domain.RequestMeta{
		RequestID: "req-1",
		ClientIP:  "203.0.113.7",
		Origin:    "https://www.jazzcoasters.com",
		Host:      "api.jazzcoasters.com",
		UserAgent: "Mozilla/5.0",
	}
}

var delivered = email.DispatchResult{OperatorSent: true, ReceiptSent: true}

func requireAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected *apperror.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestSubmitInquiryAccepted(t *testing.T) {
	f := newContactFixture(t, nil)
	f.dispatcher.On("Dispatch", mock.Anything,
		mock.MatchedBy(func(m email.OutgoingMessage) bool {
			return m.To == "band@jazzcoasters.com" && m.ReplyTo == "ella@example.com" &&
				m.Subject == "New booking inquiry from Ella Fitzgerald"
		}),
		mock.MatchedBy(func(m email.OutgoingMessage) bool {
			return m.To == "ella@example.com" && m.ReplyTo == "band@jazzcoasters.com"
		}),
	).Return(delivered).Once()

	res, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), validInput())

	require.NoError(t, err)
	assert.Equal(t, usecase.MsgSubmissionReceived, res.Message)
	assert.False(t, res.Suppressed)
	f.dispatcher.AssertExpectations(t)
	assert.Len(t, f.logs.FilterMessage(string(security.EventContactAccepted)).All(), 1)
}

func TestSubmitInquiryTrimsFields(t *testing.T) {
	f := newContactFixture(t, nil)
	f.dispatcher.On("Dispatch", mock.Anything,
		mock.MatchedBy(func(m email.OutgoingMessage) bool {
			return m.Subject == "New booking inquiry from Ella Fitzgerald" && m.ReplyTo == "ella@example.com"
		}),
		mock.Anything,
	).Return(delivered).Once()

	in := validInput()
	in.FirstName = "  Ella "
	in.Email = " ella@example.com  "

	_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)
	require.NoError(t, err)
	f.dispatcher.AssertExpectations(t)
}

func TestSubmitInquiryValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *domain.InquiryInput)
		message string
	}{
		{"missing first name", func(in *domain.InquiryInput) { in.FirstName = "   " }, "First name is required"},
		{"missing last name", func(in *domain.InquiryInput) { in.LastName = "" }, "Last name is required"},
		{"invalid email", func(in *domain.InquiryInput) { in.Email = "not-an-email" }, "Valid email is required"},
		{"missing event type", func(in *domain.InquiryInput) { in.EventType = "" }, "Event type is required"},
		{"missing event date", func(in *domain.InquiryInput) { in.EventDate = "" }, "Event date is required"},
		{"garbage event date", func(in *domain.InquiryInput) { in.EventDate = "next friday" }, "Event date must be a valid date"},
		{"event date yesterday", func(in *domain.InquiryInput) { in.EventDate = "2026-03-09" }, "Event date must be today or in the future"},
		{"state too long", func(in *domain.InquiryInput) { in.State = "NJY" }, "State must be at most 2 characters"},
		{"message too long", func(in *domain.InquiryInput) { in.Message = strings.Repeat("a", 2001) }, "Message must be at most 2000 characters"},
		{"first violation wins", func(in *domain.InquiryInput) { in.FirstName = ""; in.Email = "" }, "First name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContactFixture(t, nil)
			in := validInput()
			tt.mutate(in)

			_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)

			appErr := requireAppError(t, err, http.StatusBadRequest)
			assert.Equal(t, tt.message, appErr.Message)
			f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitInquiryEventDateToday(t *testing.T) {
	f := newContactFixture(t, nil)
	f.expectDelivery(delivered)

	in := validInput()
	in.EventDate = "2026-03-10"

	_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)
	require.NoError(t, err)
}

func TestSubmitInquiryEventDateUsesSiteTimezone(t *testing.T) {
	// 02:00 UTC on the 11th is still the 10th in New York (UTC-5).
	f := newContactFixture(t, func(s *usecase.ContactSettings) {
		s.Location = time.FixedZone("EST", -5*3600)
	})
	f.expectDelivery(delivered)
	*f.now = time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)

	in := validInput()
	in.EventDate = "2026-03-10"
	in.FormStartedAt = domain.FormTimestamp(f.now.Add(-time.Minute).UnixMilli())

	_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)
	require.NoError(t, err)
}

func TestSubmitInquiryUntrustedOrigin(t *testing.T) {
	f := newContactFixture(t, nil)

	meta := siteMeta()
	meta.Origin = "https://spam.example.net"

	_, err := f.uc.SubmitInquiry(context.Background(), meta, validInput())

	appErr := requireAppError(t, err, http.StatusForbidden)
	assert.Equal(t, usecase.MsgUntrustedOrigin, appErr.Message)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitInquiryWithoutOriginIsTrusted(t *testing.T) {
	f := newContactFixture(t, nil)
	f.expectDelivery(delivered)

	meta := siteMeta()
	meta.Origin = ""

	_, err := f.uc.SubmitInquiry(context.Background(), meta, validInput())
	require.NoError(t, err)
}

func TestSubmitInquiryHoneypot(t *testing.T) {
	t.Run("filled and fast is silently accepted", func(t *testing.T) {
		f := newContactFixture(t, nil)
		in := validInput()
		in.HPFieldA = "http://buy-now.example"
		in.FormStartedAt = domain.FormTimestamp(testNow.Add(-time.Second).UnixMilli())

		res, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)

		require.NoError(t, err)
		assert.True(t, res.Suppressed)
		assert.Equal(t, usecase.MsgSubmissionReceived, res.Message)
		f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
		assert.Len(t, f.logs.FilterMessage(string(security.EventContactBotSuppressed)).All(), 1)
	})

	t.Run("website field and whitespace count as filled", func(t *testing.T) {
		for _, in := range []*domain.InquiryInput{
			{Website: "https://spam.example"},
			{HPFieldA: "   "},
		} {
			f := newContactFixture(t, nil)
			bot := validInput()
			bot.HPFieldA, bot.Website = in.HPFieldA, in.Website
			bot.FormStartedAt = domain.FormTimestamp(testNow.Add(-time.Second).UnixMilli())

			res, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), bot)

			require.NoError(t, err)
			assert.True(t, res.Suppressed)
			f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("filled and slow continues through the pipeline", func(t *testing.T) {
		f := newContactFixture(t, nil)
		f.expectDelivery(delivered)
		in := validInput()
		in.HPFieldB = "autofill"

		res, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)

		require.NoError(t, err)
		assert.False(t, res.Suppressed)
		f.dispatcher.AssertNumberOfCalls(t, "Dispatch", 1)
	})
}

func TestSubmitInquiryTooFast(t *testing.T) {
	tests := []struct {
		name    string
		started domain.FormTimestamp
	}{
		{"under three seconds", domain.FormTimestamp(testNow.Add(-2999 * time.Millisecond).UnixMilli())},
		{"missing timestamp", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContactFixture(t, nil)
			in := validInput()
			in.FormStartedAt = tt.started

			_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)

			appErr := requireAppError(t, err, http.StatusBadRequest)
			assert.Equal(t, usecase.MsgTooFast, appErr.Message)
		})
	}

	t.Run("exactly three seconds passes", func(t *testing.T) {
		f := newContactFixture(t, nil)
		f.expectDelivery(delivered)
		in := validInput()
		in.FormStartedAt = domain.FormTimestamp(testNow.Add(-3 * time.Second).UnixMilli())

		_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)
		require.NoError(t, err)
	})
}

func TestSubmitInquiryIPRateLimit(t *testing.T) {
	f := newContactFixture(t, nil)
	f.expectDelivery(delivered)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		in := validInput()
		in.Email = fmt.Sprintf("guest%d@example.com", i)
		_, err := f.uc.SubmitInquiry(ctx, siteMeta(), in)
		require.NoError(t, err, "attempt %d", i+1)
	}

	in := validInput()
	in.Email = "guest9@example.com"
	_, err := f.uc.SubmitInquiry(ctx, siteMeta(), in)
	appErr := requireAppError(t, err, http.StatusTooManyRequests)
	assert.Equal(t, usecase.MsgIPRateLimited, appErr.Message)

	other := siteMeta()
	other.ClientIP = "198.51.100.20"
	_, err = f.uc.SubmitInquiry(ctx, other, in)
	require.NoError(t, err)

	// The window slides: ten minutes later the first address is admitted again.
	f.advance(10 * time.Minute)
	in.Email = "guest10@example.com"
	in.FormStartedAt = domain.FormTimestamp(f.now.Add(-time.Minute).UnixMilli())
	_, err = f.uc.SubmitInquiry(ctx, siteMeta(), in)
	require.NoError(t, err)
}

func TestSubmitInquiryIPRateLimitCountsInvalidAttempts(t *testing.T) {
	f := newContactFixture(t, nil)
	ctx := context.Background()

	bad := validInput()
	bad.FirstName = ""
	for i := 0; i < 8; i++ {
		_, err := f.uc.SubmitInquiry(ctx, siteMeta(), bad)
		requireAppError(t, err, http.StatusBadRequest)
	}

	_, err := f.uc.SubmitInquiry(ctx, siteMeta(), validInput())
	requireAppError(t, err, http.StatusTooManyRequests)
}

func TestSubmitInquiryEmailCooldown(t *testing.T) {
	f := newContactFixture(t, nil)
	f.expectDelivery(delivered)
	ctx := context.Background()

	_, err := f.uc.SubmitInquiry(ctx, siteMeta(), validInput())
	require.NoError(t, err)

	f.advance(10 * time.Second)
	again := validInput()
	again.Email = "ELLA@Example.com"
	again.FormStartedAt = domain.FormTimestamp(f.now.Add(-time.Minute).UnixMilli())
	other := siteMeta()
	other.ClientIP = "198.51.100.20"

	_, err = f.uc.SubmitInquiry(ctx, other, again)
	appErr := requireAppError(t, err, http.StatusTooManyRequests)
	assert.Equal(t, usecase.MsgEmailCooldown, appErr.Message)

	f.advance(21 * time.Second)
	again.FormStartedAt = domain.FormTimestamp(f.now.Add(-time.Minute).UnixMilli())
	_, err = f.uc.SubmitInquiry(ctx, other, again)
	require.NoError(t, err)
	f.dispatcher.AssertNumberOfCalls(t, "Dispatch", 2)
}

func TestSubmitInquiryLinkCount(t *testing.T) {
	links := func(n int) string {
		parts := make([]string, 0, n)
		for i := 0; i < n; i++ {
			parts = append(parts, fmt.Sprintf("https://example.com/%d", i))
		}
		return "See " + strings.Join(parts, " and ")
	}

	t.Run("four links pass", func(t *testing.T) {
		f := newContactFixture(t, nil)
		f.expectDelivery(delivered)
		in := validInput()
		in.Message = links(4)

		_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)
		require.NoError(t, err)
	})

	t.Run("five links are rejected", func(t *testing.T) {
		f := newContactFixture(t, nil)
		in := validInput()
		in.Message = links(5)

		_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)

		appErr := requireAppError(t, err, http.StatusBadRequest)
		assert.Equal(t, usecase.MsgTooManyLinks, appErr.Message)
		f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSubmitInquiryDeliveryNotConfigured(t *testing.T) {
	f := newContactFixture(t, func(s *usecase.ContactSettings) {
		s.DeliveryConfigured = false
	})

	_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), validInput())

	appErr := requireAppError(t, err, http.StatusInternalServerError)
	assert.Equal(t, usecase.MsgNotConfigured, appErr.Message)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitInquiryDeliveryFailure(t *testing.T) {
	tests := []struct {
		name   string
		result email.DispatchResult
	}{
		{"operator fails", email.DispatchResult{ReceiptSent: true, OperatorErr: errors.New("provider down")}},
		{"receipt fails", email.DispatchResult{OperatorSent: true, ReceiptErr: errors.New("bounced")}},
		{"both fail", email.DispatchResult{OperatorErr: errors.New("a"), ReceiptErr: errors.New("b")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContactFixture(t, nil)
			f.expectDelivery(tt.result)

			_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), validInput())

			appErr := requireAppError(t, err, http.StatusBadGateway)
			assert.Equal(t, usecase.MsgDeliveryFailed, appErr.Message)
			failed := f.logs.FilterMessage(string(security.EventContactDeliveryFailed)).All()
			require.Len(t, failed, 1)
			assert.Equal(t, true, failed[0].ContextMap()["alert"])
		})
	}
}

func TestSubmitInquiryAuditMasksPayload(t *testing.T) {
	f := newContactFixture(t, nil)
	in := validInput()
	in.Email = "jane.doe@example.com"
	in.Message = strings.Repeat("x", 300) + " https://a.example https://b.example https://c.example https://d.example https://e.example"

	_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), in)
	requireAppError(t, err, http.StatusBadRequest)

	entries := f.logs.FilterMessage(string(security.EventContactRejected)).All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()

	assert.Equal(t, string(domain.SignalTooManyLinks), fields["reason"])
	assert.Equal(t, "ja***@example.com", fields["subject_value"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "203.0.113.7", fields["ip"])

	details := fields["details"].(string)
	assert.Contains(t, details, `"email":"ja***@example.com"`)
	assert.Contains(t, details, `"messageLength":390`)
	assert.Contains(t, details, `"message":"`+strings.Repeat("x", 280)+`"`)
	assert.NotContains(t, details, "jane.doe@")

	raw := f.logs.FilterMessage(string(security.EventContactRawPayload)).All()
	require.Len(t, raw, 1)
	assert.Equal(t, zapcore.DebugLevel, raw[0].Level)
}

func TestSubmitInquiryOutcomeMetrics(t *testing.T) {
	f := newContactFixture(t, nil)
	f.expectDelivery(delivered)

	_, err := f.uc.SubmitInquiry(context.Background(), siteMeta(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.FormStartedAt = 0
	_, err = f.uc.SubmitInquiry(context.Background(), siteMeta(), in)
	require.Error(t, err)

	count, err := testutil.GatherAndCount(f.reg, "jazzcoasters_contact_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRejectMalformed(t *testing.T) {
	f := newContactFixture(t, nil)

	err := f.uc.RejectMalformed(context.Background(), siteMeta(), errors.New("unexpected EOF"))

	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, usecase.MsgInvalidBody, appErr.Message)

	rejected := f.logs.FilterMessage(string(security.EventContactRejected)).All()
	require.Len(t, rejected, 1)
	fields := rejected[0].ContextMap()
	assert.Equal(t, "malformed-body", fields["reason"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "203.0.113.7", fields["ip"])
	assert.Contains(t, fields["details"], "unexpected EOF")
	expected := `
# HELP jazzcoasters_contact_submissions_total Contact form submissions by pipeline outcome
# TYPE jazzcoasters_contact_submissions_total counter
jazzcoasters_contact_submissions_total{outcome="malformed-body"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "jazzcoasters_contact_submissions_total"))
}
