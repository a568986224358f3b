package usecase

import (
	"context"
	"net/http"
	"time"

	"jazzcoasters-backend/internal/domain"
	"jazzcoasters-backend/pkg/apperror"
	"jazzcoasters-backend/pkg/logger"
	"jazzcoasters-backend/pkg/security"
	"jazzcoasters-backend/pkg/validation"
)

// submission is the per-request state threaded through the checks.
type submission struct {
	meta      domain.RequestMeta
	input     *domain.InquiryInput
	now       time.Time
	validated *domain.ValidatedInquiry
}

// verdict ends the pipeline. A nil err means "answer 200 without sending".
type verdict struct {
	signal domain.AbuseSignal
	err    *apperror.AppError
	detail map[string]interface{}
}

type check struct {
	state string
	run   func(ctx context.Context, s *submission) *verdict
}

// checks returns the gate in priority order; the first verdict wins.
func (uc *contactUsecase) checks() []check {
	return []check{
		{"source-checked", uc.checkSource},
		{"bot-filtered", uc.checkHoneypot},
		{"fill-time-checked", uc.checkFillTime},
		{"ip-rate-checked", uc.checkIPRate},
		{"schema-validated", uc.checkSchema},
		{"link-count-checked", uc.checkLinks},
		{"delivery-configured", uc.checkDeliveryConfig},
		{"email-cooldown-checked", uc.checkEmailCooldown},
	}
}

func (uc *contactUsecase) checkSource(_ context.Context, s *submission) *verdict {
	requestHost := security.RequestHost(s.meta.ForwardedHost, s.meta.Host)
	if uc.settings.Origin.Trusted(s.meta.Origin, s.meta.Referer, requestHost) {
		return nil
	}
	return &verdict{
		signal: domain.SignalUntrustedOrigin,
		err:    apperror.Forbidden(MsgUntrustedOrigin),
		detail: map[string]interface{}{"origin": s.meta.Origin, "referer": s.meta.Referer, "host": requestHost},
	}
}

func (uc *contactUsecase) elapsed(s *submission) (time.Duration, bool) {
	started, ok := s.input.FormStartedAt.Time()
	if !ok {
		return 0, false
	}
	return s.now.Sub(started), true
}

func (uc *contactUsecase) tooFast(s *submission) bool {
	elapsed, ok := uc.elapsed(s)
	return !ok || elapsed < uc.settings.MinFillDuration
}

func (uc *contactUsecase) checkHoneypot(_ context.Context, s *submission) *verdict {
	if !s.input.HoneypotFilled() || !uc.tooFast(s) {
		return nil
	}
	// Answer like a success so automated submitters learn nothing.
	return &verdict{signal: domain.SignalHoneypot}
}

func (uc *contactUsecase) checkFillTime(_ context.Context, s *submission) *verdict {
	if !uc.tooFast(s) {
		return nil
	}
	elapsed, _ := uc.elapsed(s)
	return &verdict{
		signal: domain.SignalTooFast,
		err:    apperror.BadRequest(MsgTooFast),
		detail: map[string]interface{}{"elapsed_ms": elapsed.Milliseconds()},
	}
}

func (uc *contactUsecase) checkIPRate(ctx context.Context, s *submission) *verdict {
	allowed, err := uc.store.RecordAttempt(ctx, s.meta.ClientIP, s.now, uc.settings.IPWindow, uc.settings.IPMaxAttempts)
	if err != nil {
		logger.Log.Warn("IP rate window unavailable, allowing request", "request_id", s.meta.RequestID, "error", err)
		return nil
	}
	if allowed {
		return nil
	}
	return &verdict{
		signal: domain.SignalIPRateLimited,
		err:    apperror.TooManyRequests(MsgIPRateLimited),
	}
}

func (uc *contactUsecase) checkSchema(_ context.Context, s *submission) *verdict {
	trimmed := s.input.Trimmed()
	if err := uc.validate.Struct(&trimmed); err != nil {
		return &verdict{
			signal: domain.SignalInvalidInput,
			err:    apperror.BadRequest(validation.FirstValidationError(err)),
		}
	}

	eventDate, err := validation.ParseEventDate(trimmed.EventDate, uc.settings.Location)
	if err != nil {
		return &verdict{
			signal: domain.SignalInvalidInput,
			err:    apperror.BadRequest("Event date must be a valid date"),
		}
	}

	s.validated = &domain.ValidatedInquiry{
		FirstName:  trimmed.FirstName,
		LastName:   trimmed.LastName,
		Email:      trimmed.Email,
		Phone:      trimmed.Phone,
		EventDate:  eventDate,
		VenueName:  trimmed.VenueName,
		City:       trimmed.City,
		State:      trimmed.State,
		EventType:  trimmed.EventType,
		GuestCount: trimmed.GuestCount,
		Message:    trimmed.Message,
	}
	return nil
}

func (uc *contactUsecase) checkLinks(_ context.Context, s *submission) *verdict {
	links := security.CountLinks(s.validated.Message)
	if links <= uc.settings.MaxLinks {
		return nil
	}
	return &verdict{
		signal: domain.SignalTooManyLinks,
		err:    apperror.BadRequest(MsgTooManyLinks),
		detail: map[string]interface{}{"links": links},
	}
}

func (uc *contactUsecase) checkDeliveryConfig(_ context.Context, s *submission) *verdict {
	if uc.settings.DeliveryConfigured && uc.dispatcher != nil {
		return nil
	}
	return &verdict{
		signal: domain.SignalNotConfigured,
		err:    apperror.New(http.StatusInternalServerError, MsgNotConfigured, nil),
	}
}

func (uc *contactUsecase) checkEmailCooldown(ctx context.Context, s *submission) *verdict {
	allowed, err := uc.store.ClaimCooldown(ctx, s.validated.NormalizedEmail(), s.now, uc.settings.EmailCooldown)
	if err != nil {
		logger.Log.Warn("Email cooldown registry unavailable, allowing request", "request_id", s.meta.RequestID, "error", err)
		return nil
	}
	if allowed {
		return nil
	}
	return &verdict{
		signal: domain.SignalEmailCooldown,
		err:    apperror.TooManyRequests(MsgEmailCooldown),
	}
}
