package email

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jazzcoasters-backend/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	KindOperator = "operator"
	KindReceipt  = "receipt"
)

type EmailMetrics struct {
	sendLatency *prometheus.HistogramVec
	errorCount  *prometheus.CounterVec
	sentCount   *prometheus.CounterVec
}

func newEmailMetrics(reg prometheus.Registerer) *EmailMetrics {
	m := &EmailMetrics{
		sendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jazzcoasters_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"provider", "kind"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jazzcoasters_email_errors_total",
			Help: "Total number of email sending errors",
		}, []string{"provider", "kind"}),
		sentCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jazzcoasters_emails_sent_total",
			Help: "Total number of emails sent",
		}, []string{"provider", "kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.sendLatency, m.errorCount, m.sentCount)
	}
	return m
}

// DispatchResult reports each message independently.
type DispatchResult struct {
	OperatorSent bool
	ReceiptSent  bool
	OperatorErr  error
	ReceiptErr   error
}

func (r DispatchResult) OK() bool {
	return r.OperatorSent && r.ReceiptSent
}

// Dispatcher sends the operator notification and the receipt in parallel.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	metrics *EmailMetrics
}

func NewDispatcher(sender Sender, timeout time.Duration, reg prometheus.Registerer) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		sender:  sender,
		timeout: timeout,
		metrics: newEmailMetrics(reg),
	}
}

// Dispatch always waits for both sends. The caller's cancellation is ignored
// once dispatch starts; only the dispatcher timeout ends it early, and expiry
// counts as a failure. Nothing is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, operator, receipt OutgoingMessage) DispatchResult {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	var (
		wg     sync.WaitGroup
		result DispatchResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		result.OperatorErr = d.send(ctx, KindOperator, operator)
		result.OperatorSent = result.OperatorErr == nil
	}()
	go func() {
		defer wg.Done()
		result.ReceiptErr = d.send(ctx, KindReceipt, receipt)
		result.ReceiptSent = result.ReceiptErr == nil
	}()
	wg.Wait()

	return result
}

func (d *Dispatcher) send(ctx context.Context, kind string, msg OutgoingMessage) error {
	provider := d.sender.Name()
	start := time.Now()

	done := make(chan error, 1)
	go func() {
		done <- d.sender.Send(ctx, msg)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = fmt.Errorf("%s email timed out: %w", kind, ctx.Err())
	}
	d.metrics.sendLatency.WithLabelValues(provider, kind).Observe(time.Since(start).Seconds())

	if err != nil {
		d.metrics.errorCount.WithLabelValues(provider, kind).Inc()
		logger.Log.Error("Failed to send email", "provider", provider, "kind", kind, "error", err)
		return err
	}

	d.metrics.sentCount.WithLabelValues(provider, kind).Inc()
	logger.Log.Info("Email sent successfully", "provider", provider, "kind", kind)
	return nil
}
