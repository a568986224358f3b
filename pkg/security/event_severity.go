package security

import "go.uber.org/zap/zapcore"

// Severity represents the severity level of an audit event
// This is derived from EventType, NOT user-provided
type Severity string

const (
	SeverityDEBUG  Severity = "DEBUG"
	SeverityINFO   Severity = "INFO"
	SeverityMEDIUM Severity = "MEDIUM"
	SeverityWARN   Severity = "WARN"
	SeverityHIGH   Severity = "HIGH"
)

// EventSeverityMap defines the hard-coded severity for each event type
var EventSeverityMap = map[EventType]Severity{
	// Carries unmasked PII, only emitted when debugging
	EventContactRawPayload: SeverityDEBUG,

	EventContactAccepted: SeverityINFO,

	// Expected abuse traffic, monitor volume
	EventContactRejected:      SeverityWARN,
	EventContactBotSuppressed: SeverityWARN,
	EventRateLimitTriggered:   SeverityWARN,

	// A real inquiry may have been lost
	EventContactDeliveryFailed: SeverityHIGH,
}

// GetSeverity returns the severity for an event type
// If the event type is not mapped, defaults to MEDIUM
func GetSeverity(eventType EventType) Severity {
	if severity, ok := EventSeverityMap[eventType]; ok {
		return severity
	}
	return SeverityMEDIUM
}

// Level maps a severity onto the zap level the event is written at.
func (s Severity) Level() zapcore.Level {
	switch s {
	case SeverityDEBUG:
		return zapcore.DebugLevel
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// IsHighOrAbove returns true if the event needs an operator to look at it
func IsHighOrAbove(eventType EventType) bool {
	return GetSeverity(eventType) == SeverityHIGH
}
