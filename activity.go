package identity

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventRegistered         ActivityEventType = "identity.registered"
	ActivityEventRegistrationDenied ActivityEventType = "identity.registration.denied"
	ActivityEventLoginSuccess       ActivityEventType = "identity.login.success"
	ActivityEventLoginFailure       ActivityEventType = "identity.login.failure"
	ActivityEventAccountActivated   ActivityEventType = "identity.account.activated"
	ActivityEventVerificationSent   ActivityEventType = "identity.verification.sent"
	ActivityEventVerificationFailed ActivityEventType = "identity.verification.failed"
	ActivityEventDeliveryFailure    ActivityEventType = "identity.verification.delivery_failure"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	AccountID  string
	Email      string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
