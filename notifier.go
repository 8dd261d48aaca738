package identity

import "context"

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, email, token string) error

// SendVerification implements Notifier.
func (f NotifierFunc) SendVerification(ctx context.Context, email, token string) error {
	if f == nil {
		return nil
	}
	return f(ctx, email, token)
}

type noopNotifier struct{}

func (noopNotifier) SendVerification(context.Context, string, string) error {
	return nil
}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
