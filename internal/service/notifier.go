package service

import "context"

// Notifier publishes domain events to external delivery channels (email, SMS,
// push). Dispatch is fire-and-forget: callers log failures and never let them
// fail the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, event string, payload map[string]interface{}) error
}
