package repository

import (
	"context"
	"time"
)

const (
	EventTypesCollection  = "EventTypes"
	BookingsCollection    = "Bookings"
	SchedulesCollection   = "Schedules"
	OutOfOfficeCollection = "Out_of_office"
)

// withTimeout bounds a query by timeout unless the caller already set a
// longer deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining > timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}
