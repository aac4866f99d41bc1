package repository

import (
	"context"
	"time"

	"telegram-event-reminder/internal/domain/model"
)

// -----------------------------
// Events
// -----------------------------

type EventRepository interface {
	// Save inserts or updates the event together with its visible role set.
	Save(ctx context.Context, tx Tx, e *model.Event) error
	// ListByDate returns all events scheduled for the calendar day of date.
	ListByDate(ctx context.Context, tx Tx, date time.Time) ([]*model.Event, error)
}
