package adapter

import (
	"context"
	"time"
)

// BroadcastJob is the transport form of an admin broadcast.
type BroadcastJob struct {
	RecipientIDs []int64          `json:"recipient_ids"`
	Text         string           `json:"text"`
	Entities     []MessageEntity  `json:"entities,omitempty"`
	Buttons      [][]InlineButton `json:"buttons,omitempty"`
	Delay        time.Duration    `json:"delay"`
	ParseMode    string           `json:"parse_mode"`
}

// ReminderJob asks for reminders of Date (a calendar day) to be sent with Title as prefix.
// Periodic jobs leave Date zero and are resolved to today+OffsetDays when they run.
type ReminderJob struct {
	Date       time.Time `json:"date,omitzero"`
	OffsetDays int       `json:"offset_days,omitempty"`
	Title      string    `json:"title"`
}

// JobQueue hands dispatch jobs to background workers. It returns the job id.
type JobQueue interface {
	EnqueueBroadcast(ctx context.Context, job BroadcastJob) (string, error)
	EnqueueReminders(ctx context.Context, job ReminderJob) (string, error)
}
