// Package queue runs dispatch jobs in the background on top of asynq (Redis).
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/adapter"
	"telegram-event-reminder/internal/usecase"

	"github.com/hibiken/asynq"
)

const (
	TypeBroadcast = "dispatch:broadcast"
	TypeReminders = "dispatch:reminders"
)

// broadcastMargin is added on top of the expected send time of a broadcast.
const broadcastMargin = 5 * time.Minute

func NewBroadcastTask(job adapter.BroadcastJob) (*asynq.Task, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode broadcast: %w", err)
	}
	return asynq.NewTask(TypeBroadcast, payload), nil
}

func NewRemindersTask(job adapter.ReminderJob) (*asynq.Task, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode reminders: %w", err)
	}
	return asynq.NewTask(TypeReminders, payload), nil
}

// DefaultSendBudget is the time one Telegram send may take when sizing a broadcast deadline.
const DefaultSendBudget = 2 * time.Second

// MinSendBudget is the floor for a configured send budget.
const MinSendBudget = time.Second

// BroadcastTimeout gives a broadcast room for every recipient: the pause before
// each send plus its send budget, and a fixed margin on top.
func BroadcastTimeout(job adapter.BroadcastJob, sendBudget time.Duration) time.Duration {
	if sendBudget <= 0 {
		sendBudget = DefaultSendBudget
	}
	sendBudget = max(sendBudget, MinSendBudget)
	perRecipient := usecase.EffectiveDelay(job.Delay) + sendBudget
	return time.Duration(len(job.RecipientIDs))*perRecipient + broadcastMargin
}

// ResolveDate returns the calendar day a reminder job targets, evaluated at now in loc.
func ResolveDate(job adapter.ReminderJob, now time.Time, loc *time.Location) time.Time {
	if !job.Date.IsZero() {
		return model.DateOf(job.Date)
	}
	return model.DateOf(now.In(loc).AddDate(0, 0, job.OffsetDays))
}
