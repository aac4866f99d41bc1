package queue

import (
	"context"
	"fmt"
	"time"

	"telegram-event-reminder/internal/config"
	"telegram-event-reminder/internal/domain/ports/adapter"

	"github.com/hibiken/asynq"
	"github.com/oklog/ulid/v2"
)

// enqueuer is the subset of *asynq.Client used here.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

var _ adapter.JobQueue = (*Client)(nil)

// Client implements adapter.JobQueue on asynq.
type Client struct {
	client          enqueuer
	queue           string
	maxRetry        int
	reminderTimeout time.Duration
	sendBudget      time.Duration
}

func NewClient(opt asynq.RedisConnOpt, cfg *config.QueueConfig) *Client {
	return &Client{
		client:          asynq.NewClient(opt),
		queue:           cfg.Name,
		maxRetry:        cfg.MaxRetry,
		reminderTimeout: cfg.ReminderTimeout,
		sendBudget:      cfg.SendBudget,
	}
}

func (c *Client) EnqueueBroadcast(ctx context.Context, job adapter.BroadcastJob) (string, error) {
	task, err := NewBroadcastTask(job)
	if err != nil {
		return "", err
	}
	return c.enqueue(ctx, task, asynq.Timeout(BroadcastTimeout(job, c.sendBudget)))
}

func (c *Client) EnqueueReminders(ctx context.Context, job adapter.ReminderJob) (string, error) {
	task, err := NewRemindersTask(job)
	if err != nil {
		return "", err
	}
	return c.enqueue(ctx, task, asynq.Timeout(c.reminderTimeout))
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (string, error) {
	id := ulid.Make().String()
	opts = append(opts,
		asynq.TaskID(id),
		asynq.Queue(c.queue),
		asynq.MaxRetry(c.maxRetry),
	)
	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return "", fmt.Errorf("asynq: enqueue %s: %w", task.Type(), err)
	}
	return info.ID, nil
}

func (c *Client) Close() error { return c.client.Close() }
