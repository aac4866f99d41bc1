package model

import "time"

type DispatchKind string

const (
	DispatchReminder  DispatchKind = "reminder"
	DispatchBroadcast DispatchKind = "broadcast"
)

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// DeliveryResult is the outcome of one send attempt. EventID is zero for broadcasts.
type DeliveryResult struct {
	RecipientID int64
	EventID     int64
	Status      DeliveryStatus
	Reason      string
}

// DispatchReport collects one result per attempted recipient, in attempt order.
type DispatchReport struct {
	JobID      string
	Kind       DispatchKind
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []DeliveryResult
}

func NewDispatchReport(jobID string, kind DispatchKind) *DispatchReport {
	return &DispatchReport{JobID: jobID, Kind: kind, StartedAt: time.Now()}
}

func (r *DispatchReport) RecordSent(recipientID, eventID int64) {
	r.Results = append(r.Results, DeliveryResult{RecipientID: recipientID, EventID: eventID, Status: DeliverySent})
}

func (r *DispatchReport) RecordFailed(recipientID, eventID int64, err error) {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	r.Results = append(r.Results, DeliveryResult{RecipientID: recipientID, EventID: eventID, Status: DeliveryFailed, Reason: reason})
}

func (r *DispatchReport) Finish() { r.FinishedAt = time.Now() }

func (r *DispatchReport) Attempts() int { return len(r.Results) }

func (r *DispatchReport) Sent() int { return r.count(DeliverySent) }

func (r *DispatchReport) Failed() int { return r.count(DeliveryFailed) }

func (r *DispatchReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *DispatchReport) count(s DeliveryStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}
