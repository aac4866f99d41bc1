package model

import (
	"strings"
	"time"

	"telegram-event-reminder/internal/domain"
)

// Event is scheduled for a single calendar day and is visible to the listed roles of one company.
type Event struct {
	ID        int64
	Title     string
	Text      string
	Date      time.Time
	CompanyID int64
	RoleIDs   []int64
}

func NewEvent(title, text string, date time.Time, companyID int64, roleIDs []int64) (*Event, error) {
	title = strings.TrimSpace(title)
	if title == "" || companyID <= 0 || len(roleIDs) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Event{
		Title:     title,
		Text:      text,
		Date:      DateOf(date),
		CompanyID: companyID,
		RoleIDs:   append([]int64(nil), roleIDs...),
	}, nil
}

// Targets reports whether u is eligible for this event: same company and a visible role.
func (e *Event) Targets(u *User) bool {
	if e == nil || u == nil || u.CompanyID != e.CompanyID {
		return false
	}
	for _, id := range e.RoleIDs {
		if id == u.RoleID {
			return true
		}
	}
	return false
}

// DateOf truncates t to midnight UTC of its own calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
