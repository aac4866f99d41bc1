//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"telegram-event-reminder/internal/domain"
)

// --- User Model Tests ---

func TestNewUser(t *testing.T) {
	t.Run("should create a new user successfully", func(t *testing.T) {
		startTime := time.Now()
		user, err := NewUser(12345, 1, 2)

		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if user.TelegramID != 12345 {
			t.Errorf("expected telegram ID to be 12345, but got %d", user.TelegramID)
		}
		if user.CompanyID != 1 || user.RoleID != 2 {
			t.Errorf("expected company 1 and role 2, got %d and %d", user.CompanyID, user.RoleID)
		}
		if user.CreatedAt.Before(startTime) {
			t.Errorf("user.CreatedAt is before construction time")
		}
		if user.IsBlocked || user.IsAdmin {
			t.Error("expected new user to be neither blocked nor admin")
		}
	})

	t.Run("should require company and role", func(t *testing.T) {
		cases := []struct {
			name                string
			tgID, company, role int64
		}{
			{"zero telegram id", 0, 1, 1},
			{"zero company", 1, 0, 1},
			{"zero role", 1, 1, 0},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				user, err := NewUser(tc.tgID, tc.company, tc.role)
				if !errors.Is(err, domain.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				if user != nil {
					t.Error("expected nil user on error")
				}
			})
		}
	})

	t.Run("should render name or id", func(t *testing.T) {
		u := &User{TelegramID: 42}
		if got := u.String(); got != "42" {
			t.Errorf("wanted '42', got '%s'", got)
		}
		u.Username = "Anna Smith"
		if got := u.String(); got != "Anna Smith (42)" {
			t.Errorf("wanted 'Anna Smith (42)', got '%s'", got)
		}
	})
}

// --- Event Model Tests ---

func TestEventTargets(t *testing.T) {
	ev := &Event{ID: 1, CompanyID: 10, RoleIDs: []int64{1, 2}}

	cases := []struct {
		name string
		user *User
		want bool
	}{
		{"same company, visible role", &User{CompanyID: 10, RoleID: 2}, true},
		{"same company, hidden role", &User{CompanyID: 10, RoleID: 3}, false},
		{"other company, visible role", &User{CompanyID: 11, RoleID: 1}, false},
		{"other company, hidden role", &User{CompanyID: 11, RoleID: 3}, false},
		{"nil user", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ev.Targets(tc.user); got != tc.want {
				t.Errorf("Targets() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	t.Run("should truncate date to calendar day", func(t *testing.T) {
		at := time.Date(2024, 5, 17, 15, 4, 5, 0, time.UTC)
		ev, err := NewEvent("Standup", "Daily standup", at, 1, []int64{1})
		if err != nil {
			t.Fatalf("NewEvent failed: %v", err)
		}
		want := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
		if !ev.Date.Equal(want) {
			t.Errorf("expected date %v, got %v", want, ev.Date)
		}
	})

	t.Run("should reject events without roles", func(t *testing.T) {
		if _, err := NewEvent("Standup", "", time.Now(), 1, nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

// --- Dispatch Report Tests ---

func TestDispatchReport(t *testing.T) {
	r := NewDispatchReport("job-1", DispatchBroadcast)
	r.RecordSent(1, 0)
	r.RecordFailed(2, 0, errors.New("forbidden"))
	r.RecordFailed(3, 0, nil)
	r.Finish()

	if r.Attempts() != 3 {
		t.Errorf("expected 3 attempts, got %d", r.Attempts())
	}
	if r.Sent() != 1 || r.Failed() != 2 {
		t.Errorf("expected 1 sent / 2 failed, got %d / %d", r.Sent(), r.Failed())
	}
	if r.Results[1].Reason != "forbidden" {
		t.Errorf("expected reason 'forbidden', got '%s'", r.Results[1].Reason)
	}
	if r.Results[2].Reason == "" {
		t.Error("expected a placeholder reason for a nil error")
	}
	if r.Duration() < 0 {
		t.Error("expected non-negative duration")
	}
}
