package model

import (
	"strconv"
	"time"

	"telegram-event-reminder/internal/domain"
)

// User is a Telegram user registered to exactly one company with exactly one role.
// Username holds the display name entered during registration and may be empty until then.
type User struct {
	TelegramID int64
	Username   string
	CompanyID  int64
	RoleID     int64
	IsBlocked  bool
	IsAdmin    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewUser(tgID, companyID, roleID int64) (*User, error) {
	if tgID <= 0 || companyID <= 0 || roleID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		TelegramID: tgID,
		CompanyID:  companyID,
		RoleID:     roleID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.TelegramID == 0 }
func (u *User) Touch()       { u.UpdatedAt = time.Now() }

// String renders the registered display name with the id, or the bare id before
// the name step. Username is free text, not a Telegram handle.
func (u *User) String() string {
	id := strconv.FormatInt(u.TelegramID, 10)
	if u.Username == "" {
		return id
	}
	return u.Username + " (" + id + ")"
}
