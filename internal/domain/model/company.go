package model

import (
	"strings"

	"telegram-event-reminder/internal/domain"
)

type Company struct {
	ID   int64
	Name string
}

func NewCompany(name string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Company{Name: name}, nil
}

// Role is a user category (e.g. "Гость") that events are targeted at.
type Role struct {
	ID   int64
	Name string
}

func NewRole(name string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Role{Name: name}, nil
}
