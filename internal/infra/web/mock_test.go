//go:build !integration

package web

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"telegram-event-reminder/internal/usecase"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

type mockStatsUC struct {
	UserStatsFunc func(ctx context.Context) (*usecase.UserStats, error)
}

func (m *mockStatsUC) UserStats(ctx context.Context) (*usecase.UserStats, error) {
	return m.UserStatsFunc(ctx)
}

type mockExportUC struct {
	ExportFunc func(ctx context.Context) ([]byte, error)
}

func (m *mockExportUC) ExportUsersCSV(ctx context.Context) ([]byte, error) {
	return m.ExportFunc(ctx)
}

type mockDispatchUC struct {
	ScheduleBroadcastFunc func(ctx context.Context, d usecase.BroadcastDraft) (*usecase.ScheduledJob, error)
	ScheduleRemindersFunc func(ctx context.Context, date time.Time, title string) (*usecase.ScheduledJob, error)
}

func (m *mockDispatchUC) ScheduleBroadcast(ctx context.Context, d usecase.BroadcastDraft) (*usecase.ScheduledJob, error) {
	return m.ScheduleBroadcastFunc(ctx, d)
}

func (m *mockDispatchUC) ScheduleReminders(ctx context.Context, date time.Time, title string) (*usecase.ScheduledJob, error) {
	return m.ScheduleRemindersFunc(ctx, date, title)
}
