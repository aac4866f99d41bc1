// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/adapter"
	"telegram-event-reminder/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// -----------------------------
// Users
// -----------------------------

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu        sync.Mutex
	store     map[int64]*model.User
	saves     int
	listErr   error // used by tests to simulate read failures
	saveErr   error
	blockedBy []int64
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo(users ...*model.User) *memUserRepo {
	m := &memUserRepo{store: make(map[int64]*model.User)}
	for _, u := range users {
		cp := *u
		m.store[u.TelegramID] = &cp
	}
	return m
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.TelegramID] = &cp
	m.saves++
	return nil
}

func (m *memUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) ListByCompanyAndRoles(ctx context.Context, tx repository.Tx, companyID int64, roleIDs []int64) ([]*model.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.sorted() {
		if u.CompanyID == companyID && slices.Contains(roleIDs, u.RoleID) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *memUserRepo) ListRecipientIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for _, u := range m.sorted() {
		if !u.IsBlocked {
			ids = append(ids, u.TelegramID)
		}
	}
	return ids, nil
}

func (m *memUserRepo) Touch(ctx context.Context, tx repository.Tx, tgID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.UpdatedAt = at
	return nil
}

func (m *memUserRepo) MarkBlocked(ctx context.Context, tx repository.Tx, tgID int64, blocked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsBlocked = blocked
	if blocked {
		m.blockedBy = append(m.blockedBy, tgID)
	}
	return nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	if m.listErr != nil {
		return 0, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store), nil
}

func (m *memUserRepo) CountActiveSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.store {
		if !u.UpdatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memUserRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

func (m *memUserRepo) sorted() []*model.User {
	out := make([]*model.User, 0, len(m.store))
	for _, u := range m.store {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TelegramID < out[j].TelegramID })
	return out
}

// -----------------------------
// Companies, roles, events
// -----------------------------

type memCompanyRepo struct {
	companies []*model.Company
	listErr   error
}

var _ repository.CompanyRepository = (*memCompanyRepo)(nil)

func (m *memCompanyRepo) Save(ctx context.Context, tx repository.Tx, c *model.Company) error {
	c.ID = int64(len(m.companies) + 1)
	m.companies = append(m.companies, c)
	return nil
}

func (m *memCompanyRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Company, error) {
	for _, c := range m.companies {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCompanyRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Company, error) {
	for _, c := range m.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCompanyRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Company, error) {
	return m.companies, m.listErr
}

type memRoleRepo struct {
	roles []*model.Role
}

var _ repository.RoleRepository = (*memRoleRepo)(nil)

func (m *memRoleRepo) Save(ctx context.Context, tx repository.Tx, r *model.Role) error {
	r.ID = int64(len(m.roles) + 1)
	m.roles = append(m.roles, r)
	return nil
}

func (m *memRoleRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRoleRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Role, error) {
	return m.roles, nil
}

type mockEventRepo struct {
	ListByDateFunc func(ctx context.Context, tx repository.Tx, date time.Time) ([]*model.Event, error)
	calls          []time.Time
}

var _ repository.EventRepository = (*mockEventRepo)(nil)

func (m *mockEventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error { return nil }

func (m *mockEventRepo) ListByDate(ctx context.Context, tx repository.Tx, date time.Time) ([]*model.Event, error) {
	m.calls = append(m.calls, date)
	if m.ListByDateFunc != nil {
		return m.ListByDateFunc(ctx, tx, date)
	}
	return nil, nil
}

// -----------------------------
// State & transactions
// -----------------------------

type memStateRepo struct {
	mu     sync.Mutex
	states map[int64]*repository.ConversationState
}

var _ repository.StateRepository = (*memStateRepo)(nil)

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: make(map[int64]*repository.ConversationState)}
}

func (m *memStateRepo) SetState(ctx context.Context, tgID int64, st *repository.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[tgID] = st
	return nil
}

func (m *memStateRepo) GetState(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[tgID], nil
}

func (m *memStateRepo) ClearState(ctx context.Context, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, tgID)
	return nil
}

func (m *memStateRepo) step(tgID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[tgID]; ok {
		return st.Step
	}
	return ""
}

// mockTxManager runs fn inline with a nil tx.
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.calls++
	return fn(ctx, nil)
}

// -----------------------------
// Adapters
// -----------------------------

type sentSticker struct {
	ChatID    int64
	StickerID string
}

// MockSender records every outbound call.
type MockSender struct {
	mu       sync.Mutex
	Sent     []adapter.SendMessageParams
	Stickers []sentSticker
	Times    []time.Time

	SendMessageFunc func(ctx context.Context, params adapter.SendMessageParams) error
	SendStickerFunc func(ctx context.Context, chatID int64, stickerID string) error
}

var _ adapter.MessageSender = (*MockSender)(nil)

func (m *MockSender) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, params)
	m.Times = append(m.Times, time.Now())
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, params)
	}
	return nil
}

func (m *MockSender) SendSticker(ctx context.Context, chatID int64, stickerID string) error {
	m.mu.Lock()
	m.Stickers = append(m.Stickers, sentSticker{ChatID: chatID, StickerID: stickerID})
	m.mu.Unlock()
	if m.SendStickerFunc != nil {
		return m.SendStickerFunc(ctx, chatID, stickerID)
	}
	return nil
}

type MockQueue struct {
	Broadcasts []adapter.BroadcastJob
	Reminders  []adapter.ReminderJob
	Err        error
}

var _ adapter.JobQueue = (*MockQueue)(nil)

func (m *MockQueue) EnqueueBroadcast(ctx context.Context, job adapter.BroadcastJob) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Broadcasts = append(m.Broadcasts, job)
	return "job-broadcast", nil
}

func (m *MockQueue) EnqueueReminders(ctx context.Context, job adapter.ReminderJob) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Reminders = append(m.Reminders, job)
	return "job-reminders", nil
}
