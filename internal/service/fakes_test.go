package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/talantix/portal/internal/entity"
)

// testClock is a manual clock shared between the service under test and
// the fake counter store, so windows and TTLs expire deterministically.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// memCounters implements limiter.CounterStore over a map, expiring keys
// against the test clock the way Redis would.
type memCounters struct {
	mu        sync.Mutex
	clock     *testClock
	counts    map[string]int64
	deadlines map[string]time.Time
}

func newMemCounters(clock *testClock) *memCounters {
	return &memCounters{
		clock:     clock,
		counts:    map[string]int64{},
		deadlines: map[string]time.Time{},
	}
}

func (m *memCounters) expireLocked(key string) {
	deadline, ok := m.deadlines[key]
	if ok && !m.clock.Now().Before(deadline) {
		delete(m.counts, key)
		delete(m.deadlines, key)
	}
}

func (m *memCounters) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked(key)

	return m.counts[key], nil
}

func (m *memCounters) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked(key)
	m.counts[key]++

	return m.counts[key], nil
}

func (m *memCounters) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked(key)

	if _, ok := m.counts[key]; !ok {
		return -2 * time.Second, nil
	}

	deadline, ok := m.deadlines[key]
	if !ok {
		return -1 * time.Second, nil
	}

	return deadline.Sub(m.clock.Now()), nil
}

func (m *memCounters) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.counts[key]; ok {
		m.deadlines[key] = m.clock.Now().Add(ttl)
	}

	return nil
}

func (m *memCounters) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.counts, key)
	delete(m.deadlines, key)

	return nil
}

// memUsers is an in-memory UserStore.
type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]entity.User
}

func newMemUsers(users ...entity.User) *memUsers {
	m := &memUsers{users: map[uuid.UUID]entity.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}

	return m
}

func (m *memUsers) CreateUser(_ context.Context, user entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return entity.ErrAlreadyExists
		}
	}

	m.users[user.ID] = user

	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}

	return entity.User{}, entity.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return entity.User{}, entity.ErrNotFound
	}

	return u, nil
}

func (m *memUsers) UpdateLoginState(_ context.Context, id uuid.UUID, attempts int, lockedUntil *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return entity.ErrNotFound
	}

	u.FailedLoginAttempts = attempts
	u.LockedUntil = lockedUntil
	m.users[id] = u

	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return entity.ErrNotFound
	}

	u.PasswordHash = passwordHash
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	m.users[id] = u

	return nil
}

func (m *memUsers) UpdateEmail(_ context.Context, id uuid.UUID, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return entity.ErrNotFound
	}

	u.Email = email
	m.users[id] = u

	return nil
}

func (m *memUsers) UpdateStatus(_ context.Context, id uuid.UUID, status entity.UserStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return entity.ErrNotFound
	}

	u.Status = status
	m.users[id] = u

	return nil
}

func (m *memUsers) ListUsers(_ context.Context, _ string, _, _ int) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}

	return out, nil
}

// memTokens is an in-memory TokenStore.
type memTokens struct {
	mu     sync.Mutex
	clock  *testClock
	tokens []entity.UserToken
}

func newMemTokens(clock *testClock) *memTokens {
	return &memTokens{clock: clock}
}

func (m *memTokens) SaveToken(_ context.Context, token entity.UserToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens = append(m.tokens, token)

	return nil
}

func (m *memTokens) FindByCode(_ context.Context, code string) (entity.UserToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found *entity.UserToken

	for i := range m.tokens {
		t := m.tokens[i]
		if t.Code == code && (found == nil || t.CreatedAt.After(found.CreatedAt)) {
			found = &t
		}
	}

	if found == nil {
		return entity.UserToken{}, entity.ErrNotFound
	}

	return *found, nil
}

func (m *memTokens) LastByUserAndPurpose(_ context.Context, userID uuid.UUID, purpose entity.TokenPurpose) (entity.UserToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found *entity.UserToken

	for i := range m.tokens {
		t := m.tokens[i]
		if t.UserID == userID && t.Purpose == purpose && (found == nil || t.CreatedAt.After(found.CreatedAt)) {
			found = &t
		}
	}

	if found == nil {
		return entity.UserToken{}, entity.ErrNotFound
	}

	return *found, nil
}

func (m *memTokens) DeleteToken(_ context.Context, tokenID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tokens {
		if t.ID == tokenID {
			m.tokens = append(m.tokens[:i], m.tokens[i+1:]...)
			return nil
		}
	}

	return entity.ErrNotFound
}

func (m *memTokens) DeleteExpired(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	kept := m.tokens[:0]

	for _, t := range m.tokens {
		if t.ExpiresAt.After(now) {
			kept = append(kept, t)
		}
	}

	m.tokens = kept

	return nil
}

// recordingNotifier captures dispatched emails.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (n *recordingNotifier) SendEmail(_ context.Context, to, subject, textBody, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: textBody})
}

func (n *recordingNotifier) Sent() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]sentMail(nil), n.sent...)
}
