package service

import (
	"context"
	"strings"
	"sync"

	"gift-store-api/internal/model"
)

// memoryDirectory is an in-memory UserDirectory for tests.
type memoryDirectory struct {
	mu    sync.Mutex
	users map[string]model.User // keyed by lowercase username
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{users: map[string]model.User{}}
}

func (d *memoryDirectory) FindByUsername(_ context.Context, username string) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	user, ok := d.users[strings.ToLower(username)]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (d *memoryDirectory) ExistsByUsername(_ context.Context, username string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.users[strings.ToLower(username)]
	return ok, nil
}

func (d *memoryDirectory) Save(_ context.Context, u model.User) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.users[strings.ToLower(u.Username)] = u
	return u, nil
}

// memoryLedger is an in-memory TokenLedger that counts writes so tests can
// assert that failed operations touch nothing.
type memoryLedger struct {
	mu      sync.Mutex
	records map[string]model.TokenRecord // keyed by token string
	saves   int
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{records: map[string]model.TokenRecord{}}
}

func (l *memoryLedger) FindActive(_ context.Context, accessToken string) (model.TokenRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[accessToken]
	if !ok || rec.Expired || rec.Revoked {
		return model.TokenRecord{}, model.ErrTokenNotFound
	}
	return rec, nil
}

func (l *memoryLedger) FindAllValid(_ context.Context, userID string) ([]model.TokenRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	valid := make([]model.TokenRecord, 0)
	for _, rec := range l.records {
		if rec.UserID == userID && !rec.Expired && !rec.Revoked {
			valid = append(valid, rec)
		}
	}
	return valid, nil
}

func (l *memoryLedger) Save(_ context.Context, rec model.TokenRecord) (model.TokenRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records[rec.AccessToken] = rec
	l.saves++
	return rec, nil
}

// RevokeAllValidAndSave holds the lock across the revoke and the insert so
// the two never interleave with another caller, matching the transactional
// contract of the real ledger.
func (l *memoryLedger) RevokeAllValidAndSave(_ context.Context, userID string, rec model.TokenRecord) (model.TokenRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, old := range l.records {
		if old.UserID == userID && !old.Expired && !old.Revoked {
			old.Expired = true
			old.Revoked = true
			l.records[key] = old
			l.saves++
		}
	}

	l.records[rec.AccessToken] = rec
	l.saves++
	return rec, nil
}

func (l *memoryLedger) saveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saves
}
