// Package limiter tracks failed attempts per key in a shared counter store.
// It is mechanism only: thresholds and windows belong to the callers, which
// lets login and OTP flows run different policies over one implementation.
package limiter

import (
	"context"
	"fmt"
	"time"
)

// CounterStore is the key/value contract the limiter needs. Incr must be
// atomic on the store side; there is no read-modify-write here.
type CounterStore interface {
	Get(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Limiter struct {
	store CounterStore
}

func New(store CounterStore) *Limiter {
	return &Limiter{store: store}
}

// Peek returns the current failure count for key, zero if absent.
func (l *Limiter) Peek(ctx context.Context, key string) (int64, error) {
	return l.store.Get(ctx, key)
}

// RecordFailure increments the counter and arms the expiry window on the
// first failure. The TTL probe covers the case where a previous Expire call
// failed and left the key without a deadline.
func (l *Limiter) RecordFailure(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := l.store.Incr(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("record failure: %w", err)
	}

	ttl, err := l.store.TTL(ctx, key)
	if err != nil {
		return count, fmt.Errorf("probe ttl: %w", err)
	}

	if ttl < 0 {
		if err := l.store.Expire(ctx, key, window); err != nil {
			return count, fmt.Errorf("arm window: %w", err)
		}
	}

	return count, nil
}

// Clear drops the counter entirely. Clearing an absent key is a no-op.
func (l *Limiter) Clear(ctx context.Context, key string) error {
	return l.store.Del(ctx, key)
}

// TTL returns the remaining window for key. A negative duration means the
// key is absent or has no expiry armed.
func (l *Limiter) TTL(ctx context.Context, key string) (time.Duration, error) {
	return l.store.TTL(ctx, key)
}

// LoginKey is the composite per-client, per-account key for login failures.
func LoginKey(ip, email string) string {
	return fmt.Sprintf("login_attempts:%s:%s", ip, email)
}

// OTPKey tracks code validation failures per account, regardless of client.
func OTPKey(userID string) string {
	return "otp_attempts:" + userID
}
