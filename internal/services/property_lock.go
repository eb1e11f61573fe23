package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/staybook/internal/clock"
	"github.com/joshua-takyi/staybook/internal/models"
)

const (
	defaultLockTTL      = 10 * time.Second
	defaultLockAttempts = 5
	defaultLockBackoff  = 50 * time.Millisecond
)

// propertyLock serialises writes that depend on a property's confirmed bookings:
// creating a booking and deleting the property.
type propertyLock struct {
	locker   models.PropertyLocker
	clock    clock.Clock
	ttl      time.Duration
	attempts int
	backoff  time.Duration
}

type LockOption func(*propertyLock)

// WithLockRetry controls how often a request waits for a concurrent write on the same property.
func WithLockRetry(attempts int, backoff time.Duration) LockOption {
	return func(pl *propertyLock) {
		if attempts > 0 {
			pl.attempts = attempts
		}
		if backoff >= 0 {
			pl.backoff = backoff
		}
	}
}

// WithLockTTL bounds how long a crashed holder can block a property.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(pl *propertyLock) {
		if ttl > 0 {
			pl.ttl = ttl
		}
	}
}

func newPropertyLock(locker models.PropertyLocker, clk clock.Clock, opts ...LockOption) propertyLock {
	pl := propertyLock{
		locker:   locker,
		clock:    clk,
		ttl:      defaultLockTTL,
		attempts: defaultLockAttempts,
		backoff:  defaultLockBackoff,
	}
	for _, opt := range opts {
		opt(&pl)
	}
	return pl
}

// acquire returns a Conflict once the retries are used up. The caller must call release.
func (pl propertyLock) acquire(ctx context.Context, propertyID string) (release func(), err error) {
	owner := uuid.NewString()
	for attempt := 1; ; attempt++ {
		err := pl.locker.AcquirePropertyLock(ctx, propertyID, owner, pl.clock.Now(), pl.ttl)
		if err == nil {
			break
		}
		if !errors.Is(err, models.ErrLockHeld) {
			return nil, err
		}
		if attempt >= pl.attempts {
			return nil, fmt.Errorf("%w: another update for this property is in progress, please retry", models.ErrConflict)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pl.backoff):
		}
	}

	return func() {
		// Release even if the request context was cancelled; the TTL is only a backstop.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = pl.locker.ReleasePropertyLock(releaseCtx, propertyID, owner)
	}, nil
}
