package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
	"github.com/ericfisherdev/examdesk/internal/domain/port/driven"
)

// RecoveryLedger issues and redeems single-use recovery grants.
// Expiry is lazy: an expired grant simply fails validation when examined.
type RecoveryLedger struct {
	mu     sync.Mutex
	store  driven.RecoveryStore
	clock  Clock
	logger *slog.Logger
}

// NewRecoveryLedger creates a RecoveryLedger. clock may be nil.
func NewRecoveryLedger(store driven.RecoveryStore, clock Clock, logger *slog.Logger) *RecoveryLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoveryLedger{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Issue creates an unused grant for email that expires ttl from now.
// It does not check that email belongs to a credential.
func (l *RecoveryLedger) Issue(ctx context.Context, email string, ttl time.Duration) (*model.RecoveryGrant, error) {
	token, err := newOpaqueToken(model.RecoveryTokenPrefix)
	if err != nil {
		return nil, err
	}

	now := l.clock.now().UTC()
	grant := model.RecoveryGrant{
		Token:     token,
		Email:     email,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if err := l.store.Insert(ctx, grant); err != nil {
		return nil, fmt.Errorf("insert recovery grant: %w", err)
	}
	return &grant, nil
}

// Peek returns the grant for token without consuming it. It applies the same
// validity rules as Consume.
func (l *RecoveryLedger) Peek(ctx context.Context, token string) (*model.RecoveryGrant, error) {
	grant, err := l.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := checkGrant(grant, l.clock.now()); err != nil {
		return nil, err
	}
	return grant, nil
}

// Consume redeems token exactly once. Every later call, and any call after
// expiry, fails with an error wrapping ErrRecoveryInvalid.
func (l *RecoveryLedger) Consume(ctx context.Context, token string) (*model.RecoveryGrant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	grant, err := l.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	now := l.clock.now()
	if err := checkGrant(grant, now); err != nil {
		return nil, err
	}

	flipped, err := l.store.MarkUsed(ctx, token, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("mark recovery grant used: %w", err)
	}
	if !flipped {
		// Another process sharing the store won the race.
		return nil, ErrAlreadyConsumed
	}

	grant.Used = true
	return grant, nil
}

func (l *RecoveryLedger) lookup(ctx context.Context, token string) (*model.RecoveryGrant, error) {
	if !strings.HasPrefix(token, model.RecoveryTokenPrefix) {
		return nil, ErrRecoveryUnknown
	}
	grant, err := l.store.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("lookup recovery grant: %w", err)
	}
	return grant, nil
}

func checkGrant(grant *model.RecoveryGrant, now time.Time) error {
	switch {
	case grant == nil:
		return ErrRecoveryUnknown
	case grant.Used:
		return ErrAlreadyConsumed
	case !grant.Usable(now):
		return ErrRecoveryExpired
	}
	return nil
}
