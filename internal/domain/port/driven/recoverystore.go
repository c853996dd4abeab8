package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
)

// RecoveryStore defines the driven port for recovery grant persistence.
type RecoveryStore interface {
	Insert(ctx context.Context, grant model.RecoveryGrant) error

	// GetByToken returns (nil, nil) if no grant has the given token.
	GetByToken(ctx context.Context, token string) (*model.RecoveryGrant, error)

	// MarkUsed flips used to true only if the grant exists, is unused, and
	// expires after now. It reports whether the flip happened. The check and
	// the write are a single atomic operation.
	MarkUsed(ctx context.Context, token string, now time.Time) (bool, error)

	// DeleteInert removes grants that were used or expired before cutoff and
	// returns the number removed.
	DeleteInert(ctx context.Context, cutoff time.Time) (int64, error)
}
