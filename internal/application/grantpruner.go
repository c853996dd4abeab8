package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/examdesk/internal/domain/port/driven"
)

// DefaultGrantRetention is how long an inert grant is kept before pruning.
const DefaultGrantRetention = 24 * time.Hour

// pruneRequest represents a manual prune trigger.
type pruneRequest struct {
	done chan pruneResult
}

type pruneResult struct {
	removed int64
	err     error
}

// GrantPruner periodically deletes recovery grants that were used or expired
// more than the retention window ago. Ledger correctness never depends on it.
type GrantPruner struct {
	store     driven.RecoveryStore
	interval  time.Duration
	retention time.Duration
	clock     Clock
	logger    *slog.Logger
	pruneCh   chan pruneRequest
}

// NewGrantPruner creates a GrantPruner. clock may be nil.
func NewGrantPruner(store driven.RecoveryStore, interval, retention time.Duration, clock Clock, logger *slog.Logger) *GrantPruner {
	if logger == nil {
		logger = slog.Default()
	}
	if retention <= 0 {
		retention = DefaultGrantRetention
	}
	return &GrantPruner{
		store:     store,
		interval:  interval,
		retention: retention,
		clock:     clock,
		logger:    logger,
		pruneCh:   make(chan pruneRequest),
	}
}

// Start runs an immediate prune, then prunes on the configured interval and
// serves manual PruneNow requests. It blocks until ctx is canceled. A
// non-positive interval disables the ticker but manual requests still work.
func (p *GrantPruner) Start(ctx context.Context) {
	if _, err := p.prune(ctx); err != nil {
		p.logger.Error("initial grant prune failed", "error", err)
	}

	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("grant pruner stopped")
			return
		case <-tick:
			if _, err := p.prune(ctx); err != nil {
				p.logger.Error("grant prune cycle failed", "error", err)
			}
		case req := <-p.pruneCh:
			removed, err := p.prune(ctx)
			req.done <- pruneResult{removed: removed, err: err}
		}
	}
}

// PruneNow asks the running pruner for an immediate prune and waits for the
// number of grants removed. It blocks until the prune completes or ctx is
// canceled.
func (p *GrantPruner) PruneNow(ctx context.Context) (int64, error) {
	done := make(chan pruneResult, 1)

	select {
	case p.pruneCh <- pruneRequest{done: done}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case res := <-done:
		return res.removed, res.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (p *GrantPruner) prune(ctx context.Context) (int64, error) {
	cutoff := p.clock.now().UTC().Add(-p.retention)
	removed, err := p.store.DeleteInert(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune recovery grants: %w", err)
	}
	if removed > 0 {
		p.logger.Info("pruned recovery grants", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}
