package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"server/internal/domain"
)

// LedgerStore is the single-attempt store operation behind the ledger: one
// atomic unit that creates a donation and increments its campaign's total.
type LedgerStore interface {
	Record(ctx context.Context, campaignID string, amount float64, donorID string) (string, error)
}

const (
	defaultLedgerRetries = 3
	ledgerRetryBackoff   = 50 * time.Millisecond
)

// Ledger records donations and keeps campaign totals consistent under
// concurrent donors. It owns the retry budget for transient store failures
// and the mapping onto the caller-facing error taxonomy: campaign-not-found
// passes through unchanged, everything else surfaces as
// domain.ErrTransientStore.
type Ledger struct {
	store      LedgerStore
	logger     zerolog.Logger
	maxRetries int
	backoff    time.Duration
	onCommit   func()
}

// NewLedger constructs a Ledger. maxRetries <= 0 selects the default budget.
// onCommit, when non-nil, runs after every successful commit (the live feed
// hooks in here); it must not block.
func NewLedger(store LedgerStore, logger zerolog.Logger, maxRetries int, onCommit func()) *Ledger {
	if maxRetries <= 0 {
		maxRetries = defaultLedgerRetries
	}
	return &Ledger{
		store:      store,
		logger:     logger,
		maxRetries: maxRetries,
		backoff:    ledgerRetryBackoff,
		onCommit:   onCommit,
	}
}

// RecordDonation executes the ledger transaction for one donation and
// returns the new donation's id. The amount must already be validated; this
// service only guarantees existence checking and atomicity. On failure
// nothing is left behind: no donation record and no total change.
func (l *Ledger) RecordDonation(ctx context.Context, campaignID string, amount float64, donorID string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= l.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", domain.ErrTransientStore, ctx.Err())
			case <-time.After(l.backoff * time.Duration(attempt)):
			}
		}

		id, err := l.store.Record(ctx, campaignID, amount, donorID)
		if err == nil {
			if l.onCommit != nil {
				l.onCommit()
			}
			return id, nil
		}
		if errors.Is(err, domain.ErrCampaignNotFound) {
			return "", err
		}
		if !retryableStoreError(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
		}
		lastErr = err
		l.logger.Warn().Err(err).
			Str("campaign_id", campaignID).
			Int("attempt", attempt+1).
			Msg("ledger commit conflict, retrying")
	}
	return "", fmt.Errorf("%w: retry budget exhausted: %v", domain.ErrTransientStore, lastErr)
}

// retryableStoreError reports whether another attempt can succeed. Postgres
// serialization failures (40001) and deadlocks (40P01) are retryable; other
// SQL errors are not. Non-SQL failures are assumed to be connection-level
// and worth one more try, except caller cancellation.
func retryableStoreError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return true
}
