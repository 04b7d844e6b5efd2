package sync

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/ledgerstack/ledgerstack/config"
	"github.com/ledgerstack/ledgerstack/dto"
	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/enum"
	"github.com/ledgerstack/ledgerstack/internal/errors"
	"github.com/ledgerstack/ledgerstack/internal/logger"
	"github.com/ledgerstack/ledgerstack/internal/models"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
	"github.com/ledgerstack/ledgerstack/internal/utils"
	"github.com/ledgerstack/ledgerstack/services/extract"
)

const epochLayout = "2006-01-02"

type syncService struct {
	log          logger.Logger
	cfg          *config.SyncConfig
	mail         interfaces.MailService
	credentials  interfaces.CredentialService
	users        interfaces.UserRepository
	transactions interfaces.TransactionRepository
	syncStates   interfaces.SyncStateRepository
	publisher    interfaces.EventPublisher

	// userLocks serializes sync invocations per user. Two concurrent runs
	// for the same user could both pass the duplicate check before either
	// persists.
	userLocks sync.Map
}

func NewSyncService(
	log logger.Logger,
	cfg *config.SyncConfig,
	mail interfaces.MailService,
	credentials interfaces.CredentialService,
	users interfaces.UserRepository,
	transactions interfaces.TransactionRepository,
	syncStates interfaces.SyncStateRepository,
	publisher interfaces.EventPublisher,
) interfaces.SyncService {
	return &syncService{
		log:          log,
		cfg:          cfg,
		mail:         mail,
		credentials:  credentials,
		users:        users,
		transactions: transactions,
		syncStates:   syncStates,
		publisher:    publisher,
	}
}

func (s *syncService) RunSync(ctx context.Context, userID string) (*interfaces.SyncResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SyncService.RunSync")
	defer span.Finish()
	tracing.TagComponentService(span)
	tracing.TagUserId(span, userID)

	lock := s.lockFor(userID)
	if !lock.TryLock() {
		err := errors.NewSyncError(errors.KindValidation, "sync already running for user", errors.ErrSyncInProgress, false)
		tracing.TraceErr(span, err)
		return nil, err
	}
	defer lock.Unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.NewPersistenceFailure("failed to load user", err)
	}
	if user == nil {
		err := errors.NewSyncError(errors.KindValidation, "user not found", errors.ErrUserNotFound, false)
		tracing.TraceErr(span, err)
		return nil, err
	}

	status := enum.SyncStatusListing
	span.LogKV("sync.status", status.String())

	after, err := s.windowStart(ctx, userID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	ids, err := s.listWithRetry(ctx, user, after)
	if err != nil {
		status = enum.SyncStatusFailed
		span.LogKV("sync.status", status.String())
		tracing.TraceErr(span, err)
		return nil, err
	}

	status = enum.SyncStatusProcessing
	span.LogKV("sync.status", status.String(), "batch.size", len(ids))

	result := &interfaces.SyncResult{Scanned: len(ids)}
	window := time.Duration(s.cfg.DuplicateWindowHours) * time.Hour

	for _, messageID := range ids {
		// Abort between messages on cancellation; nothing beyond what is
		// already persisted is checkpointed and the cursor stays put.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		saved, err := s.processMessage(ctx, user, messageID, window)
		if err != nil {
			if errors.KindOf(err) == errors.KindPersistenceFailure {
				status = enum.SyncStatusFailed
				span.LogKV("sync.status", status.String())
				tracing.TraceErr(span, err)
				return nil, err
			}
			// Per-message failures never abort the batch.
			s.log.Warnf("Skipping message %s for user %s: %v", messageID, userID, err)
			continue
		}
		if saved {
			result.Saved++
		}
	}

	status = enum.SyncStatusFinalizing
	span.LogKV("sync.status", status.String())

	// The cursor advances to wall-clock completion time, not the newest
	// message timestamp. A partial failure next run re-scans an overlap
	// window instead of leaving the user permanently behind.
	if err := s.syncStates.SaveSyncState(ctx, userID, utils.Now()); err != nil {
		status = enum.SyncStatusFailed
		span.LogKV("sync.status", status.String())
		tracing.TraceErr(span, err)
		return nil, errors.NewPersistenceFailure("failed to advance sync cursor", err)
	}

	status = enum.SyncStatusDone
	span.LogKV("sync.status", status.String(), "result.scanned", result.Scanned, "result.saved", result.Saved)
	s.log.Infof("Sync completed for user %s: scanned=%d saved=%d", userID, result.Scanned, result.Saved)

	return result, nil
}

func (s *syncService) lockFor(userID string) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *syncService) windowStart(ctx context.Context, userID string) (time.Time, error) {
	state, err := s.syncStates.GetSyncState(ctx, userID)
	if err != nil {
		return time.Time{}, errors.NewPersistenceFailure("failed to load sync state", err)
	}
	if state != nil {
		return state.LastSyncedAt, nil
	}

	epoch, err := time.Parse(epochLayout, s.cfg.EpochDate)
	if err != nil {
		return time.Time{}, errors.NewSyncError(errors.KindValidation, "invalid sync epoch date", err, false)
	}
	return epoch, nil
}

// listWithRetry retries transient listing failures with backoff. An auth
// failure gets exactly one credential refresh and one more attempt before it
// surfaces.
func (s *syncService) listWithRetry(ctx context.Context, user *models.UserProfile, after time.Time) ([]string, error) {
	backoff := time.Duration(s.cfg.RetryBackoffSeconds) * time.Second
	refreshed := false

	var lastErr error
	for attempt := 0; attempt < s.cfg.RetryAttempts; attempt++ {
		ids, err := s.mail.ListMessageIDs(ctx, user, after, s.cfg.MaxResults)
		if err == nil {
			return ids, nil
		}
		lastErr = err

		switch {
		case errors.KindOf(err) == errors.KindAuthRequired && !refreshed:
			refreshed = true
			if _, refreshErr := s.credentials.EnsureValidToken(ctx, user); refreshErr != nil {
				return nil, refreshErr
			}
			// The refresh itself does not consume an attempt; the listing
			// always gets one retry with the fresh token.
			attempt--
		case errors.IsRetryable(err):
			s.log.Warnf("Listing messages for user %s failed (attempt %d): %v", user.ID, attempt+1, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		default:
			return nil, err
		}
	}

	return nil, lastErr
}

// processMessage runs one message through decode, filter, extract and the
// duplicate check. Returns whether a transaction was persisted. Only storage
// failures are returned with a persistence kind; everything else is a
// skippable per-message error.
func (s *syncService) processMessage(ctx context.Context, user *models.UserProfile, messageID string, window time.Duration) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SyncService.processMessage")
	defer span.Finish()
	tracing.TagComponentService(span)
	tracing.TagUserId(span, user.ID)
	span.SetTag("message.id", messageID)

	message, err := s.mail.GetMessage(ctx, user, messageID)
	if err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}

	body := extract.DecodeBody(message)
	if !extract.IsFinanciallyRelevant(body) {
		span.LogKV("skipped", "not financially relevant")
		return false, nil
	}

	candidate := extract.Extract(body, message.InternalDate)
	if candidate == nil {
		span.LogKV("skipped", "no amount found")
		return false, nil
	}

	duplicate, err := s.transactions.ExistsInWindow(ctx, user.ID, candidate.Amount, candidate.OccurredAt, window)
	if err != nil {
		tracing.TraceErr(span, err)
		return false, errors.NewPersistenceFailure("failed to check for duplicates", err)
	}
	if duplicate {
		span.LogKV("skipped", "duplicate within window")
		return false, nil
	}

	transaction := &models.Transaction{
		UserID:          user.ID,
		Type:            candidate.Type,
		Amount:          candidate.Amount,
		Source:          candidate.Source,
		Account:         candidate.Account,
		Description:     candidate.Description,
		OccurredAt:      candidate.OccurredAt,
		SourceMessageID: messageID,
	}
	if err := s.transactions.Create(ctx, transaction); err != nil {
		tracing.TraceErr(span, err)
		return false, errors.NewPersistenceFailure("failed to persist transaction", err)
	}

	if s.publisher != nil {
		event := dto.TransactionCreated{Transaction: transaction}
		if err := s.publisher.PublishDirectEvent(ctx, transaction.ID, enum.TRANSACTION, event); err != nil {
			// Best effort; the transaction is already durable.
			s.log.Warnf("Failed to publish transaction created event for %s: %v", transaction.ID, err)
		}
	}

	return true, nil
}
