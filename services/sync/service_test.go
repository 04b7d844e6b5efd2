package sync

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/ledgerstack/ledgerstack/config"
	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/enum"
	ledgererrors "github.com/ledgerstack/ledgerstack/internal/errors"
	"github.com/ledgerstack/ledgerstack/internal/logger"
	"github.com/ledgerstack/ledgerstack/internal/models"
)

type fakeMail struct {
	messages map[string]*interfaces.RawMessage
	order    []string
	listErr  error
	getErr   map[string]error

	listCalls int
}

func (f *fakeMail) ListMessageIDs(ctx context.Context, user *models.UserProfile, after time.Time, maxResults int64) ([]string, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.order, nil
}

func (f *fakeMail) GetMessage(ctx context.Context, user *models.UserProfile, messageID string) (*interfaces.RawMessage, error) {
	if err, ok := f.getErr[messageID]; ok {
		return nil, err
	}
	return f.messages[messageID], nil
}

type fakeCredentials struct {
	refreshErr   error
	refreshCalls int
}

func (f *fakeCredentials) AuthURL(state string) string { return "https://example.test/auth" }

func (f *fakeCredentials) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "exchanged"}, nil
}

func (f *fakeCredentials) EnsureValidToken(ctx context.Context, user *models.UserProfile) (*oauth2.Token, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &oauth2.Token{AccessToken: "fresh"}, nil
}

type fakeUsers struct {
	user *models.UserProfile
}

func (f *fakeUsers) Create(ctx context.Context, user *models.UserProfile) error { return nil }

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUsers) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.UserProfile, error) {
	return nil, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	return nil, nil
}

func (f *fakeUsers) ListWithGoogleCredential(ctx context.Context) ([]*models.UserProfile, error) {
	return []*models.UserProfile{f.user}, nil
}

func (f *fakeUsers) Update(ctx context.Context, user *models.UserProfile) error { return nil }

func (f *fakeUsers) SaveGoogleTokens(ctx context.Context, userID, accessToken, refreshToken string) error {
	return nil
}

type fakeTransactions struct {
	stored    []*models.Transaction
	createErr error
}

func (f *fakeTransactions) Create(ctx context.Context, transaction *models.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	transaction.ID = "txn_test"
	f.stored = append(f.stored, transaction)
	return nil
}

func (f *fakeTransactions) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	return nil, nil
}

func (f *fakeTransactions) ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return f.stored, nil
}

func (f *fakeTransactions) ListUncategorizedByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return nil, nil
}

func (f *fakeTransactions) SetCategory(ctx context.Context, transactionID, category string) error {
	return nil
}

func (f *fakeTransactions) ExistsInWindow(ctx context.Context, userID string, amount float64, occurredAt time.Time, window time.Duration) (bool, error) {
	for _, transaction := range f.stored {
		if transaction.UserID != userID || transaction.Amount != amount {
			continue
		}
		delta := transaction.OccurredAt.Sub(occurredAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= window {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTransactions) TotalsByType(ctx context.Context, userID string) (*interfaces.TypeTotals, error) {
	return &interfaces.TypeTotals{}, nil
}

func (f *fakeTransactions) SpendByCategory(ctx context.Context, userID string) ([]interfaces.CategorySpend, error) {
	return nil, nil
}

type fakeSyncStates struct {
	state   *models.SyncState
	saveErr error
}

func (f *fakeSyncStates) GetSyncState(ctx context.Context, userID string) (*models.SyncState, error) {
	return f.state, nil
}

func (f *fakeSyncStates) SaveSyncState(ctx context.Context, userID string, lastSyncedAt time.Time) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = &models.SyncState{UserID: userID, LastSyncedAt: lastSyncedAt}
	return nil
}

func (f *fakeSyncStates) DeleteSyncState(ctx context.Context, userID string) error {
	f.state = nil
	return nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) PublishDirectEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	f.published = append(f.published, entityId)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func plainMessage(id, body string, internalDate time.Time) *interfaces.RawMessage {
	return &interfaces.RawMessage{
		ID:           id,
		InternalDate: internalDate,
		Payload: &interfaces.MessagePart{
			MimeType: "text/plain",
			Data:     base64.URLEncoding.EncodeToString([]byte(body)),
		},
	}
}

type fixture struct {
	service      interfaces.SyncService
	mail         *fakeMail
	credentials  *fakeCredentials
	transactions *fakeTransactions
	syncStates   *fakeSyncStates
	publisher    *fakePublisher
}

func newFixture(t *testing.T, mail *fakeMail) *fixture {
	t.Helper()

	return newFixtureWithConfig(t, mail, &config.SyncConfig{
		EpochDate:            "2024-01-01",
		DuplicateWindowHours: 24,
		MaxResults:           50,
		RetryAttempts:        3,
		RetryBackoffSeconds:  0,
	})
}

func newFixtureWithConfig(t *testing.T, mail *fakeMail, cfg *config.SyncConfig) *fixture {
	t.Helper()

	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()

	f := &fixture{
		mail:         mail,
		credentials:  &fakeCredentials{},
		transactions: &fakeTransactions{},
		syncStates:   &fakeSyncStates{},
		publisher:    &fakePublisher{},
	}

	users := &fakeUsers{user: &models.UserProfile{
		ID:                 "user_1",
		Email:              "u@example.test",
		GoogleAccessToken:  "access",
		GoogleRefreshToken: "refresh",
	}}

	f.service = NewSyncService(log, cfg, mail, f.credentials, users, f.transactions, f.syncStates, f.publisher)
	return f
}

func TestRunSync_SavesExtractedTransaction(t *testing.T) {
	internalDate := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)
	mail := &fakeMail{
		order: []string{"m1"},
		messages: map[string]*interfaces.RawMessage{
			"m1": plainMessage("m1", "Rs. 1,250.00 debited from A/c X1234 on 05-06-2024", internalDate),
		},
	}
	f := newFixture(t, mail)

	result, err := f.service.RunSync(context.Background(), "user_1")

	require.NoError(t, err)
	require.Equal(t, 1, result.Scanned)
	require.Equal(t, 1, result.Saved)

	require.Len(t, f.transactions.stored, 1)
	saved := f.transactions.stored[0]
	require.Equal(t, enum.TransactionDebited, saved.Type)
	require.Equal(t, 1250.00, saved.Amount)
	require.Equal(t, "X1234", saved.Account)
	require.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), saved.OccurredAt)
	require.Equal(t, "m1", saved.SourceMessageID)

	require.NotNil(t, f.syncStates.state)
	require.Equal(t, []string{"txn_test"}, f.publisher.published)
}

func TestRunSync_SecondRunSavesNothing(t *testing.T) {
	internalDate := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)
	mail := &fakeMail{
		order: []string{"m1"},
		messages: map[string]*interfaces.RawMessage{
			"m1": plainMessage("m1", "Rs. 500 debited from card", internalDate),
		},
	}
	f := newFixture(t, mail)

	first, err := f.service.RunSync(context.Background(), "user_1")
	require.NoError(t, err)
	require.Equal(t, 1, first.Saved)

	second, err := f.service.RunSync(context.Background(), "user_1")
	require.NoError(t, err)
	require.Equal(t, 0, second.Saved)
	require.Len(t, f.transactions.stored, 1)
}

func TestRunSync_DuplicateWindow(t *testing.T) {
	occurred := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	mail := &fakeMail{
		order: []string{"m1"},
		messages: map[string]*interfaces.RawMessage{
			"m1": plainMessage("m1", "Rs. 500 debited on 05-06-2024", occurred),
		},
	}
	f := newFixture(t, mail)
	f.transactions.stored = []*models.Transaction{{
		UserID:     "user_1",
		Amount:     500,
		OccurredAt: occurred.Add(12 * time.Hour),
	}}

	result, err := f.service.RunSync(context.Background(), "user_1")
	require.NoError(t, err)
	require.Equal(t, 0, result.Saved)

	// Same amount just outside the window is a distinct transaction.
	f.transactions.stored[0].OccurredAt = occurred.Add(25 * time.Hour)
	result, err = f.service.RunSync(context.Background(), "user_1")
	require.NoError(t, err)
	require.Equal(t, 1, result.Saved)
}

func TestRunSync_AuthFailureLeavesCursorUntouched(t *testing.T) {
	mail := &fakeMail{
		listErr: ledgererrors.NewAuthRequired("token expired", nil),
	}
	f := newFixture(t, mail)
	f.credentials.refreshErr = ledgererrors.NewAuthRequired("refresh rejected", nil)

	result, err := f.service.RunSync(context.Background(), "user_1")

	require.Nil(t, result)
	require.Equal(t, ledgererrors.KindAuthRequired, ledgererrors.KindOf(err))
	require.Equal(t, 1, f.credentials.refreshCalls)
	require.Nil(t, f.syncStates.state)
}

func TestRunSync_AuthFailureRetriesOnceAfterRefresh(t *testing.T) {
	mail := &fakeMail{
		listErr: ledgererrors.NewAuthRequired("token expired", nil),
	}
	f := newFixture(t, mail)

	_, err := f.service.RunSync(context.Background(), "user_1")

	// Refresh succeeded but listing still fails with the same error; it must
	// not refresh again.
	require.Equal(t, ledgererrors.KindAuthRequired, ledgererrors.KindOf(err))
	require.Equal(t, 1, f.credentials.refreshCalls)
}

func TestRunSync_CancelledContextLeavesCursorUntouched(t *testing.T) {
	internalDate := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)
	mail := &fakeMail{
		order: []string{"m1"},
		messages: map[string]*interfaces.RawMessage{
			"m1": plainMessage("m1", "Rs. 500 debited from card", internalDate),
		},
	}
	f := newFixture(t, mail)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.service.RunSync(ctx, "user_1")

	require.Nil(t, result)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, f.transactions.stored)
	require.Nil(t, f.syncStates.state)
}

func TestRunSync_ConcurrentSyncRejected(t *testing.T) {
	mail := &fakeMail{order: []string{}}
	f := newFixture(t, mail)

	svc := f.service.(*syncService)
	lock := svc.lockFor("user_1")
	lock.Lock()
	defer lock.Unlock()

	result, err := f.service.RunSync(context.Background(), "user_1")

	require.Nil(t, result)
	require.ErrorIs(t, err, ledgererrors.ErrSyncInProgress)
	require.Equal(t, ledgererrors.KindValidation, ledgererrors.KindOf(err))
	require.Nil(t, f.syncStates.state)
}

func TestRunSync_RefreshDoesNotConsumeRetryAttempt(t *testing.T) {
	mail := &fakeMail{
		listErr: ledgererrors.NewAuthRequired("token expired", nil),
	}
	f := newFixtureWithConfig(t, mail, &config.SyncConfig{
		EpochDate:            "2024-01-01",
		DuplicateWindowHours: 24,
		MaxResults:           50,
		RetryAttempts:        1,
		RetryBackoffSeconds:  0,
	})

	_, err := f.service.RunSync(context.Background(), "user_1")

	// Even with a single attempt the listing is retried once after the
	// credential refresh.
	require.Equal(t, ledgererrors.KindAuthRequired, ledgererrors.KindOf(err))
	require.Equal(t, 1, f.credentials.refreshCalls)
	require.Equal(t, 2, f.mail.listCalls)
}

func TestRunSync_TransientListFailureRetries(t *testing.T) {
	mail := &fakeMail{
		listErr: ledgererrors.NewCollaboratorUnavailable("rate limited", nil),
	}
	f := newFixture(t, mail)

	_, err := f.service.RunSync(context.Background(), "user_1")

	require.Equal(t, ledgererrors.KindCollaboratorUnavailable, ledgererrors.KindOf(err))
	require.Equal(t, 3, f.mail.listCalls)
	require.Nil(t, f.syncStates.state)
}

func TestRunSync_PerMessageErrorSkipped(t *testing.T) {
	internalDate := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)
	mail := &fakeMail{
		order: []string{"bad", "good"},
		messages: map[string]*interfaces.RawMessage{
			"good": plainMessage("good", "₹300 credited to your wallet as cashback", internalDate),
		},
		getErr: map[string]error{
			"bad": ledgererrors.NewCollaboratorUnavailable("fetch failed", nil),
		},
	}
	f := newFixture(t, mail)

	result, err := f.service.RunSync(context.Background(), "user_1")

	require.NoError(t, err)
	require.Equal(t, 2, result.Scanned)
	require.Equal(t, 1, result.Saved)
	require.NotNil(t, f.syncStates.state)
}

func TestRunSync_IrrelevantMessagesScannedNotSaved(t *testing.T) {
	internalDate := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)
	mail := &fakeMail{
		order: []string{"otp"},
		messages: map[string]*interfaces.RawMessage{
			"otp": plainMessage("otp", "Your OTP is 482913", internalDate),
		},
	}
	f := newFixture(t, mail)

	result, err := f.service.RunSync(context.Background(), "user_1")

	require.NoError(t, err)
	require.Equal(t, 1, result.Scanned)
	require.Equal(t, 0, result.Saved)
}

func TestRunSync_PersistenceFailureAbortsBatch(t *testing.T) {
	internalDate := time.Date(2024, 6, 5, 10, 0, 0, 0, time.UTC)
	mail := &fakeMail{
		order: []string{"m1", "m2"},
		messages: map[string]*interfaces.RawMessage{
			"m1": plainMessage("m1", "Rs. 100 debited from card", internalDate),
			"m2": plainMessage("m2", "Rs. 200 debited from card", internalDate),
		},
	}
	f := newFixture(t, mail)
	f.transactions.createErr = ledgererrors.NewPersistenceFailure("insert failed", nil)

	result, err := f.service.RunSync(context.Background(), "user_1")

	require.Nil(t, result)
	require.Equal(t, ledgererrors.KindPersistenceFailure, ledgererrors.KindOf(err))
	require.Nil(t, f.syncStates.state)
}

func TestRunSync_UnknownUser(t *testing.T) {
	f := newFixture(t, &fakeMail{})

	_, err := f.service.RunSync(context.Background(), "missing")

	require.Equal(t, ledgererrors.KindValidation, ledgererrors.KindOf(err))
}

func TestRunSync_CursorBoundsNextWindow(t *testing.T) {
	mail := &fakeMail{order: []string{}}
	f := newFixture(t, mail)

	before := time.Now().UTC()
	_, err := f.service.RunSync(context.Background(), "user_1")
	require.NoError(t, err)

	require.NotNil(t, f.syncStates.state)
	require.False(t, f.syncStates.state.LastSyncedAt.Before(before))
}
