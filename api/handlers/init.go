package handlers

import (
	"github.com/ledgerstack/ledgerstack/internal/repository"
	"github.com/ledgerstack/ledgerstack/services"
)

type APIHandlers struct {
	Users        *UsersHandler
	OAuth        *OAuthHandler
	Sync         *SyncHandler
	Transactions *TransactionsHandler
}

func InitHandlers(s *services.Services, repos *repository.Repositories) *APIHandlers {
	return &APIHandlers{
		Users:        NewUsersHandler(repos),
		OAuth:        NewOAuthHandler(s.CredentialService, repos),
		Sync:         NewSyncHandler(s.SyncService, repos.SyncState),
		Transactions: NewTransactionsHandler(s.AnalysisService, repos),
	}
}
