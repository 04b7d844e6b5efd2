package services

import (
	"github.com/ledgerstack/ledgerstack/config"
	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/logger"
	"github.com/ledgerstack/ledgerstack/internal/repository"
	"github.com/ledgerstack/ledgerstack/services/analysis"
	"github.com/ledgerstack/ledgerstack/services/classifier"
	"github.com/ledgerstack/ledgerstack/services/events"
	"github.com/ledgerstack/ledgerstack/services/gmail"
	"github.com/ledgerstack/ledgerstack/services/sync"
)

type Services struct {
	CredentialService interfaces.CredentialService
	MailService       interfaces.MailService
	AIService         interfaces.AIService
	AnalysisService   interfaces.AnalysisService
	SyncService       interfaces.SyncService
	EventPublisher    interfaces.EventPublisher
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	var publisher interfaces.EventPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		publisherConfig := &events.PublisherConfig{
			MessageTTL:          events.DefaultMessageTTL,
			MaxRetries:          events.DefaultMaxRetries,
			PublishTimeout:      events.DefaultPublishTimeout,
			ReconnectBackoff:    events.DefaultReconnectBackoff,
			MaxReconnectBackoff: events.DefaultMaxReconnectBackoff,
		}
		rabbitPublisher, err := events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log, publisherConfig)
		if err != nil {
			return nil, err
		}
		publisher = rabbitPublisher
	}

	credentialService := gmail.NewCredentialService(log, cfg.GoogleOAuthConfig, repos.User)
	mailService := gmail.NewGmailService(log, credentialService)
	aiService := classifier.NewGeminiService(log, cfg.GeminiConfig)

	services := Services{
		CredentialService: credentialService,
		MailService:       mailService,
		AIService:         aiService,
		AnalysisService:   analysis.NewAnalysisService(log, aiService, repos.User, repos.Transaction, repos.FinancialReport),
		SyncService: sync.NewSyncService(
			log,
			cfg.SyncConfig,
			mailService,
			credentialService,
			repos.User,
			repos.Transaction,
			repos.SyncState,
			publisher,
		),
		EventPublisher: publisher,
	}

	return &services, nil
}
