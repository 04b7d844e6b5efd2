package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"gorm.io/gorm"

	"github.com/ledgerstack/ledgerstack/api"
	"github.com/ledgerstack/ledgerstack/config"
	"github.com/ledgerstack/ledgerstack/internal/cron"
	"github.com/ledgerstack/ledgerstack/internal/logger"
	"github.com/ledgerstack/ledgerstack/internal/repository"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
	"github.com/ledgerstack/ledgerstack/services"
)

type Server struct {
	config       *config.Config
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	repositories *repository.Repositories
	cronManager  *cron.CronManager
	tracerCloser io.Closer
}

func NewServer(cfg *config.Config, ledgerDB *gorm.DB) (*Server, error) {
	// Initialize logger
	logger := logger.NewAppLogger(cfg.Logger)
	logger.InitLogger()

	// Initialize tracing
	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, logger)
	if err != nil {
		log.Fatalf("Could not initialize jaeger tracer: %s", err.Error())
	}
	opentracing.SetGlobalTracer(tracer)

	// Initialize repositories
	repos := repository.InitRepositories(ledgerDB)

	// Initialize services
	svcs, err := services.InitServices(cfg, logger, repos)
	if err != nil {
		return nil, err
	}

	// Scheduled syncs run in-process; leader election keeps one active pod
	cronManager := cron.NewCronManager(logger, nil, svcs.SyncService, repos.User)

	// Initialize Gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	return &Server{
		config:       cfg,
		router:       router,
		services:     svcs,
		repositories: repos,
		cronManager:  cronManager,
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppConfig.APIPort,
			Handler: router,
		},
	}, nil
}

func (s *Server) Initialize(ctx context.Context) error {
	// Setup API routes
	api.RegisterRoutes(s.router, s.services, s.repositories, s.config.AppConfig.APIKey)

	return nil
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		// Create a new span for the panic
		span := opentracing.GlobalTracer().StartSpan(
			fmt.Sprintf("panic.%s", name),
		)
		defer span.Finish()

		// Mark span as failed
		ext.Error.Set(span, true)

		// Log panic details
		span.LogKV(
			"event", "panic",
			"process", name,
			"error", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)

		log.Printf("❌ Panic in %s: %v\n%s", name, r, debug.Stack())
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recoverWithJaeger(name)
	fn()
}

func (s *Server) Run() error {
	// Create root context for the application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize server components
	if err := s.Initialize(ctx); err != nil {
		return err
	}

	// Start scheduled syncs with panic recovery
	log.Println("Starting cron manager...")
	s.wrapGoroutine("cron_manager", func() {
		if err := s.cronManager.Start(os.Getenv("POD_NAME"), os.Getenv("POD_NAMESPACE")); err != nil {
			log.Printf("❌ Cron manager error: %v", err)
		}
	})
	log.Println("✅ Cron manager started successfully")

	// Start HTTP server in a goroutine with panic recovery
	go s.wrapGoroutine("http_server", func() {
		log.Println("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ HTTP server error: %v", err)
		}
	})
	log.Println("✅ HTTP server started successfully")
	log.Println("LedgerStack is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	defer s.recoverWithJaeger("shutdown")

	// Set up signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for termination signal
	<-stop
	log.Println("Shutting down...")

	// Create a context with timeout for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	// Shut down HTTP server
	log.Println("Shutting down HTTP server...")
	if s.tracerCloser != nil {
		s.tracerCloser.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ HTTP server shutdown error: %v", err)
	} else {
		log.Println("✅ HTTP server shut down successfully")
	}

	// Stop cron manager with timeout and panic recovery
	log.Println("Stopping cron manager...")
	stopDone := make(chan struct{})
	go s.wrapGoroutine("cron_manager_shutdown", func() {
		defer close(stopDone)
		s.cronManager.Stop()
	})

	// Wait for running jobs to finish with timeout
	select {
	case <-stopDone:
		log.Println("Cron manager stopped gracefully")
	case <-time.After(10 * time.Second):
		log.Println("⚠️ Cron manager stop timed out, forcing exit")
	}

	if s.services.EventPublisher != nil {
		if err := s.services.EventPublisher.Close(); err != nil {
			log.Printf("❌ Event publisher shutdown error: %v", err)
		}
	}

	return nil
}
