package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ledgerstack/ledgerstack/config"
	"github.com/ledgerstack/ledgerstack/internal/database"
	"github.com/ledgerstack/ledgerstack/internal/repository"
	"github.com/ledgerstack/ledgerstack/server"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ledgerstack <command>")
		fmt.Println("Commands:")
		fmt.Println("  migrate   Run database migrations")
		fmt.Println("  server    Start the application server")
		os.Exit(1)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Config initialization failed: %v", err)
	}
	if cfg == nil {
		log.Fatalf("config is empty")
	}

	// Setup the database
	ledgerDB, err := database.InitLedgerDatabase(&database.DatabaseConfig{
		DBName:          cfg.LedgerDatabaseConfig.DBName,
		Host:            cfg.LedgerDatabaseConfig.Host,
		Port:            cfg.LedgerDatabaseConfig.Port,
		User:            cfg.LedgerDatabaseConfig.User,
		Password:        cfg.LedgerDatabaseConfig.Password,
		MaxConn:         cfg.LedgerDatabaseConfig.MaxConn,
		MaxIdleConn:     cfg.LedgerDatabaseConfig.MaxIdleConn,
		ConnMaxLifetime: cfg.LedgerDatabaseConfig.ConnMaxLifetime,
		LogLevel:        cfg.LedgerDatabaseConfig.LogLevel,
		SSLMode:         cfg.LedgerDatabaseConfig.SSLMode,
	})
	if err != nil {
		log.Fatalf("Ledger database initialization failed: %v", err)
	}

	switch os.Args[1] {
	case "migrate":

		err := repository.MigrateDB(
			cfg.LedgerDatabaseConfig.MaxConn,
			cfg.LedgerDatabaseConfig.MaxIdleConn,
			cfg.LedgerDatabaseConfig.ConnMaxLifetime,
			ledgerDB,
		)
		if err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		log.Println("Database migration completed successfully")

	case "server":

		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("LedgerStack starting up...")

		server, err := server.NewServer(cfg, ledgerDB)
		if err != nil {
			log.Fatalf("Server setup failed: %v", err)
		}

		err = server.Run()
		if err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}

		log.Println("Shutdown complete")

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		fmt.Println("Usage: ledgerstack <command>")
		fmt.Println("Commands:")
		fmt.Println("  migrate   Run database migrations")
		fmt.Println("  server    Start the application server")
		os.Exit(1)
	}
}
