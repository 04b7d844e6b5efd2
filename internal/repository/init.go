package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/models"
)

type Repositories struct {
	User            interfaces.UserRepository
	Transaction     interfaces.TransactionRepository
	SyncState       interfaces.SyncStateRepository
	FinancialReport interfaces.FinancialReportRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(db),
		Transaction:     NewTransactionRepository(db),
		SyncState:       NewSyncStateRepository(db),
		FinancialReport: NewFinancialReportRepository(db),
	}
}

func MigrateDB(dbMaxConn, dbMaxIdleConn, dbConnMaxLifetime int, ledgerDB *gorm.DB) error {
	db, err := ledgerDB.DB()
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(5)

	err = ledgerDB.AutoMigrate(
		&models.UserProfile{},
		&models.Transaction{},
		&models.SyncState{},
		&models.FinancialReport{},
	)

	db.SetMaxIdleConns(dbMaxIdleConn)
	db.SetMaxOpenConns(dbMaxConn)
	db.SetConnMaxLifetime(time.Duration(dbConnMaxLifetime) * time.Minute)

	return err
}
