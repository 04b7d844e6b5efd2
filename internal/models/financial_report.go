package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/ledgerstack/ledgerstack/internal/utils"
)

// FinancialReport caches a generated monthly analysis so repeated dashboard
// loads do not re-run the advisor model.
type FinancialReport struct {
	ID          string    `gorm:"column:id;type:varchar(50);primaryKey"`
	UserID      string    `gorm:"column:user_id;type:varchar(50);index:idx_report_user_month,unique;not null"`
	Month       int       `gorm:"column:month;index:idx_report_user_month,unique;not null"`
	Year        int       `gorm:"column:year;index:idx_report_user_month,unique;not null"`
	ReportData  JSONMap   `gorm:"column:report_data;type:jsonb"`
	GeneratedAt time.Time `gorm:"column:generated_at;type:timestamp;default:current_timestamp"`
}

func (FinancialReport) TableName() string {
	return "financial_reports"
}

func (r *FinancialReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = utils.GenerateNanoIDWithPrefix("rpt", 24)
	}
	r.GeneratedAt = utils.Now()
	return nil
}
