package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/opentracing/opentracing-go"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/errors"
	"github.com/ledgerstack/ledgerstack/internal/logger"
	"github.com/ledgerstack/ledgerstack/internal/models"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
	"github.com/ledgerstack/ledgerstack/internal/utils"
)

type analysisService struct {
	log          logger.Logger
	ai           interfaces.AIService
	users        interfaces.UserRepository
	transactions interfaces.TransactionRepository
	reports      interfaces.FinancialReportRepository
}

func NewAnalysisService(
	log logger.Logger,
	ai interfaces.AIService,
	users interfaces.UserRepository,
	transactions interfaces.TransactionRepository,
	reports interfaces.FinancialReportRepository,
) interfaces.AnalysisService {
	return &analysisService{
		log:          log,
		ai:           ai,
		users:        users,
		transactions: transactions,
		reports:      reports,
	}
}

func (s *analysisService) CategorizeTransactions(ctx context.Context, userID string) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AnalysisService.CategorizeTransactions")
	defer span.Finish()
	tracing.TagComponentService(span)
	tracing.TagUserId(span, userID)

	uncategorized, err := s.transactions.ListUncategorizedByUser(ctx, userID)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}
	if len(uncategorized) == 0 {
		return 0, nil
	}

	descriptions := make([]string, len(uncategorized))
	for i, transaction := range uncategorized {
		descriptions[i] = transaction.Description
	}

	labels, err := s.ai.Categorize(ctx, descriptions)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	labeled := 0
	for i, transaction := range uncategorized {
		if i >= len(labels) {
			break
		}
		if err := s.transactions.SetCategory(ctx, transaction.ID, labels[i]); err != nil {
			s.log.Warnf("Failed to set category on transaction %s: %v", transaction.ID, err)
			continue
		}
		labeled++
	}
	span.LogKV("result.labeled", labeled)

	return labeled, nil
}

func (s *analysisService) GenerateMonthlyReport(ctx context.Context, userID string, month, year int) (*models.FinancialReport, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AnalysisService.GenerateMonthlyReport")
	defer span.Finish()
	tracing.TagComponentService(span)
	tracing.TagUserId(span, userID)
	span.LogKV("month", month, "year", year)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if user == nil {
		return nil, errors.ErrUserNotFound
	}

	totals, err := s.transactions.TotalsByType(ctx, userID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	spend, err := s.transactions.SpendByCategory(ctx, userID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	byCategory := make(map[string]interface{}, len(spend))
	var summary strings.Builder
	for _, item := range spend {
		byCategory[item.Category] = item.Total
		summary.WriteString(fmt.Sprintf("- %s: %.2f\n", item.Category, item.Total))
	}

	insights, err := s.ai.GenerateInsights(ctx, interfaces.InsightsRequest{
		Salary:          user.Salary,
		Income:          totals.Credited,
		Expenses:        totals.Debited,
		CategorySummary: summary.String(),
	})
	if err != nil {
		// The report is still useful without the narrative.
		s.log.Warnf("Failed to generate insights for user %s: %v", userID, err)
		tracing.TraceErr(span, err)
		insights = ""
	}

	report := &models.FinancialReport{
		UserID: userID,
		Month:  month,
		Year:   year,
		ReportData: models.JSONMap{
			"income":     totals.Credited,
			"expenses":   totals.Debited,
			"byCategory": byCategory,
			"insights":   insights,
		},
		GeneratedAt: utils.Now(),
	}
	if err := s.reports.Save(ctx, report); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return report, nil
}

func (s *analysisService) GetMonthlyReport(ctx context.Context, userID string, month, year int) (*models.FinancialReport, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AnalysisService.GetMonthlyReport")
	defer span.Finish()
	tracing.TagComponentService(span)
	tracing.TagUserId(span, userID)

	report, err := s.reports.GetByUserMonth(ctx, userID, month, year)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return report, nil
}
