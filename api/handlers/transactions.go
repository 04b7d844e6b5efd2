package handlers

import (
	goerrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/errors"
	"github.com/ledgerstack/ledgerstack/internal/repository"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
	"github.com/ledgerstack/ledgerstack/internal/utils"
)

type TransactionsHandler struct {
	analysis interfaces.AnalysisService
	repos    *repository.Repositories
}

func NewTransactionsHandler(analysis interfaces.AnalysisService, repos *repository.Repositories) *TransactionsHandler {
	return &TransactionsHandler{
		analysis: analysis,
		repos:    repos,
	}
}

// List returns the user's transactions, newest first
func (h *TransactionsHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListTransactions", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagUserId(span, id)

		transactions, err := h.repos.Transaction.ListByUser(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"transactions": transactions})
	}
}

// Categorize labels all uncategorized transactions via the classifier
func (h *TransactionsHandler) Categorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "CategorizeTransactions", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagUserId(span, id)

		labeled, err := h.analysis.CategorizeTransactions(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "categorization failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"labeled": labeled})
	}
}

// GenerateReport builds the monthly financial report, replacing any previous
// one for the same month
func (h *TransactionsHandler) GenerateReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GenerateReport", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagUserId(span, id)

		month, year, ok := reportPeriod(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month or year"})
			return
		}

		report, err := h.analysis.GenerateMonthlyReport(ctx, id, month, year)
		if err != nil {
			tracing.TraceErr(span, err)
			if goerrors.Is(err, errors.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

// GetReport returns a previously generated monthly report
func (h *TransactionsHandler) GetReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetReport", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagUserId(span, id)

		month, year, ok := reportPeriod(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month or year"})
			return
		}

		report, err := h.analysis.GetMonthlyReport(ctx, id, month, year)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if report == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

// reportPeriod reads month/year query params, defaulting to the current month.
func reportPeriod(c *gin.Context) (int, int, bool) {
	now := utils.Now()
	month := int(now.Month())
	year := now.Year()

	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, false
		}
		month = parsed
	}
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 {
			return 0, 0, false
		}
		year = parsed
	}
	return month, year, true
}
