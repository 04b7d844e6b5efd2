package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerstack/ledgerstack/internal/enum"
	"github.com/ledgerstack/ledgerstack/internal/models"
	"github.com/ledgerstack/ledgerstack/internal/utils"
)

const maxDescriptionLength = 255

var debitTerms = []string{"debited", "spent", "paid", "sent", "purchase", "withdrawn"}
var creditTerms = []string{"credited", "received", "refund", "deposit", "cashback", "reward"}

// amountPattern is the primary currency-prefixed form; the remaining patterns
// cover labeled and suffixed amounts. Order matters: the first match across
// the list wins.
var amountPattern = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹|\$|€|£)\s*([\d,]+(?:\.\d{1,2})?)`)

var amountPatterns = []*regexp.Regexp{
	amountPattern,
	regexp.MustCompile(`(?i)amount\s*:?\s*(?:rs\.?|inr|₹)?\s*([\d,]+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`(?i)total\s*:?\s*(?:rs\.?|inr|₹)?\s*([\d,]+(?:\.\d{1,2})?)`),
	regexp.MustCompile(`(?i)([\d,]+(?:\.\d{1,2})?)\s*(?:rs\.?|inr|rupees)\b`),
}

var numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
var textualDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+(\d{4})\b`)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var sourcePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)purchase\s+at\s+([A-Za-z0-9&@.'\-][A-Za-z0-9 &@.'\-]*)`),
	regexp.MustCompile(`(?i)payment\s+of\s+[^.\n]*?\bto\s+([A-Za-z0-9&@.'\-][A-Za-z0-9 &@.'\-]*)`),
	regexp.MustCompile(`(?i)\b(?:to|at|from|by)\s+([A-Za-z0-9&@.'\-][A-Za-z0-9 &@.'\-]*)`),
}

var accountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)a/c\s*(?:no\.?\s*)?(?:ending\s+(?:in\s+)?)?[:#]?\s*([Xx*#]*\d[Xx*#\d]*)`),
	regexp.MustCompile(`(?i)account\s+(?:no\.?\s*)?(?:ending\s+(?:in\s+)?)?[:#]?\s*([Xx*#]*\d[Xx*#\d]*)`),
	regexp.MustCompile(`(?i)card\s+(?:no\.?\s*)?(?:ending\s+(?:in\s+)?)?[:#]?\s*([Xx*#]*\d[Xx*#\d]*)`),
}

const (
	defaultSource  = "Unknown"
	defaultAccount = "Not found"
)

// Extract derives a candidate transaction from decoded body text. Returns nil
// when no currency amount is present: a zero-amount transaction is never
// fabricated. Without an in-body date the fallback timestamp is used.
func Extract(body string, fallback time.Time) *models.ExtractedTransaction {
	if strings.TrimSpace(body) == "" {
		return nil
	}

	amount, ok := extractAmount(body)
	if !ok || amount <= 0 {
		return nil
	}

	return &models.ExtractedTransaction{
		Type:        classifyType(body),
		Amount:      amount,
		OccurredAt:  extractDate(body, fallback),
		Description: utils.Truncate(utils.FirstLine(body), maxDescriptionLength),
		Source:      extractSource(body),
		Account:     extractAccount(body),
	}
}

// classifyType scans for debit and credit vocabulary. Credit wins when both
// are present: refund and cashback notifications routinely echo the original
// debit wording.
func classifyType(body string) enum.TransactionType {
	lower := strings.ToLower(body)

	for _, term := range creditTerms {
		if strings.Contains(lower, term) {
			return enum.TransactionCredited
		}
	}
	for _, term := range debitTerms {
		if strings.Contains(lower, term) {
			return enum.TransactionDebited
		}
	}
	return enum.TransactionUnknown
}

func extractAmount(body string) (float64, bool) {
	for _, pattern := range amountPatterns {
		match := pattern.FindStringSubmatch(body)
		if match == nil {
			continue
		}
		raw := strings.ReplaceAll(match[1], ",", "")
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		return amount, true
	}
	return 0, false
}

// extractDate prefers an in-body date over the provider timestamp. Numeric
// dates parse day-first. A candidate that fails validation does not stop the
// scan; remaining matches are still tried.
func extractDate(body string, fallback time.Time) time.Time {
	for _, match := range numericDatePattern.FindAllStringSubmatch(body, -1) {
		day, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if year < 100 {
			year += 2000
		}
		if t, ok := buildDate(year, time.Month(month), day); ok {
			return t
		}
	}

	for _, match := range textualDatePattern.FindAllStringSubmatch(body, -1) {
		day, _ := strconv.Atoi(match[1])
		month := monthsByPrefix[strings.ToLower(match[2])]
		year, _ := strconv.Atoi(match[3])
		if t, ok := buildDate(year, month, day); ok {
			return t
		}
	}

	return fallback
}

func buildDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 || year < 2000 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow; a shifted day means the input was bogus.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

func extractSource(body string) string {
	for _, pattern := range sourcePatterns {
		match := pattern.FindStringSubmatch(body)
		if match == nil {
			continue
		}
		name := utils.NormalizeSpace(strings.TrimSpace(match[1]))
		if len(name) < 2 {
			continue
		}
		return name
	}
	return defaultSource
}

func extractAccount(body string) string {
	for _, pattern := range accountPatterns {
		match := pattern.FindStringSubmatch(body)
		if match != nil {
			return match[1]
		}
	}
	return defaultAccount
}
