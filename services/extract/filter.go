package extract

import (
	"strings"
)

// financialTerms is the relevance vocabulary. It deliberately casts a wide
// net: a false positive only costs one extraction attempt, a false negative
// drops a real transaction.
var financialTerms = []string{
	"invoice",
	"receipt",
	"credited",
	"debited",
	"payment",
	"paid",
	"spent",
	"purchase",
	"transaction",
	"withdrawn",
	"deposit",
	"refund",
	"cashback",
	"wallet",
	"card",
	"upi",
	"transfer",
}

// IsFinanciallyRelevant is the cheap gate run before full extraction. It
// reports whether the decoded body mentions any term from the payment and
// banking vocabulary.
func IsFinanciallyRelevant(body string) bool {
	if body == "" {
		return false
	}
	lower := strings.ToLower(body)
	for _, term := range financialTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
