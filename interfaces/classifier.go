package interfaces

import (
	"golang.org/x/net/context"
)

// AIService is the external classifier collaborator. Best effort only:
// failures must never fail the caller's own output.
type AIService interface {
	Categorize(ctx context.Context, descriptions []string) ([]string, error)
	GenerateInsights(ctx context.Context, request InsightsRequest) (string, error)
}

type InsightsRequest struct {
	Salary          int
	Income          float64
	Expenses        float64
	CategorySummary string
}
