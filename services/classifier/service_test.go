package classifier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerstack/ledgerstack/interfaces"
)

func TestCleanModelJSON(t *testing.T) {
	require.Equal(t, `["Groceries","Other"]`, cleanModelJSON("```json\n[\"Groceries\",\"Other\"]\n```"))
	require.Equal(t, `["Income"]`, cleanModelJSON("Here you go: [\"Income\"] hope that helps"))
	require.Equal(t, `["Transport"]`, cleanModelJSON(`["Transport"]`))
}

func TestNormalizeLabels(t *testing.T) {
	labels := normalizeLabels([]string{"groceries", "Made Up", "Income"}, 3)
	require.Equal(t, []string{"Groceries", "Other", "Income"}, labels)
}

func TestNormalizeLabels_ShortResponsePadded(t *testing.T) {
	labels := normalizeLabels([]string{"Transport"}, 3)
	require.Equal(t, []string{"Transport", "Other", "Other"}, labels)
}

func TestBuildInsightsPromptOverspendAlert(t *testing.T) {
	prompt := buildInsightsPrompt(interfaces.InsightsRequest{Salary: 50000, Income: 52000, Expenses: 45000})
	require.Contains(t, prompt, "overspending alert")

	prompt = buildInsightsPrompt(interfaces.InsightsRequest{Salary: 50000, Income: 52000, Expenses: 20000})
	require.NotContains(t, prompt, "overspending alert")
}
