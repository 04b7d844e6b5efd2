package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/ledgerstack/ledgerstack/config"
	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/logger"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
)

// Categories is the fixed label set the model must choose from. Anything the
// model invents outside this list is coerced to "Other".
var Categories = []string{
	"Food & Dining",
	"Transport",
	"Shopping",
	"Bills & Utilities",
	"Entertainment",
	"Health & Wellness",
	"Groceries",
	"Income",
	"Transfers",
	"Other",
}

const fallbackCategory = "Other"

type geminiService struct {
	log logger.Logger
	cfg *config.GeminiConfig
}

func NewGeminiService(log logger.Logger, cfg *config.GeminiConfig) interfaces.AIService {
	return &geminiService{
		log: log,
		cfg: cfg,
	}
}

func (s *geminiService) Categorize(ctx context.Context, descriptions []string) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GeminiService.Categorize")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.LogKV("descriptions.count", len(descriptions))

	if len(descriptions) == 0 {
		return nil, nil
	}

	prompt := buildCategorizePrompt(descriptions)
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	var labels []string
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &labels); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "model returned invalid category list")
	}

	return normalizeLabels(labels, len(descriptions)), nil
}

func (s *geminiService) GenerateInsights(ctx context.Context, request interfaces.InsightsRequest) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "GeminiService.GenerateInsights")
	defer span.Finish()
	tracing.TagComponentService(span)

	prompt := buildInsightsPrompt(request)
	text, err := s.generate(ctx, prompt)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	return strings.TrimSpace(text), nil
}

func (s *geminiService) generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      s.cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to create genai client")
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, s.cfg.Model, contents, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate content")
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

func buildCategorizePrompt(descriptions []string) string {
	var sb strings.Builder
	sb.WriteString("You are a personal finance assistant. Assign exactly one category to each transaction description below.\n\n")
	sb.WriteString("Allowed categories:\n")
	for _, category := range Categories {
		sb.WriteString("- " + category + "\n")
	}
	sb.WriteString("\nTransactions:\n")
	for i, description := range descriptions {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, description))
	}
	sb.WriteString("\nReturn ONLY a raw JSON array of category strings, one per transaction, in the same order.\n")
	sb.WriteString("Do NOT wrap the response in code fences.\n")
	return sb.String()
}

func buildInsightsPrompt(request interfaces.InsightsRequest) string {
	var sb strings.Builder
	sb.WriteString("You are a personal finance assistant. Write a short monthly financial summary for the user.\n\n")
	sb.WriteString(fmt.Sprintf("Monthly salary: %d\n", request.Salary))
	sb.WriteString(fmt.Sprintf("Total income this month: %.2f\n", request.Income))
	sb.WriteString(fmt.Sprintf("Total expenses this month: %.2f\n", request.Expenses))
	if request.CategorySummary != "" {
		sb.WriteString("Spend by category:\n" + request.CategorySummary + "\n")
	}
	sb.WriteString("\nHighlight the top spending categories and one concrete saving suggestion.\n")
	if request.Salary > 0 && request.Expenses > float64(request.Salary)*0.8 {
		sb.WriteString("The user has spent more than 80% of their salary; open with a clear overspending alert.\n")
	}
	sb.WriteString("Keep it under 150 words, plain text.\n")
	return sb.String()
}

// cleanModelJSON strips Markdown fences and any text around the outermost
// JSON array when the model ignores formatting instructions.
func cleanModelJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}

// normalizeLabels forces the model output back onto the fixed label set and
// the expected length.
func normalizeLabels(labels []string, want int) []string {
	allowed := make(map[string]string, len(Categories))
	for _, category := range Categories {
		allowed[strings.ToLower(category)] = category
	}

	normalized := make([]string, want)
	for i := 0; i < want; i++ {
		normalized[i] = fallbackCategory
		if i < len(labels) {
			if category, ok := allowed[strings.ToLower(strings.TrimSpace(labels[i]))]; ok {
				normalized[i] = category
			}
		}
	}
	return normalized
}
