package narrative

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/rfmartins/daycast/internal/models"
)

// Generator produces a short natural-language summary for a daily report
// using OpenAI's API.
type Generator struct {
	client openai.Client
	model  openai.ChatModel
}

// NewGenerator creates a new narrative generator.
// It reads the OPENAI_API_KEY environment variable for authentication.
func NewGenerator() (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// Narrate generates a two-sentence summary of the report.
func (g *Generator) Narrate(ctx context.Context, report *models.Report) (string, error) {
	prompt := buildPrompt(report)

	log.Printf("narrative: generating summary for %s", report.Date)

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a concise weather assistant. Summarize the day's outlook in at most two sentences, plain language, no emoji."),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty completion returned")
	}
	return text, nil
}

func buildPrompt(report *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", report.Date)
	fmt.Fprintf(&b, "Classification: %s (best for: %s)\n", report.OverallClassification, report.BestFor)
	fmt.Fprintf(&b, "Temperature: %.0f-%.0f C\n", report.DailySummary.TempMin, report.DailySummary.TempMax)
	for _, typ := range []string{"pool", "work", "risk"} {
		if s, ok := report.Scores[typ]; ok {
			fmt.Fprintf(&b, "%s score: %.1f/5 (%s)\n", typ, s.Score, s.Label)
		}
	}
	if len(report.Warnings) > 0 {
		fmt.Fprintf(&b, "Warnings: %s\n", strings.Join(report.Warnings, "; "))
	}
	return b.String()
}
