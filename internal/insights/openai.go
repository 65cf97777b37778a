package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the generative-text provider interface.
type Client interface {
	AnalyzeSpending(ctx context.Context, input SpendingInput) (SpendingAnalysis, error)
	GenerateInsights(ctx context.Context, input InsightsInput) ([]string, error)
}

// Config holds provider settings for the OpenAI-compatible client.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

type openAIClient struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIClient creates a client against the OpenAI chat-completions
// API (or any compatible endpoint via BaseURL).
func NewOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 500
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &openAIClient{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

const analysisSystemPrompt = "You are a personal finance advisor. You MUST respond with ONLY a valid JSON object. " +
	"Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. " +
	"Start your response directly with { and end with }."

func (c *openAIClient) AnalyzeSpending(ctx context.Context, input SpendingInput) (SpendingAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze the user's spending patterns and suggest spending limits.

User's Financial Data:
- Total Income: %.2f
- Total Expenses: %.2f
- Essential Expenses: %.2f
- Discretionary Expenses: %.2f
- Savings Goal: %.2f

Calculate and suggest a daily and a weekly spending limit, and give personalized,
encouraging, practical advice on how the user can meet their savings goals.
The advice must be in Portuguese.

Respond with a JSON object of the shape
{"dailySpendingLimit": number, "weeklySpendingLimit": number, "spendingAdvice": string}.`,
		input.TotalIncome, input.TotalExpenses, input.EssentialExpenses,
		input.DiscretionaryExpenses, input.SavingsGoal)

	content, err := c.complete(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		return SpendingAnalysis{}, err
	}

	var analysis SpendingAnalysis
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(content)), &analysis); err != nil {
		return SpendingAnalysis{}, fmt.Errorf("parse analysis response: %w", err)
	}
	if analysis.Advice == "" {
		return SpendingAnalysis{}, fmt.Errorf("no advice found in response")
	}
	return analysis, nil
}

func (c *openAIClient) GenerateInsights(ctx context.Context, input InsightsInput) ([]string, error) {
	var b strings.Builder
	b.WriteString("Você é um consultor financeiro pessoal. Analise os dados e forneça insights " +
		"concisos e acionáveis sobre limites de gastos e progresso das metas, em português.\n")
	b.WriteString("Ganhos:\n")
	for _, g := range input.IncomeList {
		fmt.Fprintf(&b, "  - %s (%.2f)\n", g.Name, g.Amount.Reais())
	}
	b.WriteString("Despesas:\n")
	for _, e := range input.ExpenseList {
		fmt.Fprintf(&b, "  - %s (%.2f)\n", e.Name, e.Amount.Reais())
	}
	b.WriteString("Metas:\n")
	for _, g := range input.GoalList {
		fmt.Fprintf(&b, "  - %s (%.2f)\n", g.Name, g.TargetValue.Reais())
	}
	b.WriteString(`Responda com um objeto JSON no formato {"insights": [string, ...]}.`)

	content, err := c.complete(ctx, analysisSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var reply struct {
		Insights []string `json:"insights"`
	}
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(content)), &reply); err != nil {
		return nil, fmt.Errorf("parse insights response: %w", err)
	}
	if len(reply.Insights) == 0 {
		return nil, fmt.Errorf("no insights found in response")
	}
	return reply.Insights, nil
}

func (c *openAIClient) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// cleanMarkdownWrapper strips a ```json fence some models wrap replies in.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
