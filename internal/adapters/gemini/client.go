// Package gemini implements the summarizer and reply-generation
// collaborators on Google Gemini.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mikey/mail-triage/internal/core"
	"github.com/mikey/mail-triage/internal/heuristics"
	"github.com/mikey/mail-triage/internal/utils"
)

const summaryPromptFormat = `You are an email triage assistant. Summarize the following email.
Respond with a JSON object containing:
- summary: string (2-3 sentence summary of the email)
- key_points: array of strings (the main points)
- action_items: array of strings (concrete actions the email asks for, empty if none)

Email:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

const replyPromptFormat = `You are an email triage assistant. Draft a brief, polite reply to the following email.
Write the reply in %s and match the sender's register.
Respond with a JSON object containing:
- reply: string (the suggested reply text)
- tone: string (one of "formal", "casual", "neutral")

Email:
From: %s
Subject: %s
Summary of the email: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// Client implements core.Summarizer and core.ReplyGenerator using
// Gemini.
type Client struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClient creates a new Gemini client
func NewClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Client, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Client{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// complete sends one generation request and returns the model text.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// Summarize produces a structured summary of the email.
func (c *Client) Summarize(ctx context.Context, email *core.Email) (*core.SummaryResult, error) {
	body := c.textProcessor.ProcessText(email.Body, c.maxBodySize)
	prompt := fmt.Sprintf(summaryPromptFormat, email.From, email.Subject, body)

	text, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return utils.ParseSummaryOutput(text), nil
}

// GenerateReply drafts a reply suggestion for the email.
func (c *Client) GenerateReply(ctx context.Context, email *core.Email, summary *core.SummaryResult, lang *core.LanguageResult) (*core.ReplyResult, error) {
	languageName := "English"
	if lang != nil && lang.Name != "" {
		languageName = lang.Name
	}
	summaryText := ""
	if summary != nil {
		summaryText = summary.Summary
	}
	body := c.textProcessor.ProcessText(email.Body, c.maxBodySize)
	prompt := fmt.Sprintf(replyPromptFormat, languageName, email.From, email.Subject, summaryText, body)

	text, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	tone := heuristics.DetectTone(email.Subject, email.Body)
	return utils.ParseReplyOutput(text, string(tone)), nil
}
