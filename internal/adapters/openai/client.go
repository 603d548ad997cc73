// Package openai implements the summarizer and reply-generation
// collaborators on the OpenAI chat-completion API.
package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

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
// OpenAI.
type Client struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClient creates a new OpenAI client
func NewClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Client {
	return &Client{
		client:        openai.NewClient(apiKey),
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// complete sends one chat completion and returns the model text.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an email triage assistant. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}
	req.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// Summarize produces a structured summary of the email. Unparsable
// model output degrades to raw text inside ParseSummaryOutput.
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
