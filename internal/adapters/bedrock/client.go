// Package bedrock implements the summarizer and reply-generation
// collaborators on Amazon Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
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
// Bedrock. The request payload depends on the model family.
type Client struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClient creates a new Bedrock client
func NewClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Client {
	return &Client{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// complete invokes the model once and returns the generated text.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	var payload []byte
	var err error

	switch {
	case c.isAnthropicModel():
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	case c.isAmazonTitanModel():
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	default:
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	switch {
	case c.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(resp.Body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	case c.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(resp.Body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(resp.Body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		switch {
		case genericResp.Output != "":
			return genericResp.Output, nil
		case genericResp.Text != "":
			return genericResp.Text, nil
		case genericResp.Response != "":
			return genericResp.Response, nil
		default:
			return string(resp.Body), nil
		}
	}
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *Client) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *Client) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
