package utils

import (
	"encoding/json"
	"strings"

	"github.com/mikey/mail-triage/internal/core"
)

// ModelOutput is the tagged result of interpreting free-form model
// text: either a JSON document was found or the text stays raw. The
// two cases are explicit so callers collapse them deliberately instead
// of reinterpreting a parse failure.
type ModelOutput struct {
	JSON       string
	Raw        string
	Structured bool
}

// InterpretModelOutput scans model text for an embedded JSON object.
func InterpretModelOutput(text string) ModelOutput {
	if doc, ok := extractJSON(text); ok {
		return ModelOutput{JSON: doc, Raw: text, Structured: true}
	}
	return ModelOutput{Raw: text}
}

// extractJSON pulls the outermost JSON object out of model text that
// may wrap it in prose or code fences.
func extractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

type summaryResponse struct {
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	ActionItems []string `json:"action_items"`
}

type replyResponse struct {
	Reply string `json:"reply"`
	Tone  string `json:"tone"`
}

// ParseSummaryOutput collapses model output into a SummaryResult. Raw
// or undecodable output becomes the summary text itself with empty
// lists, per the summarizer's degradation contract.
func ParseSummaryOutput(text string) *core.SummaryResult {
	out := InterpretModelOutput(text)
	if out.Structured {
		var resp summaryResponse
		if err := json.Unmarshal([]byte(out.JSON), &resp); err == nil && resp.Summary != "" {
			if resp.KeyPoints == nil {
				resp.KeyPoints = []string{}
			}
			if resp.ActionItems == nil {
				resp.ActionItems = []string{}
			}
			return &core.SummaryResult{
				Summary:     resp.Summary,
				KeyPoints:   resp.KeyPoints,
				ActionItems: resp.ActionItems,
			}
		}
	}
	return &core.SummaryResult{
		Summary:     strings.TrimSpace(out.Raw),
		KeyPoints:   []string{},
		ActionItems: []string{},
	}
}

// ParseReplyOutput collapses model output into a ReplyResult. When the
// output is unstructured the raw text becomes the reply and the locally
// detected tone is used.
func ParseReplyOutput(text string, fallbackTone string) *core.ReplyResult {
	out := InterpretModelOutput(text)
	if out.Structured {
		var resp replyResponse
		if err := json.Unmarshal([]byte(out.JSON), &resp); err == nil && resp.Reply != "" {
			if resp.Tone != "formal" && resp.Tone != "casual" && resp.Tone != "neutral" {
				resp.Tone = fallbackTone
			}
			return &core.ReplyResult{Reply: resp.Reply, Tone: resp.Tone}
		}
	}
	return &core.ReplyResult{Reply: strings.TrimSpace(out.Raw), Tone: fallbackTone}
}
