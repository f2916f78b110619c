package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"TocDigest/internal/config"
	"TocDigest/internal/domain"
	"TocDigest/internal/ports"
	"TocDigest/internal/triage"
)

// responseSchema mirrors the digest shape so the Responses API can enforce
// strict structured output. week_of is requested for schema completeness but
// the engine derives its own run date.
var responseSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"week_of": map[string]any{"type": "string"},
		"notes":   map[string]any{"type": "string"},
		"ranked": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"id":            map[string]any{"type": "string"},
					"title":         map[string]any{"type": "string"},
					"link":          map[string]any{"type": "string"},
					"source":        map[string]any{"type": "string"},
					"published_utc": map[string]any{"type": []string{"string", "null"}},
					"score":         map[string]any{"type": "number"},
					"why":           map[string]any{"type": "string"},
					"tags":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"id", "title", "link", "source", "published_utc", "score", "why", "tags"},
			},
		},
	},
	"required": []string{"week_of", "notes", "ranked"},
}

// OpenAI scores batches through the OpenAI Responses API with strict
// JSON-schema output.
type OpenAI struct {
	endpoint   string
	model      string
	apiKey     string
	summaryMax int
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.Scorer = (*OpenAI)(nil)

// NewOpenAI builds the backend; the key is validated up front so a bad
// credential aborts before any feed is fetched.
func NewOpenAI(cfg config.OpenAIConfig, summaryMax int, logger *slog.Logger) (*OpenAI, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if !strings.HasPrefix(key, "sk-") {
		return nil, fmt.Errorf("OPENAI_API_KEY is missing or does not look like an OpenAI key (expected to start with %q)", "sk-")
	}

	return &OpenAI{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     key,
		summaryMax: summaryMax,
		// generous read window: triage over a full batch can be slow
		client: &http.Client{Timeout: 5 * time.Minute},
		logger: logger,
	}, nil
}

// Name identifies the backend inside the registry.
func (o *OpenAI) Name() string { return "openai" }

// ScoreBatch posts one batch and decodes the structured verdict. Transport
// errors, 429 and 5xx responses are transient; unusable bodies are
// malformed; other API rejections are terminal.
func (o *OpenAI) ScoreBatch(ctx context.Context, interests domain.Interests, batch []domain.CandidateItem) (domain.BatchResult, error) {
	prompt, err := BuildPrompt(interests, batch, o.summaryMax)
	if err != nil {
		return domain.BatchResult{}, err
	}

	body, err := json.Marshal(map[string]any{
		"model": o.model,
		"input": prompt,
		"text": map[string]any{
			"format": map[string]any{
				"type":   "json_schema",
				"name":   "weekly_toc_digest",
				"schema": responseSchema,
				"strict": true,
			},
		},
	})
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return domain.BatchResult{}, triage.Transient(fmt.Errorf("call openai: %w", err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return domain.BatchResult{}, triage.Transient(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return domain.BatchResult{}, triage.Transient(fmt.Errorf("openai %s: %s", resp.Status, snippet(payload)))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return domain.BatchResult{}, fmt.Errorf("openai rejected request %s: %s", resp.Status, snippet(payload))
	}

	text, err := outputText(payload)
	if err != nil {
		return domain.BatchResult{}, err
	}
	return ParseResponse([]byte(text))
}

// outputText collects the output_text fragments of a Responses API payload.
func outputText(payload []byte) (string, error) {
	var decoded struct {
		Output []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", triage.Malformed(fmt.Errorf("decode api envelope: %w", err))
	}

	var b strings.Builder
	for _, out := range decoded.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" {
				b.WriteString(content.Text)
			}
		}
	}
	if b.Len() == 0 {
		return "", triage.Malformed(fmt.Errorf("no output_text in response"))
	}
	return b.String(), nil
}

func snippet(payload []byte) string {
	const max = 512
	s := strings.TrimSpace(string(payload))
	if len(s) > max {
		s = s[:max]
	}
	return s
}
