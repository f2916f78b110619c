package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"TocDigest/internal/domain"
	"TocDigest/internal/triage"
)

// promptTemplate is shared by every backend; {{KEYWORDS}}, {{NARRATIVE}} and
// {{ITEMS}} are substituted per batch.
const promptTemplate = `You are triaging weekly journal table-of-contents RSS items for a researcher.
Use the user's interests seed below as the primary basis for relevance.

Output rules:
- Return JSON strictly matching the provided schema.
- Provide a relevance score in [0, 1].
- "why" must be 1-2 sentences, concrete (methods/phenomenon/data type).
- "tags" should be short (e.g., EEG, aperiodic, timescales, HMM, ECG, clinical, state dynamics).
- Rank highest score first.
- If only title/short summary is available, be cautious; score lower unless clearly aligned.
- Do NOT hallucinate details that aren't present.

Interests keywords (emphasize strongly):
{{KEYWORDS}}

Interests seed (narrative + user's paper titles/abstracts):
{{NARRATIVE}}

RSS items to triage:
{{ITEMS}}
`

// BuildPrompt renders the triage prompt for one batch. Item summaries are
// re-capped to summaryMax so oversized feed blurbs do not blow up the prompt.
func BuildPrompt(interests domain.Interests, batch []domain.CandidateItem, summaryMax int) (string, error) {
	lean := make([]domain.CandidateItem, 0, len(batch))
	for _, item := range batch {
		item.Summary = capRunes(item.Summary, summaryMax)
		lean = append(lean, item)
	}

	keywords, err := json.Marshal(interests.Keywords)
	if err != nil {
		return "", fmt.Errorf("marshal keywords: %w", err)
	}
	items, err := json.Marshal(lean)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{KEYWORDS}}", string(keywords))
	prompt = strings.ReplaceAll(prompt, "{{NARRATIVE}}", interests.Narrative)
	prompt = strings.ReplaceAll(prompt, "{{ITEMS}}", string(items))
	return prompt, nil
}

// ParseResponse decodes oracle output into a batch result. Anything that is
// not a JSON object carrying a "ranked" array is a malformed-output failure,
// which the engine retries on its short fixed-delay policy.
func ParseResponse(raw []byte) (domain.BatchResult, error) {
	var decoded struct {
		Notes  string               `json:"notes"`
		Ranked *[]domain.ScoredItem `json:"ranked"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.BatchResult{}, triage.Malformed(fmt.Errorf("decode response: %w", err))
	}
	if decoded.Ranked == nil {
		return domain.BatchResult{}, triage.Malformed(errors.New(`response missing required "ranked" field`))
	}
	return domain.BatchResult{Notes: decoded.Notes, Ranked: *decoded.Ranked}, nil
}

// ExtractJSON returns the outermost {...} object embedded in free-form text,
// for backends without a structured-output API.
func ExtractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", errors.New("no JSON object found in output")
	}
	return text[start : end+1], nil
}

func capRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
