package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"TocDigest/internal/config"
	"TocDigest/internal/domain"
	"TocDigest/internal/ports"
	"TocDigest/internal/triage"
)

// agentPromptSuffix pins the output contract for backends without a
// structured-output API; must stay in sync with responseSchema.
const agentPromptSuffix = `

Return **only** a single JSON object, no markdown code fences, no commentary. Schema:
{"week_of": "<ISO date>", "notes": "<string>", "ranked": [{"id": "<string>", "title": "<string>", "link": "<string>", "source": "<string>", "published_utc": "<string|null>", "score": <0-1>, "why": "<string>", "tags": ["<string>"]}]}
`

// AgentCLI scores batches by shelling out to an agent CLI in non-interactive
// mode and parsing the JSON object out of its stdout.
type AgentCLI struct {
	command    string
	summaryMax int
	logger     *slog.Logger

	// run is injectable so tests skip the real subprocess.
	run func(ctx context.Context, prompt string) (string, error)
}

var _ ports.Scorer = (*AgentCLI)(nil)

// NewAgentCLI validates the credential the CLI itself will consume.
func NewAgentCLI(cfg config.AgentConfig, summaryMax int, logger *slog.Logger) (*AgentCLI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("CURSOR_API_KEY is required for the agent backend")
	}
	command := cfg.Command
	if command == "" {
		command = "agent"
	}

	a := &AgentCLI{command: command, summaryMax: summaryMax, logger: logger}
	a.run = a.invoke
	return a, nil
}

// Name identifies the backend inside the registry.
func (a *AgentCLI) Name() string { return "agent" }

// ScoreBatch runs the CLI once per batch. The CLI gives no way to tell
// transport trouble from garbage output, so every failure is classified as
// malformed output and retried on the short fixed-delay policy.
func (a *AgentCLI) ScoreBatch(ctx context.Context, interests domain.Interests, batch []domain.CandidateItem) (domain.BatchResult, error) {
	prompt, err := BuildPrompt(interests, batch, a.summaryMax)
	if err != nil {
		return domain.BatchResult{}, err
	}

	out, err := a.run(ctx, prompt+agentPromptSuffix)
	if err != nil {
		return domain.BatchResult{}, triage.Malformed(err)
	}

	object, err := ExtractJSON(out)
	if err != nil {
		return domain.BatchResult{}, triage.Malformed(err)
	}
	return ParseResponse([]byte(object))
}

func (a *AgentCLI) invoke(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, a.command, "-p", "--output-format", "text", "--trust", prompt)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("agent CLI exit %d: %s", exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("run agent CLI: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
