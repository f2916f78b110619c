package scoring

import (
	"fmt"
	"log/slog"
	"sort"

	"TocDigest/internal/config"
	"TocDigest/internal/ports"
)

// Constructor builds a scoring backend from configuration. Constructors fail
// fast on missing credentials so misconfiguration surfaces before any
// fetching happens.
type Constructor func(cfg config.Config, logger *slog.Logger) (ports.Scorer, error)

// Registry keeps a mapping from backend names to their constructors. New
// oracles implement ports.Scorer and register here without touching the
// triage engine.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: map[string]Constructor{}}
}

// Register adds or replaces a backend constructor.
func (r *Registry) Register(name string, ctor Constructor) {
	if r.constructors == nil {
		r.constructors = map[string]Constructor{}
	}
	r.constructors[name] = ctor
}

// Resolve builds the named backend or reports the known names.
func (r *Registry) Resolve(name string, cfg config.Config, logger *slog.Logger) (ports.Scorer, error) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown scoring backend %q (available: %v)", name, r.names())
	}
	return ctor(cfg, logger)
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the registry with all built-in backends.
func Default() *Registry {
	r := NewRegistry()
	r.Register("openai", func(cfg config.Config, logger *slog.Logger) (ports.Scorer, error) {
		return NewOpenAI(cfg.Scoring.OpenAI, cfg.Triage.PromptSummaryMaxChars, logger)
	})
	r.Register("agent", func(cfg config.Config, logger *slog.Logger) (ports.Scorer, error) {
		return NewAgentCLI(cfg.Scoring.Agent, cfg.Triage.PromptSummaryMaxChars, logger)
	})
	r.Register("mock", func(cfg config.Config, logger *slog.Logger) (ports.Scorer, error) {
		return NewKeywordScorer(), nil
	})
	return r
}
