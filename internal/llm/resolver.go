// Package llm hosts the optional last-resort resolver. It is consulted
// only after the cascade and every narrowing filter have failed, and it can
// only ever pick from the candidate allowlist or abstain.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/histparl/rollcall/internal/model"
)

const resolverSystem = "You attribute speeches in historical parliamentary " +
	"records. You answer with a single candidate id from the provided list, " +
	"or the word none. Never answer anything else."

// Resolver asks an LLM provider to pick one candidate for a label the
// deterministic cascade could not resolve. The reply is constrained to a
// candidate id or "none"; anything else counts as an abstention.
type Resolver struct {
	provider Provider
	cfg      model.LLMConfig
	logger   *slog.Logger
}

// NewResolver builds a resolver from configuration. A blank provider means
// the feature is disabled and a nil resolver is returned.
func NewResolver(cfg model.LLMConfig, logger *slog.Logger) (*Resolver, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return &Resolver{provider: provider, cfg: cfg, logger: logger}, nil
}

// Resolve asks the provider to choose among the candidates. Any provider
// failure or off-protocol reply is logged and reported as no resolution;
// it never propagates to the row's classification.
func (r *Resolver) Resolve(ctx context.Context, label string, rec model.DebateRecord, candidates []*model.SpeakerRecord) (int64, bool) {
	// Without an allowlist there is nothing the provider could safely pick.
	if len(candidates) == 0 {
		return 0, false
	}

	resp, err := r.provider.Complete(ctx, CompletionRequest{
		System:    resolverSystem,
		Prompt:    buildResolverPrompt(label, rec, candidates),
		MaxTokens: r.cfg.MaxTokens,
	})
	if err != nil {
		r.logger.Warn("last-resort provider failed", "label", label, "error", err)
		return 0, false
	}

	id, ok := parseResolverReply(resp.Text, candidates)
	if !ok {
		r.logger.Debug("last-resort abstained", "label", label, "reply", resp.Text)
		return 0, false
	}
	return id, true
}

// buildResolverPrompt lists the allowed candidates with just enough
// biography to choose between them.
func buildResolverPrompt(label string, rec model.DebateRecord, candidates []*model.SpeakerRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Speaker label: %q\n", label)
	fmt.Fprintf(&b, "Sitting date: %s\n", rec.Date.Format("2006-01-02"))
	if rec.House != "" {
		fmt.Fprintf(&b, "House: %s\n", rec.House)
	}
	b.WriteString("\nCandidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- id %d: %s (born %d", c.ID, c.FullName, c.Born.Year())
		if !c.Died.IsZero() {
			fmt.Fprintf(&b, ", died %d", c.Died.Year())
		}
		b.WriteString(")\n")
	}
	b.WriteString("\nAnswer with one candidate id, or none.")
	return b.String()
}

// parseResolverReply extracts a candidate id from the reply. Replies that
// are not exactly an allowed id (or "none") are abstentions.
func parseResolverReply(reply string, candidates []*model.SpeakerRecord) (int64, bool) {
	text := strings.ToLower(strings.TrimSpace(reply))
	text = strings.Trim(text, ".")
	if text == "" || text == "none" {
		return 0, false
	}
	// Tolerate an "id 123" echo of the prompt format.
	text = strings.TrimSpace(strings.TrimPrefix(text, "id"))

	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	for _, c := range candidates {
		if c.ID == id {
			return id, true
		}
	}
	return 0, false
}
