package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/histparl/rollcall/internal/cache"
	"github.com/histparl/rollcall/internal/distance"
	"github.com/histparl/rollcall/internal/engine"
	"github.com/histparl/rollcall/internal/index"
	"github.com/histparl/rollcall/internal/model"
	"github.com/histparl/rollcall/internal/normalize"
	"github.com/histparl/rollcall/internal/refdata"
)

// CheckResult describes one interactively probed label.
type CheckResult struct {
	RawLabel   string
	Label      string // normalized form
	Resolution model.Resolution

	Speaker    *model.SpeakerRecord   // set when matched
	Candidates []*model.SpeakerRecord // set when ambiguous

	// BestGuess is the closest known alias by Jaro-Winkler similarity,
	// reported for missed labels as a diagnostic.
	BestGuess string
	BestScore float64
}

// Check resolves a single label at a date on a one-off engine. Useful for
// probing why a label misses or which candidates it pulls in.
func (r *Runner) Check(ctx context.Context, rawLabel string, date time.Time) (*CheckResult, error) {
	tables, err := refdata.Load(r.cfg.Data.Dir, r.logger)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	idx := index.Build(tables)
	norm := normalize.New(tables.Corrections, idx.HasAlias)
	eng := engine.New(idx, norm, cache.New(), r.cfg.Engine, r.buildLastResort(), r.logger)

	label := eng.Normalize(rawLabel)
	res := eng.ResolveLabel(ctx, label, model.DebateRecord{
		RowID:    1,
		Date:     date,
		RawLabel: rawLabel,
	})

	result := &CheckResult{RawLabel: rawLabel, Label: label, Resolution: res}

	switch res.Outcome {
	case model.OutcomeMatched:
		result.Speaker = tables.Speakers[res.SpeakerID]
	case model.OutcomeAmbiguous:
		for _, id := range res.Candidates {
			if s, ok := tables.Speakers[id]; ok {
				result.Candidates = append(result.Candidates, s)
			}
		}
	case model.OutcomeMiss:
		result.BestGuess, result.BestScore = closestAlias(idx, label)
	}
	return result, nil
}

// closestAlias scans the permutation index for the nearest alias.
func closestAlias(idx *index.Index, label string) (string, float64) {
	var best string
	var bestScore float64
	idx.Permutations(func(alias string, _ []*model.SpeakerRecord) {
		if score := distance.JaroWinkler(label, alias); score > bestScore {
			best, bestScore = alias, score
		}
	})
	return best, bestScore
}
