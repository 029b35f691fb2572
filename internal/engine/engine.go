// Package engine implements the cascading disambiguation matcher. Per
// (normalized label, date) pair the outcome is one of matched, ambiguous,
// ignored, or miss; strategies are attempted in a fixed order and the first
// definitive outcome wins.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/histparl/rollcall/internal/cache"
	"github.com/histparl/rollcall/internal/distance"
	"github.com/histparl/rollcall/internal/index"
	"github.com/histparl/rollcall/internal/model"
	"github.com/histparl/rollcall/internal/normalize"
)

// LastResort is the external disambiguation routine invoked when the
// cascade and every narrowing filter have failed. It returns a speaker id
// or reports no resolution; it must never be the first-pass matcher.
type LastResort interface {
	Resolve(ctx context.Context, label string, rec model.DebateRecord, candidates []*model.SpeakerRecord) (int64, bool)
}

// Engine resolves normalized labels against the reference index. Each
// worker runs its own Engine with its own index view and caches; engines
// share nothing mutable.
type Engine struct {
	idx        *index.Index
	norm       *normalize.Normalizer
	cache      *cache.ResolutionCache
	cfg        model.EngineConfig
	lastResort LastResort // nil when disabled
	logger     *slog.Logger
}

// New creates an engine. lastResort may be nil.
func New(idx *index.Index, norm *normalize.Normalizer, c *cache.ResolutionCache, cfg model.EngineConfig, lastResort LastResort, logger *slog.Logger) *Engine {
	if c == nil {
		c = cache.New()
	}
	return &Engine{
		idx:        idx,
		norm:       norm,
		cache:      c,
		cfg:        cfg,
		lastResort: lastResort,
		logger:     logger,
	}
}

// Cache returns the engine's resolution cache, for snapshotting.
func (e *Engine) Cache() *cache.ResolutionCache { return e.cache }

// Normalize canonicalizes a raw label using the engine's normalizer.
func (e *Engine) Normalize(raw string) string { return e.norm.Normalize(raw) }

// ResolveRecord normalizes the record's raw label and classifies it.
func (e *Engine) ResolveRecord(ctx context.Context, rec model.DebateRecord) model.Resolution {
	return e.ResolveLabel(ctx, e.norm.Normalize(rec.RawLabel), rec)
}

// ResolveLabel classifies an already-normalized label. A failure inside a
// single row's classification is logged and downgraded to a miss; it never
// aborts the batch.
func (e *Engine) ResolveLabel(ctx context.Context, label string, rec model.DebateRecord) (res model.Resolution) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("row classification failed",
				"row", rec.RowID, "label", rec.RawLabel, "cause", r)
			res = model.Miss(false)
		}
	}()

	return e.resolve(ctx, label, rec)
}

// resolve runs the cascade for an already-normalized label.
func (e *Engine) resolve(ctx context.Context, label string, rec model.DebateRecord) model.Resolution {
	date := rec.Date
	tables := e.idx.Tables()

	// 1. Cache probes. The fuzzy flag does not short-circuit; the other
	// tables do.
	fuzzy := e.cache.FuzzyFlag(label, date)
	if e.cache.IsMiss(label, date) {
		return model.Miss(fuzzy)
	}
	if candidates, ok := e.cache.Ambiguity(label, date); ok {
		return model.Ambiguous(candidates, fuzzy)
	}
	if e.cache.IsIgnored(label) {
		return model.Ignored()
	}
	if res, ok := e.cache.Match(label, date); ok {
		return res
	}

	// 2. Ignore check. Labels at or above the length limit skip it: long
	// strings are assumed to be debate text captured into the speaker
	// field, not names to classify as ignorable.
	if len(label) < e.cfg.IgnoreLengthLimit && e.isIgnorable(label) {
		e.cache.PutIgnore(label)
		return model.Ignored()
	}

	var matched *model.MatchRef
	var candidates []model.MatchRef

	// 3. Exact/substring cascade over the alias tables in priority order,
	// then office holdings via office-alias containment. One distinct id
	// matches; several make a provisional ambiguity, and the later exact
	// stages still run so that a unique hit there can resolve it.
	for _, table := range [][]model.AliasEntry{
		tables.LordTitles,
		tables.HonoraryTitles,
		tables.NameAliases,
		tables.GenericTitles,
	} {
		refs := index.DistinctRefs(index.ContainsAlias(table, label, date))
		if len(refs) == 1 {
			matched = &refs[0]
			break
		}
		if len(refs) > 1 {
			candidates = refs
			break
		}
	}

	if matched == nil {
		var refs []model.MatchRef
		for _, h := range e.idx.HoldingsForLabel(label, date) {
			refs = appendDistinct(refs, model.OfficeHolderRef(h.HolderID))
		}
		if len(refs) == 1 {
			matched = &refs[0]
		} else if len(refs) > 1 && len(candidates) == 0 {
			candidates = refs
		}
	}

	// 4. Direct alias-permutation lookup, filtered to speakers whose own
	// lifetime and service window are compatible with the date. A unique
	// hit resolves a pending title-table ambiguity; several hits replace
	// it, since narrowing wants the speaker-level set.
	if matched == nil {
		var refs []model.MatchRef
		for _, s := range e.idx.SpeakersForAlias(label) {
			if windowCompatible(s, date) {
				refs = appendDistinct(refs, model.SpeakerRef(s.ID))
			}
		}
		if len(refs) == 1 {
			matched = &refs[0]
		} else if len(refs) > 1 {
			candidates = refs
		}
	}

	// 5. Fuzzy cascade over the alias tables and office aliases, skipped
	// once an exact stage produced any candidate: an edit-distance hit
	// must not override exact containment. Name aliases are short, so
	// they get the tighter bound. The ambiguity set is capped: a label
	// within four edits of half the registry is noise, not an ambiguity
	// worth keeping.
	if matched == nil && len(candidates) == 0 {
		var refs []model.MatchRef
		for _, t := range []struct {
			entries []model.AliasEntry
			maxDist int
		}{
			{tables.LordTitles, distance.MaxOfficeDistance},
			{tables.HonoraryTitles, distance.MaxOfficeDistance},
			{tables.NameAliases, distance.MaxAliasDistance},
			{tables.GenericTitles, distance.MaxOfficeDistance},
		} {
			for _, ref := range index.EditDistanceCandidates(t.entries, label, date, t.maxDist) {
				refs = appendDistinct(refs, ref)
			}
		}
		for _, ref := range e.idx.FuzzyHoldingsForLabel(label, date, distance.MaxOfficeDistance) {
			refs = appendDistinct(refs, ref)
		}

		if len(refs) == 1 {
			matched = &refs[0]
			fuzzy = true
		} else if len(refs) > 1 && len(refs) <= e.cfg.MaxFuzzyCandidates {
			candidates = refs
			fuzzy = true
		}
	}

	// 6. Name-permutation fuzzy match: drop bare initials, then scan the
	// permutation index at the tight threshold.
	if matched == nil && len(candidates) == 0 {
		stripped := stripInitials(label)
		var refs []model.MatchRef
		e.idx.Permutations(func(alias string, speakers []*model.SpeakerRecord) {
			if !distance.Within(stripped, alias, distance.MaxNameDistance) {
				return
			}
			for _, s := range speakers {
				if windowCompatible(s, date) {
					refs = appendDistinct(refs, model.SpeakerRef(s.ID))
				}
			}
		})
		if len(refs) == 1 {
			matched = &refs[0]
			fuzzy = true
		} else if len(refs) > 1 {
			candidates = refs
			fuzzy = true
		}
	}

	if matched != nil {
		if res, ok := e.finalizeMatch(label, date, *matched, fuzzy); ok {
			return res
		}
		// Registry lookup failed; worst case for a row is a miss.
		return e.finalizeMiss(label, date, fuzzy)
	}

	// 7. Ambiguity narrowing.
	if len(candidates) > 0 {
		speakers := e.speakersFor(candidates)

		// 7a. An inference hint naming one of the candidates wins outright.
		if hintID, ok := tables.Hints[rec.DeliberationID]; ok {
			for _, s := range speakers {
				if s.ID == hintID {
					if res, ok := e.finalizeMatch(label, date, model.SpeakerRef(s.ID), fuzzy); ok {
						return res
					}
				}
			}
		}

		// 7b. Drop implausibly young candidates and those holding no
		// recognized office or seat at the date.
		var narrowed []*model.SpeakerRecord
		for _, s := range speakers {
			if s.AgeAt(date) < e.cfg.MinCandidateAge {
				continue
			}
			if !tables.HeldOfficeOrSeatAt(s.ID, date) {
				continue
			}
			narrowed = append(narrowed, s)
		}
		if len(narrowed) == 1 {
			if res, ok := e.finalizeMatch(label, date, model.SpeakerRef(narrowed[0].ID), fuzzy); ok {
				return res
			}
		}

		// 8. Last resort.
		if e.lastResort != nil {
			if id, ok := e.lastResort.Resolve(ctx, label, rec, speakers); ok {
				if res, ok := e.finalizeMatch(label, date, model.SpeakerRef(id), fuzzy); ok {
					return res
				}
			}
		}

		ids := make([]int64, 0, len(speakers))
		for _, s := range speakers {
			ids = append(ids, s.ID)
		}
		if len(ids) > 1 {
			e.cache.PutAmbiguity(label, date, ids)
			if fuzzy {
				e.cache.PutFuzzyFlag(label, date)
			}
			return model.Ambiguous(ids, fuzzy)
		}
		// All candidates evaporated during registry lookup.
		return e.finalizeMiss(label, date, fuzzy)
	}

	// 8. Last resort without a candidate set.
	if e.lastResort != nil {
		if id, ok := e.lastResort.Resolve(ctx, label, rec, nil); ok {
			if res, ok := e.finalizeMatch(label, date, model.SpeakerRef(id), fuzzy); ok {
				return res
			}
		}
	}

	return e.finalizeMiss(label, date, fuzzy)
}

// finalizeMatch resolves a reference against the speaker registry and
// caches the match. A reference to an id absent from the registry is
// logged and reported as not-ok; the caller downgrades to a miss.
func (e *Engine) finalizeMatch(label string, date time.Time, ref model.MatchRef, fuzzy bool) (model.Resolution, bool) {
	s, ok := e.idx.Tables().Speakers[ref.ID]
	if !ok {
		e.logger.Warn("resolved id absent from speaker registry",
			"label", label, "id", ref.ID, "kind", ref.Kind)
		return model.Resolution{}, false
	}
	res := model.Matched(s.ID, fuzzy)
	e.cache.PutMatch(label, date, res)
	if fuzzy {
		e.cache.PutFuzzyFlag(label, date)
	}
	return res, true
}

// finalizeMiss caches and returns a miss.
func (e *Engine) finalizeMiss(label string, date time.Time, fuzzy bool) model.Resolution {
	e.cache.PutMiss(label, date)
	if fuzzy {
		e.cache.PutFuzzyFlag(label, date)
	}
	return model.Miss(fuzzy)
}

// speakersFor resolves candidate references to registry records,
// deduplicating by identity. Lookup failures are logged and skipped.
func (e *Engine) speakersFor(refs []model.MatchRef) []*model.SpeakerRecord {
	speakers := make([]*model.SpeakerRecord, 0, len(refs))
	seen := make(map[int64]struct{}, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref.ID]; dup {
			continue
		}
		seen[ref.ID] = struct{}{}
		s, ok := e.idx.Tables().Speakers[ref.ID]
		if !ok {
			e.logger.Warn("candidate id absent from speaker registry", "id", ref.ID)
			continue
		}
		speakers = append(speakers, s)
	}
	return speakers
}

// windowCompatible reports whether a speaker could plausibly be speaking at
// the date: alive, and inside their service window when one is known.
func windowCompatible(s *model.SpeakerRecord, date time.Time) bool {
	if !s.AliveAt(date) {
		return false
	}
	return s.Service.IsZero() || s.Service.Contains(date)
}

// stripInitials removes bare single-letter initials (with or without a
// trailing period) and collapses the spaces they leave behind.
func stripInitials(label string) string {
	fields := strings.Fields(label)
	kept := fields[:0]
	for _, f := range fields {
		if len(f) == 1 || (len(f) == 2 && f[1] == '.') {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// appendDistinct appends a reference unless one with the same id exists.
func appendDistinct(refs []model.MatchRef, ref model.MatchRef) []model.MatchRef {
	for _, r := range refs {
		if r.ID == ref.ID {
			return refs
		}
	}
	return append(refs, ref)
}
