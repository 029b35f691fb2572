// Package normalize canonicalizes raw speaker attribution labels before
// matching. The pipeline is strictly ordered: parenthetical rescue, general
// cleansing, literal misspelling substitution, and an ordered list of OCR
// correction rules. Later rules assume earlier ones already fired.
package normalize

import (
	"regexp"
	"sort"
	"strings"
)

var (
	parenRE      = regexp.MustCompile(`\(([^()]*)\)`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// Normalizer canonicalizes raw labels deterministically: the same raw label
// always normalizes to the same canonical label.
type Normalizer struct {
	corrections    map[string]string
	correctionKeys []string // sorted, so substitution order is stable
	knownAlias     func(string) bool
	rules          []rule
}

// New creates a normalizer. corrections maps literal misspellings to their
// replacements; knownAlias reports whether a cleansed string is an alias in
// the reference data and may be nil.
func New(corrections map[string]string, knownAlias func(string) bool) *Normalizer {
	if knownAlias == nil {
		knownAlias = func(string) bool { return false }
	}
	keys := make([]string, 0, len(corrections))
	for k := range corrections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Normalizer{
		corrections:    corrections,
		correctionKeys: keys,
		knownAlias:     knownAlias,
		rules:          ocrRules,
	}
}

// Normalize canonicalizes a raw label. Steps, in order:
//
//  1. If a parenthesized segment's cleansed text is a known alias, return it
//     immediately; the parenthetical sometimes is the real name.
//  2. Strip all parenthesized segments.
//  3. Cleanse (case fold, punctuation and whitespace normalization).
//  4. Apply every literal misspelling substitution.
//  5. Re-cleanse.
//  6. Fold the ordered OCR rule list over the string.
//  7. Trim.
func (n *Normalizer) Normalize(raw string) string {
	for _, m := range parenRE.FindAllStringSubmatch(raw, -1) {
		inner := Cleanse(m[1])
		if inner != "" && n.knownAlias(inner) {
			return inner
		}
	}

	s := parenRE.ReplaceAllString(raw, "")
	s = Cleanse(s)
	for _, wrong := range n.correctionKeys {
		s = strings.ReplaceAll(s, wrong, n.corrections[wrong])
	}
	s = Cleanse(s)

	for _, r := range n.rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}

	return strings.TrimSpace(s)
}

// Cleanse applies the general string cleansing primitive: lower-case,
// dashes to spaces, every rune outside [a-z0-9. ] dropped, runs of
// whitespace collapsed, surrounding whitespace trimmed.
func Cleanse(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == ' ':
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(whitespaceRE.ReplaceAllString(b.String(), " "))
}
