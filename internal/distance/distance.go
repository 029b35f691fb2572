// Package distance provides the bounded edit-distance predicates and the
// normalized similarity score used by the disambiguation cascade.
package distance

import "github.com/agnivade/levenshtein"

// Cascade thresholds. Name aliases are short, so they get the tightest
// bound; office and title names are longer and tolerate more OCR damage.
const (
	MaxNameDistance   = 1
	MaxAliasDistance  = 2
	MaxOfficeDistance = 4
)

// Within reports whether the edit distance between a and b is at most max.
func Within(a, b string, max int) bool {
	if diff := len(a) - len(b); diff > max || -diff > max {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= max
}

// Jaro computes the Jaro similarity of two strings in [0, 1]. It backs the
// diagnostic best-guess output only, never the classification path.
func Jaro(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}

	window := la
	if lb > window {
		window = lb
	}
	window = window/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, la)
	bMatched := make([]bool, lb)
	matches := 0

	for i := 0; i < la; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > lb {
			hi = lb
		}
		for j := lo; j < hi; j++ {
			if bMatched[j] || a[i] != b[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := 0; i < la; i++ {
		if !aMatched[i] {
			continue
		}
		for !bMatched[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions)/2)/m) / 3
}

// JaroWinkler boosts Jaro similarity for strings sharing a common prefix,
// up to four characters.
func JaroWinkler(a, b string) float64 {
	j := Jaro(a, b)

	prefix := 0
	for i := 0; i < len(a) && i < len(b) && i < 4; i++ {
		if a[i] != b[i] {
			break
		}
		prefix++
	}

	return j + 0.1*float64(prefix)*(1-j)
}
