package normalize

import "testing"

func testNormalizer(known ...string) *Normalizer {
	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}
	corrections := map[string]string{
		"gladstonb": "gladstone",
		"excheqner": "exchequer",
	}
	return New(corrections, func(s string) bool { return knownSet[s] })
}

func TestNormalize_CleansingAndCase(t *testing.T) {
	n := testNormalizer()

	got := n.Normalize("  MR.   GLADSTONE ")
	want := "mr. gladstone"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalize_ParentheticalRescue(t *testing.T) {
	n := testNormalizer("william gladstone")

	// The parenthetical is the real name: return it directly.
	got := n.Normalize("the member for midlothian (William Gladstone)")
	if got != "william gladstone" {
		t.Errorf("Normalize() = %q, want parenthetical alias", got)
	}
}

func TestNormalize_ParentheticalStripped(t *testing.T) {
	n := testNormalizer()

	// Unknown parenthetical content is removed entirely.
	got := n.Normalize("mr gladstone (midlothian)")
	if got != "mr gladstone" {
		t.Errorf("Normalize() = %q, want %q", got, "mr gladstone")
	}
}

func TestNormalize_MisspellingSubstitution(t *testing.T) {
	n := testNormalizer()

	got := n.Normalize("Mr Gladstonb")
	if got != "mr gladstone" {
		t.Errorf("Normalize() = %q, want %q", got, "mr gladstone")
	}
}

func TestNormalize_OCRRuleOrder(t *testing.T) {
	n := testNormalizer()

	// "thr" must become "the" first, then the leading "the" is stripped.
	cases := map[string]string{
		"thr chancellor of the excheqner": "chancellor of the exchequer",
		"The Lord Chancellor":             "lord chancellor",
		"sib robert peel":                 "sir robert peel",
		"me disraeli":                     "mr disraeli",
		"lerd salisbury":                  "lord salisbury",
		"chan. of the exchequer":          "chancellor of the exchequer",
	}
	for in, want := range cases {
		if got := n.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := testNormalizer("william gladstone")

	inputs := []string{
		"The Right Hon. W. E. Gladstone (Midlothian)",
		"thr chancellor of the exchequer",
		"SIB ROBERT PEEL",
		"mrs jones",
		"mr smith",
		"me disraeli",
		"several members",
	}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	n := testNormalizer()

	in := "thr right hon. gladstonb (Midlothian)"
	first := n.Normalize(in)
	for i := 0; i < 10; i++ {
		if got := n.Normalize(in); got != first {
			t.Fatalf("Normalize(%q) varied across runs: %q vs %q", in, first, got)
		}
	}
}

func TestCleanse(t *testing.T) {
	cases := map[string]string{
		"  Hello,   World! ": "hello world",
		"CHAN. OF THE EXCHEQUER": "chan. of the exchequer",
		"double--dash":           "double dash",
		"":                       "",
	}
	for in, want := range cases {
		if got := Cleanse(in); got != want {
			t.Errorf("Cleanse(%q) = %q, want %q", in, got, want)
		}
	}
}
