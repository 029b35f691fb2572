package normalize

import "regexp"

// rule is one ordered (pattern, replacement) correction. Rules are folded
// over the label in list order; each operates on the previous rule's output.
type rule struct {
	re   *regexp.Regexp
	repl string
}

func mustRule(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(pattern), repl: repl}
}

// ocrRules corrects recurring OCR damage in leading title words, strips
// filler, and canonicalizes multi-word office names. Order matters: the
// misspelled-"the" fixes must fire before the leading-"the" strip, which
// must fire before the honorific fixes see the start of the string.
var ocrRules = []rule{
	// Misspelled leading "the".
	mustRule(`^this +`, "the "),
	mustRule(`^thr +`, "the "),
	mustRule(`^then +`, "the "),
	mustRule(`^tee +`, "the "),
	mustRule(`^thh +`, "the "),
	mustRule(`^tue +`, "the "),
	mustRule(`^tmk +`, "the "),
	mustRule(`^tub +`, "the "),

	// Leading "the" carries no signal once spelled correctly.
	mustRule(`^the +`, ""),

	mustRule(`^me +`, "mr "),

	mustRule(`^lerd +`, "lord "),
	mustRule(`^lobd +`, "lord "),

	mustRule(`^earb +`, "earl "),

	mustRule(`^dike +`, "duke "),

	// Misspelled leading "sir".
	mustRule(`^sib +`, "sir "),
	mustRule(`^sin +`, "sir "),
	mustRule(`^sit +`, "sir "),
	mustRule(`^sip +`, "sir "),
	mustRule(`^siu +`, "sir "),
	mustRule(`^sik +`, "sir "),
	mustRule(`^sat +`, "sir "),

	// Parliamentary filler between honorific and name.
	mustRule(`\b(?:right )?hon\.? `, ""),
	mustRule(`\bgallant `, ""),
	mustRule(`\blearned `, ""),

	// Canonical office spellings.
	mustRule(`\bchan\.? of the exchequer\b`, "chancellor of the exchequer"),
	mustRule(`\bsec\.? of state\b`, "secretary of state"),
	mustRule(`\bu\.? ?s\.? of state\b`, "under secretary of state"),

	// Collapse doubled spaces any earlier rule left behind.
	mustRule(` {2,}`, " "),
}
