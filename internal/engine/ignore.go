package engine

import "strings"

// ignoreKeywords mark procedural stage directions and collective voices
// that were captured into the speaker field. A label containing any of
// them anywhere is not a person.
var ignoreKeywords = []string{
	"speaker",
	"chairman",
	"interruption",
	"laughter",
	"cheers",
	"cries of",
	"hear hear",
	"several members",
	"several honourable members",
	"an honourable member",
	"a noble lord",
	"the clerk",
	"the witness",
	"division",
}

// ignorePrefixes mark labels whose identities the registry cannot carry.
// "mrs " and "miss " are prefixes here while "mr " is not: the member
// registry for the covered period is male, so an honorific alone makes a
// male label resolvable and a female one not.
var ignorePrefixes = []string{
	"mrs ",
	"mrs. ",
	"miss ",
	"madam ",
	"a member",
	"an hon",
	"the reverend",
	"rev ",
	"rev. ",
}

// isIgnorable reports whether a short normalized label denotes a
// non-person: a curated ignore label, a known keyword, or an
// unresolvable honorific prefix.
func (e *Engine) isIgnorable(label string) bool {
	if _, ok := e.idx.Tables().IgnoreLabels[label]; ok {
		return true
	}
	for _, kw := range ignoreKeywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	for _, prefix := range ignorePrefixes {
		if strings.HasPrefix(label, prefix) {
			return true
		}
	}
	return false
}
