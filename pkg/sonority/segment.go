package sonority

import (
	"strings"
)

// ASJPcode modifiers.
const (
	nasalMark   = '*'
	glottalMark = '"'
	joinTwo     = '~'
	joinThree   = '$'
)

// wordPatches repairs known misspellings in the corpus. Applied once, in
// order, before segmentation.
var wordPatches = []struct{ from, to string }{
	{`""`, `"`},
	{"a*g~", "a*g"},
	{"i*7~", "i*7"},
	{"a*d~", "a*d"},
	{"a*7~", "a*7"},
	{"i*dy$", "i*dy~"},
	{`eq"X$`, `eq"X~`},
}

// tokenPatches replaces malformed merged tokens before the geminate check.
var tokenPatches = map[string]string{
	"ttt": "tt",
}

func isMarker(r rune) bool {
	return r == nasalMark || r == glottalMark || r == joinTwo || r == joinThree
}

// CleanWord applies the fixed literal repairs to a raw transcription.
func CleanWord(word string) string {
	word = strings.ReplaceAll(word, " ", "")
	for _, p := range wordPatches {
		if strings.Contains(word, p.from) {
			word = strings.ReplaceAll(word, p.from, p.to)
		}
	}
	if word == "~E" {
		word = "E"
	}
	if len(word) > 2 && word[1] == joinTwo {
		word = word[:1] + word[2:]
	}
	return word
}

// Segment splits a transcription into phones.
//
// Modifiers `*` and `"` attach to the preceding unit, `~` joins the two
// preceding units and `$` the three preceding ones; the join markers are
// consumed. A marker without enough units to its left stays a unit of its
// own. Joined doubles (geminates) are split again afterwards.
func Segment(word string) []string {
	word = CleanWord(word)
	units := make([]string, 0, len(word))
	for _, r := range word {
		n := len(units)
		switch {
		case (r == nasalMark || r == glottalMark) && n > 0:
			units[n-1] += string(r)
		case r == joinTwo && n >= 2:
			units = append(units[:n-2], units[n-2]+units[n-1])
		case r == joinThree && n >= 3:
			units = append(units[:n-3], units[n-3]+units[n-2]+units[n-1])
		default:
			units = append(units, string(r))
		}
	}

	phones := make([]string, 0, len(units))
	for _, u := range units {
		phones = append(phones, splitGeminate(u)...)
	}
	return phones
}

// splitGeminate splits a doubled token: "tt" -> t, t; "tty" -> t, ty;
// "aaa" -> a, a, a; "t*t*" -> t*, t*. Anything else is returned unchanged.
// No part of the result is itself a doubled token.
func splitGeminate(token string) []string {
	if fixed, ok := tokenPatches[token]; ok {
		token = fixed
	}
	r := []rune(token)
	switch len(r) {
	case 2, 3:
		if r[0] == r[1] && !isMarker(r[0]) {
			return append([]string{string(r[0])}, splitGeminate(string(r[1:]))...)
		}
	case 4:
		if r[0] == r[2] && r[1] == r[3] {
			return []string{string(r[:2]), string(r[2:])}
		}
	}
	return []string{token}
}

// Notate writes phones back into ASJPcode, joining the units of each
// multi-unit phone with `~` so that segmenting the result gives the same
// phones again.
func Notate(phones []string) string {
	var b strings.Builder
	for _, p := range phones {
		for i, u := range phoneUnits(p) {
			b.WriteString(u)
			if i > 0 {
				b.WriteRune(joinTwo)
			}
		}
	}
	return b.String()
}

// phoneUnits splits a phone into base characters with their trailing
// `*` / `"` modifiers.
func phoneUnits(phone string) []string {
	var units []string
	for _, r := range phone {
		if (r == nasalMark || r == glottalMark) && len(units) > 0 {
			units[len(units)-1] += string(r)
			continue
		}
		units = append(units, string(r))
	}
	return units
}
