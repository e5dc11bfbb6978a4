package sonority

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Segment-class tags.
const (
	TagConsonant = "consonant"
	TagVowel     = "vowel"
	TagSemivowel = "semivowel"
)

// Feature tags.
const (
	TagNasalized      = "nasalized"
	TagGlottalized    = "glottalized"
	TagLabialized     = "labialized"
	TagPalatalized    = "palatalized"
	TagAspirated      = "aspirated/devoiced"
	TagVelarized      = "velarized"
	TagPharyngealized = "pharyngealized"
	TagPrenasalized   = "prenasalized"
)

// ErrEmptyBase is returned for a phone with no base symbol left after
// stripping modifiers.
var ErrEmptyBase = errors.New("sonority: phone has an empty base")

var suffixTags = map[byte]string{
	'w': TagLabialized,
	'y': TagPalatalized,
	'h': TagAspirated,
	'x': TagVelarized,
	'X': TagPharyngealized,
}

var obstruentType = regexp.MustCompile(`click|plos|fric`)

// Phone is one classified segment.
type Phone struct {
	Raw  string
	Base string
	// Tags is ordered: segment class, length, then features in the order
	// they were detected.
	Tags []string
}

// Has reports whether the phone carries tag.
func (p Phone) Has(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// Class returns the segment-class tag.
func (p Phone) Class() string {
	if len(p.Tags) == 0 {
		return ""
	}
	return p.Tags[0]
}

// TagString joins the tags the way the phone inventory reports them.
func (p Phone) TagString() string {
	return strings.Join(p.Tags, "; ")
}

// classify derives the base and tags of a phone. The table is only used
// for type lookups, so the result does not depend on the active scale.
func classify(t *Table, phone string) (Phone, error) {
	var features []string
	if strings.ContainsRune(phone, nasalMark) {
		features = append(features, TagNasalized)
	}
	if strings.ContainsRune(phone, glottalMark) {
		features = append(features, TagGlottalized)
	}

	base := strings.NewReplacer(string(nasalMark), "", string(glottalMark), "").Replace(phone)
	for len(base) > 1 {
		tag, ok := suffixTags[base[len(base)-1]]
		if !ok {
			break
		}
		if !slices.Contains(features, tag) {
			features = append(features, tag)
		}
		base = base[:len(base)-1]
	}
	if base == "" {
		return Phone{Raw: phone}, fmt.Errorf("%w: %q", ErrEmptyBase, phone)
	}

	syms := []rune(base)
	firstType, err := t.TypeOf(syms[0])
	if err != nil {
		return Phone{Raw: phone, Base: base}, err
	}
	if len(syms) > 1 && firstType == "nasal" {
		secondType, err := t.TypeOf(syms[1])
		if err != nil {
			return Phone{Raw: phone, Base: base}, err
		}
		if obstruentType.MatchString(secondType) {
			features = append(features, TagPrenasalized)
		}
	}

	class := TagConsonant
	switch {
	case strings.Contains(firstType, "semivowel"):
		class = TagSemivowel
	case strings.Contains(firstType, "vowel"):
		class = TagVowel
	}

	tags := make([]string, 0, len(features)+2)
	tags = append(tags, class, fmt.Sprintf("len-%d", len(syms)))
	tags = append(tags, features...)
	return Phone{Raw: phone, Base: base, Tags: tags}, nil
}
