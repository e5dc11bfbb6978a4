package sonority

import (
	"errors"
	"fmt"
	"strings"

	"github.com/japaniel/sonority/pkg/corpus"
)

// DiagnosticKind classifies a validation finding.
type DiagnosticKind int

const (
	InvalidWord DiagnosticKind = iota
	NoVowel
	NoConsonant
)

func (k DiagnosticKind) String() string {
	switch k {
	case InvalidWord:
		return "invalid word"
	case NoVowel:
		return "no vowel"
	case NoConsonant:
		return "no consonant"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Diagnostic is one non-fatal problem found in the corpus.
type Diagnostic struct {
	Kind     DiagnosticKind
	Doculect string
	// Word is set for InvalidWord.
	Word   string
	Detail string
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case InvalidWord:
		return fmt.Sprintf("%s has invalid word: %s (%s)", d.Doculect, d.Word, d.Detail)
	case NoVowel:
		return fmt.Sprintf("%s has no vowel! Classes: %s", d.Doculect, d.Detail)
	default:
		return fmt.Sprintf("%s has no consonant! Classes: %s", d.Doculect, d.Detail)
	}
}

// Validate checks every word of every doculect against t. Findings are
// returned, never raised: a bad word does not stop the other doculects.
func Validate(t *Table, doculects []*corpus.Doculect) []Diagnostic {
	// Classification is scale independent; scale 0 only provides the memo.
	c, err := NewContext(t, 0, 0)
	if err != nil {
		return nil
	}

	var out []Diagnostic
	for _, d := range doculects {
		classes := make(map[string]bool)
		for _, s := range d.Synsets {
			for _, w := range s.Words {
				if detail := c.checkWord(w.Form, classes); detail != "" {
					out = append(out, Diagnostic{Kind: InvalidWord, Doculect: d.Name, Word: w.Form, Detail: detail})
				}
			}
		}
		seen := classList(classes)
		if !classes[TagVowel] {
			out = append(out, Diagnostic{Kind: NoVowel, Doculect: d.Name, Detail: seen})
		}
		if !classes[TagConsonant] {
			out = append(out, Diagnostic{Kind: NoConsonant, Doculect: d.Name, Detail: seen})
		}
	}
	return out
}

// checkWord records the segment classes of form into classes and returns
// a description of the first problem, or "".
func (c *Context) checkWord(form string, classes map[string]bool) string {
	phones := c.Phones(form)
	if len(phones) == 0 {
		return "no phones"
	}
	problem := ""
	for _, ph := range phones {
		if ph == "" {
			problem = "empty phone"
			continue
		}
		p, err := c.Classify(ph)
		if err != nil {
			if problem == "" {
				problem = describe(err)
			}
			continue
		}
		classes[p.Class()] = true
		for _, r := range p.Base {
			if !c.table.Has(r) && problem == "" {
				problem = describe(&UnknownSymbolError{Symbol: r})
			}
		}
	}
	return problem
}

func describe(err error) string {
	var unknown *UnknownSymbolError
	switch {
	case errors.As(err, &unknown):
		return fmt.Sprintf("unknown symbol %q", unknown.Symbol)
	case errors.Is(err, ErrEmptyBase):
		return "empty base"
	default:
		return err.Error()
	}
}

func classList(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for _, k := range []string{TagConsonant, TagSemivowel, TagVowel} {
		if m[k] {
			keys = append(keys, k)
		}
	}
	return "[" + strings.Join(keys, ", ") + "]"
}
