package sonority

import (
	"cmp"
	"slices"
	"strings"

	"github.com/japaniel/sonority/pkg/corpus"
)

// PhoneCounts counts every phone occurrence over all words.
func PhoneCounts(doculects []*corpus.Doculect) map[string]int {
	counts := make(map[string]int)
	memo := make(map[string][]string)
	for _, d := range doculects {
		for _, s := range d.Synsets {
			for _, w := range s.Words {
				phones, ok := memo[w.Form]
				if !ok {
					phones = Segment(w.Form)
					memo[w.Form] = phones
				}
				for _, p := range phones {
					counts[p]++
				}
			}
		}
	}
	return counts
}

// PhoneRecord is one row of the classified phone inventory.
type PhoneRecord struct {
	Phone string
	Base  string
	Count int
	Tags  string
}

// ClassifyPhones groups counted phones by their joined tag string. Rows are
// ordered by tags, then by count descending, then by base.
func ClassifyPhones(t *Table, counts map[string]int) ([]PhoneRecord, error) {
	out := make([]PhoneRecord, 0, len(counts))
	for ph, n := range counts {
		p, err := classify(t, ph)
		if err != nil {
			return nil, err
		}
		out = append(out, PhoneRecord{Phone: ph, Base: p.Base, Count: n, Tags: p.TagString()})
	}
	slices.SortFunc(out, func(a, b PhoneRecord) int {
		return cmp.Or(
			strings.Compare(a.Tags, b.Tags),
			cmp.Compare(b.Count, a.Count),
			strings.Compare(a.Base, b.Base),
			strings.Compare(a.Phone, b.Phone),
		)
	})
	return out, nil
}

// Word structure symbols.
const (
	StructureConsonant = 'C'
	StructureVowel     = 'V'
)

// vowelThreshold separates V from C on the Parker scale with clicks at 1.
const vowelThreshold = 6

// WordStructures counts the C/V skeletons of all words. A phone scoring
// above 6 on the Parker scale is a V.
func WordStructures(t *Table, doculects []*corpus.Doculect) (map[string]int, error) {
	c, err := NewContext(t, ScaleParker, 1)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, d := range doculects {
		for _, s := range d.Synsets {
			for _, w := range s.Words {
				skel, err := c.Structure(w.Form)
				if err != nil {
					return nil, err
				}
				out[skel]++
			}
		}
	}
	return out, nil
}

// Structure returns the C/V skeleton of a word under the active scale.
func (c *Context) Structure(word string) (string, error) {
	phones := c.Phones(word)
	b := make([]byte, 0, len(phones))
	for _, ph := range phones {
		v, err := c.Score(ph)
		if err != nil {
			return "", err
		}
		if v > vowelThreshold {
			b = append(b, StructureVowel)
		} else {
			b = append(b, StructureConsonant)
		}
	}
	return string(b), nil
}
