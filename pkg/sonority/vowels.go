package sonority

import (
	"fmt"
	"math"
	"strings"
)

// monophthongs are the ASJPcode vowel letters.
const monophthongs = "3iueEoa"

// MergedWordIndex is WordIndex with every run of adjacent vowel phones
// counted as one nucleus, scored by the mean of its phones.
func (c *Context) MergedWordIndex(word string) (float64, error) {
	if v, ok := c.merged[word]; ok {
		return v, nil
	}
	phones := c.Phones(word)
	if len(phones) == 0 {
		return math.NaN(), nil
	}

	var (
		units   []float64
		nucleus []float64
	)
	flush := func() {
		if len(nucleus) > 0 {
			units = append(units, mean(nucleus))
			nucleus = nucleus[:0]
		}
	}
	for _, ph := range phones {
		p, err := c.Classify(ph)
		if err != nil {
			return 0, fmt.Errorf("word %q: %w", word, err)
		}
		v, err := c.Score(ph)
		if err != nil {
			return 0, fmt.Errorf("word %q: %w", word, err)
		}
		if p.Class() == TagVowel {
			nucleus = append(nucleus, v)
			continue
		}
		flush()
		units = append(units, v)
	}
	flush()

	v := mean(units)
	c.merged[word] = v
	return v, nil
}

// DoubleMonophthongs rewrites a form so that every vowel standing alone is
// written twice. Vowel sequences are left as they are and nasalization is
// dropped, since it does not change the score.
func DoubleMonophthongs(form string) string {
	form = strings.ReplaceAll(form, string(nasalMark), "")
	isVowel := func(b byte) bool { return strings.IndexByte(monophthongs, b) >= 0 }

	var b strings.Builder
	for i := 0; i < len(form); i++ {
		ch := form[i]
		b.WriteByte(ch)
		if !isVowel(ch) {
			continue
		}
		if i == len(form)-1 || !isVowel(form[i+1]) {
			b.WriteByte(ch)
			continue
		}
		for i+1 < len(form) && isVowel(form[i+1]) {
			i++
			b.WriteByte(form[i])
		}
	}
	return b.String()
}
