package sonority

import (
	"fmt"
	"math"
)

// Context holds the active scale and the memo tables of one scoring pass.
//
// Phone scores depend on the scale and on the click override, so every
// memo table is dropped whenever either changes. A Context is not safe for
// concurrent use; score several scales in parallel with one Context each.
type Context struct {
	table *Table
	scale int
	click float64

	phones  map[string][]string
	classes map[string]classified
	scores  map[string]float64
	words   map[string]float64
	merged  map[string]float64
}

type classified struct {
	phone Phone
	err   error
}

// NewContext returns a Context scoring under scale. A click override of 0
// keeps the table value for clicks.
func NewContext(t *Table, scale int, click float64) (*Context, error) {
	c := &Context{table: t}
	if err := c.SetScale(scale, click); err != nil {
		return nil, err
	}
	return c, nil
}

// Table returns the scale table the context reads from.
func (c *Context) Table() *Table { return c.table }

// Scale returns the active scale number.
func (c *Context) Scale() int { return c.scale }

// Click returns the active click override, 0 when none.
func (c *Context) Click() float64 { return c.click }

// SetScale switches the active scale and click override and clears every
// memo table.
func (c *Context) SetScale(scale int, click float64) error {
	if scale < 0 || scale >= c.table.Scales() {
		return fmt.Errorf("%w: %d", ErrScaleOutOfRange, scale)
	}
	c.scale = scale
	c.click = click
	c.Reset()
	return nil
}

// Reset clears the memo tables.
func (c *Context) Reset() {
	c.phones = make(map[string][]string)
	c.classes = make(map[string]classified)
	c.scores = make(map[string]float64)
	c.words = make(map[string]float64)
	c.merged = make(map[string]float64)
}

// Value returns the sonority of one monophone under the active scale.
func (c *Context) Value(sym rune) (float64, error) {
	if sym == ClickSymbol && c.click != 0 {
		return c.click, nil
	}
	return c.table.Value(c.scale, sym)
}

// Phones segments a word, memoized by the raw word text.
func (c *Context) Phones(word string) []string {
	if p, ok := c.phones[word]; ok {
		return p
	}
	p := Segment(word)
	c.phones[word] = p
	return p
}

// Classify derives the base and tags of a phone, memoized per phone.
func (c *Context) Classify(phone string) (Phone, error) {
	if r, ok := c.classes[phone]; ok {
		return r.phone, r.err
	}
	p, err := classify(c.table, phone)
	c.classes[phone] = classified{phone: p, err: err}
	return p, err
}

// WordIndex is the mean phone score of a word; NaN for a word without phones.
func (c *Context) WordIndex(word string) (float64, error) {
	if v, ok := c.words[word]; ok {
		return v, nil
	}
	phones := c.Phones(word)
	if len(phones) == 0 {
		return math.NaN(), nil
	}
	var sum float64
	for _, p := range phones {
		v, err := c.Score(p)
		if err != nil {
			return 0, fmt.Errorf("word %q: %w", word, err)
		}
		sum += v
	}
	v := sum / float64(len(phones))
	c.words[word] = v
	return v, nil
}

// WordLength is the number of phones in a word.
func (c *Context) WordLength(word string) float64 {
	return float64(len(c.Phones(word)))
}
