package sonority

import (
	"errors"
	"fmt"
	"strings"
)

// Scale numbers in column order of the default table.
const (
	ScaleParker = iota
	ScaleFought
	ScaleClements
	ScaleObstruentSonorant
	ScaleCV
)

// ScaleNames labels the scales of DefaultEntries by index.
var ScaleNames = []string{"Parker", "Fought", "Clements", "Obstruent-Sonorant", "C-V"}

// ClickSymbol is the ASJPcode symbol for all clicks. Its value can be
// overridden per ScoringContext.
const ClickSymbol = '!'

// AspirationSymbol is the plain aspiration symbol; devoiced and aspirated
// phones are clamped to its value.
const AspirationSymbol = 'h'

// ErrScaleOutOfRange is returned for a scale number the table has no column for.
var ErrScaleOutOfRange = errors.New("sonority: scale out of range")

// UnknownSymbolError reports a symbol missing from the scale table.
type UnknownSymbolError struct {
	Symbol rune
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("sonority: unknown symbol %q", e.Symbol)
}

// Entry groups the monophonic symbols that share one type and one value
// per scale. Symbols is written in the column layout of the reference
// table; spaces are ignored.
type Entry struct {
	Symbols string
	Values  []float64
	Type    string
}

// DefaultEntries is the sonority table for ASJPcode.
//
// Scales: 0 Parker, 1 Fought, 2 Clements, 3 Obstruent-Sonorant, 4 C-V.
// A symbol listed under several entries takes the type and values of the
// first one (p = 1 in Parker's scale).
var DefaultEntries = []Entry{
	//  ASJPcode             0     1    2  3  4
	{"!        ", []float64{1, 2, 1, 1, 1}, "click"},
	{"        7", []float64{1, 2, 1, 1, 1}, "guttural plosive"},
	{"p  ttTkq ", []float64{1, 2, 1, 1, 1}, "voiceless plosive"},
	{"b  dd gG ", []float64{4, 2, 1, 1, 1}, "voiced plosive"},
	{"   cC    ", []float64{2, 3, 1, 1, 1}, "voiceless affricate"},
	{"   cj    ", []float64{5, 2.5, 1, 1, 1}, "voiced affricate"},
	{"pf8sS    ", []float64{3, 4, 1, 1, 1}, "voiceless fricative"},
	{"bv8zZ    ", []float64{6, 3, 1, 1, 1}, "voiced fricative"},
	{"      xXh", []float64{4, 4, 1, 1, 1}, "guttural fricative"},
	{"m 4nn5N  ", []float64{7, 9, 2, 2, 1}, "nasal"},
	{"   lLLL  ", []float64{9, 17, 3, 2, 1}, "lateral"},
	{"   r     ", []float64{10, 36, 3, 2, 1}, "rhotic"},
	{"w        ", []float64{12, 27, 4, 2, 2}, "back semivowel"},
	{"     y   ", []float64{12, 43, 4, 2, 2}, "front semivowel"},
	{"      3  ", []float64{13, 55, 5, 2, 3}, "interior vowel"},
	{"     i   ", []float64{15, 41, 5, 2, 3}, "high front vowel"},
	{"      u  ", []float64{15, 65, 5, 2, 3}, "high back vowel"},
	{"     e   ", []float64{16, 69, 5, 2, 3}, "mid vowel"},
	{"     Eo  ", []float64{16.5, 75, 5, 2, 3}, "mid/low vowel"},
	{"     a   ", []float64{17, 100, 5, 2, 3}, "low vowel"},
}

// Table is the symbol lookup built from a list of entries.
type Table struct {
	entries []Entry
	scales  int
	types   map[rune]string
	values  map[rune][]float64
}

// NewTable indexes entries by symbol. Every entry must carry the same number
// of scale values.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("sonority: empty scale table")
	}
	t := &Table{
		entries: entries,
		scales:  len(entries[0].Values),
		types:   make(map[rune]string),
		values:  make(map[rune][]float64),
	}
	for i, e := range entries {
		if len(e.Values) != t.scales {
			return nil, fmt.Errorf("sonority: entry %d (%s) has %d scale values, want %d", i, e.Type, len(e.Values), t.scales)
		}
		for _, sym := range strings.ReplaceAll(e.Symbols, " ", "") {
			if _, seen := t.types[sym]; seen {
				continue
			}
			t.types[sym] = e.Type
			t.values[sym] = e.Values
		}
	}
	return t, nil
}

// DefaultTable returns the table built from DefaultEntries.
func DefaultTable() *Table {
	t, err := NewTable(DefaultEntries)
	if err != nil {
		panic(err)
	}
	return t
}

// Scales is the number of scales the table defines.
func (t *Table) Scales() int { return t.scales }

// Entries returns the declared entries in order.
func (t *Table) Entries() []Entry { return t.entries }

// Has reports whether sym is a known monophone.
func (t *Table) Has(sym rune) bool {
	_, ok := t.types[sym]
	return ok
}

// TypeOf returns the type label of sym, e.g. "nasal".
func (t *Table) TypeOf(sym rune) (string, error) {
	typ, ok := t.types[sym]
	if !ok {
		return "", &UnknownSymbolError{Symbol: sym}
	}
	return typ, nil
}

// Value returns the sonority of sym under scale.
func (t *Table) Value(scale int, sym rune) (float64, error) {
	if scale < 0 || scale >= t.scales {
		return 0, fmt.Errorf("%w: %d", ErrScaleOutOfRange, scale)
	}
	vals, ok := t.values[sym]
	if !ok {
		return 0, &UnknownSymbolError{Symbol: sym}
	}
	return vals[scale], nil
}
