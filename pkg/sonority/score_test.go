package sonority

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T, scale int, click float64) *Context {
	t.Helper()
	c, err := NewContext(DefaultTable(), scale, click)
	require.NoError(t, err)
	return c
}

func TestTableFirstDeclaredEntryWins(t *testing.T) {
	tbl := DefaultTable()
	require.Equal(t, 5, tbl.Scales())

	cases := []struct {
		sym   rune
		typ   string
		value float64
	}{
		{'p', "voiceless plosive", 1},
		{'b', "voiced plosive", 4},
		{'c', "voiceless affricate", 2},
		{'8', "voiceless fricative", 3},
	}
	for _, c := range cases {
		t.Run(string(c.sym), func(t *testing.T) {
			typ, err := tbl.TypeOf(c.sym)
			require.NoError(t, err)
			assert.Equal(t, c.typ, typ)
			v, err := tbl.Value(ScaleParker, c.sym)
			require.NoError(t, err)
			assert.Equal(t, c.value, v)
		})
	}

	// every symbol resolves to the first entry that lists it
	seen := map[rune]bool{}
	for _, e := range tbl.Entries() {
		for _, sym := range e.Symbols {
			if sym == ' ' || seen[sym] {
				continue
			}
			seen[sym] = true
			typ, err := tbl.TypeOf(sym)
			require.NoError(t, err)
			assert.Equal(t, e.Type, typ, "symbol %q", sym)
		}
	}
}

func TestTableErrors(t *testing.T) {
	tbl := DefaultTable()

	_, err := tbl.Value(5, 'p')
	assert.ErrorIs(t, err, ErrScaleOutOfRange)

	_, err = tbl.TypeOf('Q')
	var unknown *UnknownSymbolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 'Q', unknown.Symbol)

	_, err = NewTable([]Entry{{"p", []float64{1, 2}, "a"}, {"a", []float64{1}, "b"}})
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	c := newContext(t, ScaleParker, 0)
	cases := []struct {
		phone string
		base  string
		tags  []string
	}{
		{"p", "p", []string{TagConsonant, "len-1"}},
		{"th", "t", []string{TagConsonant, "len-1", TagAspirated}},
		{"a*", "a", []string{TagVowel, "len-1", TagNasalized}},
		{`k"w`, "k", []string{TagConsonant, "len-1", TagGlottalized, TagLabialized}},
		{"mb", "mb", []string{TagConsonant, "len-2", TagPrenasalized}},
		{"tsh", "ts", []string{TagConsonant, "len-2", TagAspirated}},
		{"kwy", "k", []string{TagConsonant, "len-1", TagPalatalized, TagLabialized}},
		{"y", "y", []string{TagSemivowel, "len-1"}},
		{"h", "h", []string{TagConsonant, "len-1"}},
		{"ww", "w", []string{TagSemivowel, "len-1", TagLabialized}},
	}
	for _, tc := range cases {
		t.Run(tc.phone, func(t *testing.T) {
			p, err := c.Classify(tc.phone)
			require.NoError(t, err)
			assert.Equal(t, tc.base, p.Base)
			assert.Equal(t, tc.tags, p.Tags)
		})
	}
}

func TestTagStringKeepsDetectionOrder(t *testing.T) {
	c := newContext(t, ScaleParker, 0)
	cases := map[string]string{
		`k"w`: "consonant; len-1; glottalized; labialized",
		"m*b": "consonant; len-2; nasalized; prenasalized",
		`a*"`: "vowel; len-1; nasalized; glottalized",
	}
	for phone, want := range cases {
		p, err := c.Classify(phone)
		require.NoError(t, err)
		assert.Equal(t, want, p.TagString(), phone)
	}
}

func TestClassifyErrors(t *testing.T) {
	c := newContext(t, ScaleParker, 0)

	_, err := c.Classify("*")
	assert.ErrorIs(t, err, ErrEmptyBase)

	_, err = c.Classify("Q")
	var unknown *UnknownSymbolError
	assert.ErrorAs(t, err, &unknown)

	// memoized failures are returned again
	_, err = c.Classify("*")
	assert.True(t, errors.Is(err, ErrEmptyBase))
}

func TestScore(t *testing.T) {
	c := newContext(t, ScaleParker, 0)
	h, err := c.Value(AspirationSymbol)
	require.NoError(t, err)

	cases := []struct {
		phone string
		want  float64
	}{
		{"p", 1},
		{"th", min(1, h)},
		{"mh", min(7, h)},
		{"mb", (7 + 4) / 2.0},
		{"ts", 1},
		{"nz", (7 + 6) / 2.0},
		{"a*", 17},
	}
	for _, tc := range cases {
		t.Run(tc.phone, func(t *testing.T) {
			v, err := c.Score(tc.phone)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestScoreAspiratedNeverAboveH(t *testing.T) {
	for scale := range DefaultTable().Scales() {
		c := newContext(t, scale, 0)
		h, err := c.Value(AspirationSymbol)
		require.NoError(t, err)
		for _, ph := range []string{"th", "mh", "lh", "rh", "wh", "ah", "mbh"} {
			v, err := c.Score(ph)
			require.NoError(t, err)
			assert.LessOrEqual(t, v, h, "scale %d phone %s", scale, ph)
		}
	}
}

func TestClickOverride(t *testing.T) {
	c := newContext(t, ScaleParker, 0)
	v, err := c.WordIndex("!a")
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	require.NoError(t, c.SetScale(ScaleParker, 5))
	v, err = c.WordIndex("!a")
	require.NoError(t, err)
	assert.Equal(t, 11.0, v)
}

func TestSetScaleDropsMemo(t *testing.T) {
	c := newContext(t, ScaleParker, 0)
	v, err := c.WordIndex("pa")
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)

	require.NoError(t, c.SetScale(ScaleFought, 0))
	v, err = c.WordIndex("pa")
	require.NoError(t, err)
	assert.Equal(t, 51.0, v)

	assert.ErrorIs(t, c.SetScale(9, 0), ErrScaleOutOfRange)
	assert.Equal(t, ScaleFought, c.Scale())
}

func TestWordIndex(t *testing.T) {
	c := newContext(t, ScaleParker, 0)

	v, err := c.WordIndex("")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	_, err = c.WordIndex("pQ")
	var unknown *UnknownSymbolError
	assert.ErrorAs(t, err, &unknown)

	assert.Equal(t, 3.0, c.WordLength("att~"))
}
