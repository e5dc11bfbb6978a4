package sonority

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/japaniel/sonority/pkg/corpus"
)

// Options selects how word values are averaged into a doculect value.
type Options struct {
	// ByMeaning averages words per synset first, then the synset averages.
	// Otherwise all qualifying words are averaged directly.
	ByMeaning bool
	// WithLoans includes words flagged as loans.
	WithLoans bool
	// MergeVowels scores each run of adjacent vowels as one nucleus.
	MergeVowels bool
}

// WordFunc returns the value of a single word form. NaN means the word
// carries no value and is skipped.
type WordFunc func(form string) (float64, error)

// Aggregate averages f over the words of d. It returns NaN when no word
// qualifies; callers must treat that as missing data.
func Aggregate(d *corpus.Doculect, opts Options, f WordFunc) (float64, error) {
	var values []float64
	for _, s := range d.Synsets {
		var synset []float64
		for _, w := range s.Words {
			if w.Loan && !opts.WithLoans {
				continue
			}
			v, err := f(w.Form)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", d.Name, err)
			}
			if math.IsNaN(v) {
				continue
			}
			synset = append(synset, v)
		}
		if !opts.ByMeaning {
			values = append(values, synset...)
			continue
		}
		if len(synset) > 0 {
			values = append(values, mean(synset))
		}
	}
	return mean(values), nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// wordFunc picks the per-word scorer for opts.
func (c *Context) wordFunc(opts Options) WordFunc {
	if opts.MergeVowels {
		return c.MergedWordIndex
	}
	return c.WordIndex
}

// Indices returns one sonority index per doculect under the context's
// active scale.
func Indices(c *Context, doculects []*corpus.Doculect, opts Options) ([]float64, error) {
	f := c.wordFunc(opts)
	out := make([]float64, len(doculects))
	for i, d := range doculects {
		v, err := Aggregate(d, opts, f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// WordLengths returns the mean phone count per doculect.
func WordLengths(doculects []*corpus.Doculect, opts Options) []float64 {
	memo := make(map[string]float64)
	length := func(form string) (float64, error) {
		if v, ok := memo[form]; ok {
			return v, nil
		}
		v := float64(len(Segment(form)))
		memo[form] = v
		return v, nil
	}
	out := make([]float64, len(doculects))
	for i, d := range doculects {
		// length never fails
		out[i], _ = Aggregate(d, opts, length)
	}
	return out
}

// AllIndices scores every scale of t concurrently, one Context per scale.
// clicks holds the click override per scale; nil keeps the table values.
// The result is indexed [scale][doculect].
func AllIndices(ctx context.Context, t *Table, doculects []*corpus.Doculect, opts Options, clicks []float64) ([][]float64, error) {
	n := t.Scales()
	if clicks == nil {
		clicks = make([]float64, n)
	}
	if len(clicks) != n {
		return nil, fmt.Errorf("sonority: %d click overrides for %d scales", len(clicks), n)
	}

	results := make([][]float64, n)
	g, gctx := errgroup.WithContext(ctx)
	for scale := range n {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			c, err := NewContext(t, scale, clicks[scale])
			if err != nil {
				return err
			}
			v, err := Indices(c, doculects, opts)
			if err != nil {
				return fmt.Errorf("scale %d: %w", scale, err)
			}
			results[scale] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
