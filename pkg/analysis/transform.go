package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// ErrNonPositive is returned when Box-Cox is fitted to data with zeros.
var ErrNonPositive = errors.New("analysis: box-cox needs positive data")

// TransformSuffix names the column holding a transformed copy.
const TransformSuffix = "_trans"

// Transformed holds both power transforms of one column.
type Transformed struct {
	Column     string
	Original   []float64
	BoxCox     []float64
	YeoJohnson []float64
	// Fitted λ rounded to 2 decimals.
	LambdaBoxCox     float64
	LambdaYeoJohnson float64
}

// Transform fits both transforms to xs. Box-Cox is fitted after shifting
// negative data to a minimum of 0.1. Outputs are standardised to zero mean
// and unit variance.
func Transform(column string, xs []float64) (*Transformed, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("analysis: %s: need at least two values", column)
	}
	shifted := xs
	if lo := floats.Min(xs); lo < 0 {
		shifted = make([]float64, len(xs))
		copy(shifted, xs)
		floats.AddConst(-lo+0.1, shifted)
	}
	if floats.Min(shifted) <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNonPositive, column)
	}

	lbc, err := fitLambda(shifted, boxCox, boxCoxJacobian(shifted))
	if err != nil {
		return nil, fmt.Errorf("%s: box-cox: %w", column, err)
	}
	lyj, err := fitLambda(xs, yeoJohnson, yeoJohnsonJacobian(xs))
	if err != nil {
		return nil, fmt.Errorf("%s: yeo-johnson: %w", column, err)
	}

	return &Transformed{
		Column:           column,
		Original:         xs,
		BoxCox:           standardize(apply(shifted, lbc, boxCox)),
		YeoJohnson:       standardize(apply(xs, lyj, yeoJohnson)),
		LambdaBoxCox:     math.Round(lbc*100) / 100,
		LambdaYeoJohnson: math.Round(lyj*100) / 100,
	}, nil
}

// TransformTable adds a Box-Cox column "<name>_trans" for every numeric
// column and returns the fits.
func TransformTable(t *Table) ([]*Transformed, error) {
	cols := len(t.Numeric)
	var out []*Transformed
	for j := range cols {
		name := t.Numeric[j]
		xs, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		tr, err := Transform(name, xs)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	for _, tr := range out {
		t.Numeric = append(t.Numeric, tr.Column+TransformSuffix)
		for i := range t.Rows {
			t.Rows[i].Values = append(t.Rows[i].Values, tr.BoxCox[i])
		}
	}
	return out, nil
}

type powerFunc func(x, lambda float64) float64

func boxCox(x, lambda float64) float64 {
	if math.Abs(lambda) < 1e-12 {
		return math.Log(x)
	}
	return (math.Pow(x, lambda) - 1) / lambda
}

func yeoJohnson(x, lambda float64) float64 {
	if x >= 0 {
		if math.Abs(lambda) < 1e-12 {
			return math.Log1p(x)
		}
		return (math.Pow(x+1, lambda) - 1) / lambda
	}
	if math.Abs(lambda-2) < 1e-12 {
		return -math.Log1p(-x)
	}
	return -(math.Pow(1-x, 2-lambda) - 1) / (2 - lambda)
}

// jacobian returns the λ-dependent log-Jacobian term of the likelihood.
type jacobian func(lambda float64) float64

func boxCoxJacobian(xs []float64) jacobian {
	var logs float64
	for _, x := range xs {
		logs += math.Log(x)
	}
	return func(lambda float64) float64 { return (lambda - 1) * logs }
}

func yeoJohnsonJacobian(xs []float64) jacobian {
	var s float64
	for _, x := range xs {
		if x >= 0 {
			s += math.Log1p(x)
		} else {
			s -= math.Log1p(-x)
		}
	}
	return func(lambda float64) float64 { return (lambda - 1) * s }
}

// fitLambda maximises the profile log-likelihood
// -n/2·log(var(f(x, λ))) + J(λ).
func fitLambda(xs []float64, f powerFunc, jac jacobian) (float64, error) {
	n := float64(len(xs))
	buf := make([]float64, len(xs))
	nll := func(p []float64) float64 {
		for i, x := range xs {
			buf[i] = f(x, p[0])
		}
		v := stat.PopVariance(buf, nil)
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return math.Inf(1)
		}
		return n/2*math.Log(v) - jac(p[0])
	}
	res, err := optimize.Minimize(optimize.Problem{Func: nll}, []float64{1}, nil, &optimize.NelderMead{})
	if err != nil {
		return 0, err
	}
	return res.X[0], nil
}

func apply(xs []float64, lambda float64, f powerFunc) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = f(x, lambda)
	}
	return out
}

func standardize(xs []float64) []float64 {
	mean := stat.Mean(xs, nil)
	sd := math.Sqrt(stat.PopVariance(xs, nil))
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x - mean
		if sd > 0 {
			out[i] /= sd
		}
	}
	return out
}
