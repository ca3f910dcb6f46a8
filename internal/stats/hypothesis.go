// Package stats implements the hypothesis tests used to annotate survey
// cross-tabulations: Welch's two-sample t-test, one-way ANOVA and Pearson's
// chi-square goodness-of-fit test.
//
// Degenerate input never produces an error. A test that cannot be computed
// returns a NaN p-value, which Significant treats as "not significant".
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Result holds the outcome of one hypothesis test
type Result struct {
	Test      string  `json:"test"`
	Statistic float64 `json:"statistic"`
	DF        float64 `json:"df"`
	DF2       float64 `json:"df2,omitempty"`
	PValue    float64 `json:"p_value"`
}

// Significant reports whether the p-value is below level. NaN is never significant.
func (r Result) Significant(level float64) bool {
	return r.PValue < level
}

func undefined(test string) Result {
	return Result{Test: test, Statistic: math.NaN(), DF: math.NaN(), PValue: math.NaN()}
}

// WelchTTest compares the means of two independent samples without assuming
// equal variances. Both samples need at least two observations.
func WelchTTest(a, b []float64) Result {
	const name = "welch_t"
	if len(a) < 2 || len(b) < 2 {
		return undefined(name)
	}

	n1, n2 := float64(len(a)), float64(len(b))
	m1, v1 := stat.MeanVariance(a, nil)
	m2, v2 := stat.MeanVariance(b, nil)
	vn1, vn2 := v1/n1, v2/n2
	denom := vn1 + vn2

	if denom == 0 {
		// Both samples are constant: identical means carry no evidence,
		// different means are infinitely far apart.
		if m1 == m2 {
			return undefined(name)
		}
		return Result{Test: name, Statistic: math.Copysign(math.Inf(1), m1-m2), DF: 1, PValue: 0}
	}

	df := denom * denom / (vn1*vn1/(n1-1) + vn2*vn2/(n2-1))
	t := (m1 - m2) / math.Sqrt(denom)
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	return Result{
		Test:      name,
		Statistic: t,
		DF:        df,
		PValue:    math.Min(1, 2*dist.Survival(math.Abs(t))),
	}
}

// OneWayANOVA tests whether the means of two or more groups are equal.
// Empty groups are ignored.
func OneWayANOVA(groups ...[]float64) Result {
	const name = "anova_f"

	var (
		used  [][]float64
		total int
		sum   float64
	)
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		used = append(used, g)
		total += len(g)
		sum += floats.Sum(g)
	}

	k := len(used)
	if k < 2 || total-k < 1 {
		return undefined(name)
	}
	grand := sum / float64(total)

	var ssb, ssw float64
	for _, g := range used {
		m := stat.Mean(g, nil)
		d := m - grand
		ssb += float64(len(g)) * d * d
		for _, x := range g {
			e := x - m
			ssw += e * e
		}
	}

	dfb, dfw := float64(k-1), float64(total-k)
	if ssw == 0 {
		if ssb == 0 {
			return undefined(name)
		}
		return Result{Test: name, Statistic: math.Inf(1), DF: dfb, DF2: dfw, PValue: 0}
	}

	f := (ssb / dfb) / (ssw / dfw)
	dist := distuv.F{D1: dfb, D2: dfw}
	return Result{Test: name, Statistic: f, DF: dfb, DF2: dfw, PValue: dist.Survival(f)}
}

// ChiSquareGOF runs Pearson's goodness-of-fit test of observed against expected
// frequencies. Cells with zero expected and zero observed frequency carry no
// information and are left out, reducing the degrees of freedom.
func ChiSquareGOF(observed, expected []float64) Result {
	const name = "chi_square"
	if len(observed) != len(expected) {
		return undefined(name)
	}

	var (
		chi2  float64
		cells int
	)
	for i, o := range observed {
		e := expected[i]
		if e == 0 {
			if o == 0 {
				continue
			}
			cells++
			chi2 = math.Inf(1)
			continue
		}
		cells++
		d := o - e
		chi2 += d * d / e
	}

	df := float64(cells - 1)
	if df < 1 {
		return undefined(name)
	}
	if math.IsInf(chi2, 1) {
		return Result{Test: name, Statistic: chi2, DF: df, PValue: 0}
	}

	dist := distuv.ChiSquared{K: df}
	return Result{Test: name, Statistic: chi2, DF: df, PValue: dist.Survival(chi2)}
}
