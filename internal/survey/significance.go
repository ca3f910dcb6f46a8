package survey

import "surveycli/internal/stats"

// anovaLevel is the fixed threshold of the omnibus branch below. It does not
// follow the caller's level.
const anovaLevel = 0.05

// compareMeans decides whether single-answer codes differ between groups:
//
//	groups | groups with data | test                  | significant when
//	-------+------------------+-----------------------+------------------
//	2      | any              | Welch two-sample t    | p < level
//	> 2    | exactly 2        | one-way ANOVA         | p < 0.05
//	other  | -                | none                  | never
//
// Samples must already have missing values dropped.
func compareMeans(samples [][]float64, level float64) bool {
	switch {
	case len(samples) == 2:
		return stats.WelchTTest(samples[0], samples[1]).Significant(level)
	case len(samples) > 2 && nonEmpty(samples) == 2:
		return stats.OneWayANOVA(samples...).Significant(anovaLevel)
	default:
		return false
	}
}

// compareProportions runs a chi-square goodness-of-fit test per choice. For
// choice c the expected count of group g is respondents(g) times the share of
// all respondents who picked c. Fewer than two groups, or no respondents at all,
// is never significant.
func compareProportions(tallies []Tally, level float64) []bool {
	if len(tallies) == 0 {
		return nil
	}
	flags := make([]bool, len(tallies[0].Counts))
	if len(tallies) < 2 {
		return flags
	}

	respondents := 0
	for _, t := range tallies {
		respondents += t.Respondents
	}
	if respondents == 0 {
		return flags
	}

	for c := range flags {
		observed := make([]float64, len(tallies))
		choiceTotal := 0
		for g, t := range tallies {
			observed[g] = float64(t.Counts[c])
			choiceTotal += t.Counts[c]
		}

		share := float64(choiceTotal) / float64(respondents)
		expected := make([]float64, len(tallies))
		for g, t := range tallies {
			expected[g] = share * float64(t.Respondents)
		}
		flags[c] = stats.ChiSquareGOF(observed, expected).Significant(level)
	}
	return flags
}

func nonEmpty(samples [][]float64) int {
	n := 0
	for _, s := range samples {
		if len(s) > 0 {
			n++
		}
	}
	return n
}
