package engine

import "math"

// leagueAvgWPSwing is the average absolute win-probability change per plate
// appearance across all situations; the leverage index is normalized to it.
const leagueAvgWPSwing = 0.035

// leverageMix is the representative outcome distribution a leverage
// evaluation probes. Probabilities sum to 1.
var leverageMix = []struct {
	Outcome PlayOutcome
	Prob    float64
}{
	{Strikeout, 0.22},
	{Groundout, 0.20},
	{Single, 0.16},
	{Flyout, 0.12},
	{OtherOut, 0.10},
	{Walk, 0.09},
	{Double, 0.05},
	{HomeRun, 0.03},
	{DoublePlay, 0.03},
}

// Leverage index label thresholds, closed on the low end.
const (
	liMedium   = 0.5
	liHigh     = 1.5
	liVeryHigh = 3.0
)

// LeverageIndex measures how much the current plate appearance can move the
// win probability, relative to an average plate appearance. An index of 1.0
// is average importance.
func LeverageIndex(g GameState, env ScoringEnvironment) (float64, error) {
	base, err := WinProbability(g, env)
	if err != nil {
		return 0, err
	}

	swing := 0.0
	for _, mix := range leverageMix {
		tr, err := Apply(g.Bases, mix.Outcome)
		if err != nil {
			return 0, err
		}
		after, err := WinProbabilityAfter(g, tr, env)
		if err != nil {
			return 0, err
		}
		swing += mix.Prob * math.Abs(after-base)
	}

	li := swing / leagueAvgWPSwing
	return math.Round(li*100) / 100, nil
}

// LeverageLabel buckets a leverage index for display.
func LeverageLabel(li float64) string {
	switch {
	case li < liMedium:
		return "Low"
	case li < liHigh:
		return "Medium"
	case li < liVeryHigh:
		return "High"
	default:
		return "Very High"
	}
}
