package engine

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// varianceFactor widens the normal approximation of half-inning scoring
	// beyond its Poisson mean; runs cluster more than independence implies.
	varianceFactor = 1.3

	// tieScoringFactor calibrates P(score at least one run) = 1 - exp(-RE * f)
	// for a tied home ninth, matched against historical WP tables.
	tieScoringFactor = 1.8

	// comebackLambdaBottom and comebackLambdaTop scale the current RE24 value
	// into a Poisson rate for the trailing team's remaining scoring.
	comebackLambdaBottom = 1.5
	comebackLambdaTop    = 1.3

	// extraInningsHomeWP is the home team's chance once a game reaches extra
	// innings; walkOffRetainedWP is the same chance when the visitors have
	// just tied it in the top of the ninth and the home side bats next.
	extraInningsHomeWP = 0.50
	walkOffRetainedWP  = 0.55
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// WinProbability estimates the home team's chance of winning from the given
// state. Remaining-game scoring is modeled as approximately normal with a
// per-half-inning mean of runsPerGame/18; the ninth inning and later switch
// to Poisson tail mass because the game ends on discrete events there (a
// walk-off run, a third out with the lead intact).
//
// Non-terminal states are clamped to [0.01, 0.99]: the engine only returns
// exactly 1 or 0 for transitions that definitively end the game (see
// WinProbabilityAfter).
func WinProbability(g GameState, env ScoringEnvironment) (float64, error) {
	if err := g.validate(); err != nil {
		return 0, err
	}
	re, err := RE24(g.Bases, env)
	if err != nil {
		return 0, err
	}

	if g.Inning >= 9 {
		if wp, ok := lateInningWP(g, re); ok {
			return wp, nil
		}
	}

	runsPerHalf := env.RunsPerGame / 18.0

	// Expected additional runs from the current base-out state benefit
	// whichever side is batting.
	var homeExtra, awayExtra float64
	if g.Half == Top {
		awayExtra = re
	} else {
		homeExtra = re
	}

	awayHalves := math.Max(float64(9-g.Inning), 0)
	var homeHalves float64
	if g.Half == Top {
		homeHalves = math.Max(float64(9-g.Inning+1), 1)
	} else {
		homeHalves = awayHalves
	}

	mean := float64(g.ScoreDiff) + homeExtra - awayExtra + (homeHalves-awayHalves)*runsPerHalf
	std := math.Sqrt((homeHalves+awayHalves)*runsPerHalf*varianceFactor + 0.01)

	wp := stdNormal.CDF(mean / math.Max(std, 0.1))
	return clampWP(wp), nil
}

// lateInningWP handles the ninth inning and beyond, where the continuous
// approximation breaks down. Returns ok=false when the generic model still
// applies (visitors batting in a tied or visitor-led game).
func lateInningWP(g GameState, re float64) (float64, bool) {
	if g.Half == Bottom {
		switch {
		case g.ScoreDiff > 0:
			// Home leads batting in the bottom of the ninth or later. The
			// game is all but over, yet not terminal, so stay under 1.
			return 0.99, true
		case g.ScoreDiff == 0:
			// Walk-off territory: one run wins it, and failing that the
			// home side still gets even odds in extras.
			pScore := 1 - math.Exp(-re*tieScoringFactor)
			return clampWP(pScore + (1-pScore)*extraInningsHomeWP), true
		default:
			// Home trails; it needs at least the deficit to survive the
			// half-inning. Poisson upper tail on the RE24-implied rate.
			needed := -g.ScoreDiff
			pois := distuv.Poisson{Lambda: re * comebackLambdaBottom}
			return clampWP(1 - pois.CDF(float64(needed-1))), true
		}
	}

	// Top half: special-case only a home lead (the save situation). The
	// visitors win outright if they take the lead; a tie still leaves the
	// home side the walk-off half.
	if g.ScoreDiff > 0 {
		pois := distuv.Poisson{Lambda: re * comebackLambdaTop}
		pTieOrLead := 1 - pois.CDF(float64(g.ScoreDiff-1))
		pLead := 1 - pois.CDF(float64(g.ScoreDiff))
		pHomeLoses := pLead + (pTieOrLead-pLead)*(1-walkOffRetainedWP)
		return clampWP(1 - pHomeLoses), true
	}
	return 0, false
}

// WinProbabilityAfter evaluates the state reached once a play's transition is
// applied to g. This is the one place the engine returns exactly 1 or 0:
// a walk-off run, or a third out that ends the bottom of the ninth (or later)
// with the score unlevel, terminates the game. All other transitions roll
// into the next state and use WinProbability.
func WinProbabilityAfter(g GameState, tr Transition, env ScoringEnvironment) (float64, error) {
	if err := g.validate(); err != nil {
		return 0, err
	}
	if err := env.validate(); err != nil {
		return 0, err
	}

	diff := g.ScoreDiff
	if g.Half == Top {
		diff -= tr.Runs
	} else {
		diff += tr.Runs
	}

	// Walk-off: the home team takes the lead in the bottom of the ninth or
	// later and the game ends immediately, third out or not.
	if g.Half == Bottom && g.Inning >= 9 && tr.Runs > 0 && diff > 0 {
		return 1.0, nil
	}

	if tr.InningOver {
		if g.Half == Bottom && g.Inning >= 9 && diff != 0 {
			// Regulation (or an extra inning) is complete with a winner.
			if diff > 0 {
				return 1.0, nil
			}
			return 0.0, nil
		}
		next := GameState{Inning: g.Inning, Half: Bottom, ScoreDiff: diff}
		if g.Half == Bottom {
			next.Inning = g.Inning + 1
			next.Half = Top
		}
		return WinProbability(next, env)
	}

	return WinProbability(GameState{
		Inning:    g.Inning,
		Half:      g.Half,
		Bases:     tr.Bases,
		ScoreDiff: diff,
	}, env)
}

// Matchup carries the optional batter/pitcher quality inputs. Nil fields
// leave the corresponding adjustment off.
type Matchup struct {
	BatterOPS  *float64
	PitcherERA *float64
}

// Matchup adjustment coefficients. Both act in logit space so the result
// behaves smoothly near 0 and 1, and both are monotonic: a better batter
// always raises the batting team's probability, a better pitcher always
// lowers it.
const (
	leagueAvgOPS  = 0.750
	leagueAvgERA  = 3.50
	opsLogitCoeff = 0.5
	eraLogitCoeff = 0.15
)

// AdjustWinProbability shifts a win probability for batter/pitcher quality.
// Returns base unchanged when no inputs are set.
func AdjustWinProbability(base float64, m Matchup) float64 {
	if m.BatterOPS == nil && m.PitcherERA == nil {
		return base
	}

	p := clampWP(base)
	logit := math.Log(p / (1 - p))

	if m.BatterOPS != nil {
		logit += (*m.BatterOPS - leagueAvgOPS) * opsLogitCoeff
	}
	if m.PitcherERA != nil {
		// A good pitcher works against the batting team.
		logit -= (leagueAvgERA - *m.PitcherERA) * eraLogitCoeff
	}

	return clampWP(1 / (1 + math.Exp(-logit)))
}

func clampWP(p float64) float64 {
	return math.Min(0.99, math.Max(0.01, p))
}
