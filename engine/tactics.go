package engine

import (
	"fmt"
	"math"
	"sort"
)

// Tactic identifies one of the eight in-game options the recommendation
// engine evaluates. The catalog is fixed; its calibration lives in
// tacticCatalog.
type Tactic int

const (
	SacrificeBunt Tactic = iota
	StealSecond
	StealThird
	IntentionalWalk
	PitchingChange
	PinchHitter
	HitAndRun
	SqueezePlay
)

type tacticSpec struct {
	name        string
	successRate float64 // zero for tactics without a success/fail split
	needsFirst  bool
	needsSecond bool
	needsThird  bool
	// open-base requirements: a steal needs the target base empty, an
	// intentional walk needs first open.
	needsOpenFirst  bool
	needsOpenSecond bool
	needsOpenThird  bool
	maxOuts         int // -1 = any
}

var tacticCatalog = map[Tactic]tacticSpec{
	SacrificeBunt:   {name: "Sacrifice Bunt", successRate: 0.80, needsFirst: true, maxOuts: 1},
	StealSecond:     {name: "Steal 2nd Base", successRate: 0.72, needsFirst: true, needsOpenSecond: true, maxOuts: -1},
	StealThird:      {name: "Steal 3rd Base", successRate: 0.65, needsSecond: true, needsOpenThird: true, maxOuts: -1},
	IntentionalWalk: {name: "Intentional Walk", needsOpenFirst: true, maxOuts: -1},
	PitchingChange:  {name: "Pitching Change", maxOuts: -1},
	PinchHitter:     {name: "Pinch Hitter", maxOuts: -1},
	HitAndRun:       {name: "Hit and Run", successRate: 0.55, needsFirst: true, maxOuts: -1},
	SqueezePlay:     {name: "Squeeze Play", successRate: 0.60, needsThird: true, maxOuts: 1},
}

// allTactics fixes the evaluation order so output is deterministic.
var allTactics = []Tactic{
	SacrificeBunt, StealSecond, StealThird, IntentionalWalk,
	PitchingChange, PinchHitter, HitAndRun, SqueezePlay,
}

// Recommendation verdicts, ranked best first.
const (
	VerdictRecommended    = "Recommended"
	VerdictConsider       = "Consider"
	VerdictNeutral        = "Neutral"
	VerdictNotRecommended = "Not recommended"
)

var verdictRank = map[string]int{
	VerdictRecommended:    0,
	VerdictConsider:       1,
	VerdictNeutral:        2,
	VerdictNotRecommended: 3,
}

// Recommendation is the evaluation of one tactic against a game state.
// Tactics whose preconditions fail carry Qualifies=false, a zero delta and
// no verdict; they sort after every qualifying tactic.
type Recommendation struct {
	Tactic      string  `json:"tactic"`
	Qualifies   bool    `json:"qualifies"`
	RE24Delta   float64 `json:"re24_delta"`
	SuccessRate float64 `json:"success_rate,omitempty"`
	Verdict     string  `json:"recommendation,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

// Matchup adjustment coefficients for the tactic engine. Both are monotonic:
// a better batter raises contact-tactic success, a worse pitcher lowers the
// leverage bar for pulling him.
const (
	hitSuccessOPSCoeff = 0.25
	eraGateCoeff       = 0.20
	baseLeverageGate   = 1.5
	minLeverageGate    = 0.5
)

// Recommend evaluates the full tactic catalog against the state and ranks
// qualifying tactics by verdict, then by expected RE24 delta descending.
// The optional matchup inputs shift success probabilities and the
// pitching-change leverage gate as documented on the coefficients above.
func Recommend(g GameState, env ScoringEnvironment, m Matchup) ([]Recommendation, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	if err := env.validate(); err != nil {
		return nil, err
	}

	var qualified, rest []Recommendation
	for _, t := range allTactics {
		spec, ok := tacticCatalog[t]
		if !ok {
			return nil, fmt.Errorf("%w: tactic %d missing from catalog", ErrUnknownTactic, t)
		}
		if !preconditionsMet(spec, g.Bases) {
			rest = append(rest, Recommendation{Tactic: spec.name})
			continue
		}
		rec, ok, err := evaluateTactic(t, spec, g, env, m)
		if err != nil {
			return nil, err
		}
		if !ok {
			rest = append(rest, Recommendation{Tactic: spec.name})
			continue
		}
		qualified = append(qualified, rec)
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		ri, rj := verdictRank[qualified[i].Verdict], verdictRank[qualified[j].Verdict]
		if ri != rj {
			return ri < rj
		}
		return qualified[i].RE24Delta > qualified[j].RE24Delta
	})
	return append(qualified, rest...), nil
}

func preconditionsMet(spec tacticSpec, b BaseOutState) bool {
	switch {
	case spec.needsFirst && !b.First,
		spec.needsSecond && !b.Second,
		spec.needsThird && !b.Third,
		spec.needsOpenFirst && b.First,
		spec.needsOpenSecond && b.Second,
		spec.needsOpenThird && b.Third:
		return false
	}
	if spec.maxOuts >= 0 && b.Outs > spec.maxOuts {
		return false
	}
	return true
}

// evaluateTactic computes the success-probability-weighted RE24 delta for a
// tactic whose preconditions hold. The second return is false when a
// situational tactic (pitching change, pinch hitter) does not reach its
// leverage gate.
func evaluateTactic(t Tactic, spec tacticSpec, g GameState, env ScoringEnvironment, m Matchup) (Recommendation, bool, error) {
	b := g.Bases
	current, err := RE24(b, env)
	if err != nil {
		return Recommendation{}, false, err
	}

	rate := spec.successRate
	var delta float64

	switch t {
	case SacrificeBunt:
		// Success: every runner moves up a base, batter is out.
		success := BaseOutState{Second: b.First, Third: b.Second, Outs: b.Outs + 1}
		runsOnSuccess := 0.0
		if b.Third {
			runsOnSuccess = 1
		}
		fail := b
		fail.Outs++
		delta, err = weighEV(rate, success, runsOnSuccess, fail, 0, current, env)

	case StealSecond:
		success := BaseOutState{Second: true, Third: b.Third, Outs: b.Outs}
		fail := BaseOutState{Third: b.Third, Outs: b.Outs + 1}
		delta, err = weighEV(rate, success, 0, fail, 0, current, env)

	case StealThird:
		success := BaseOutState{First: b.First, Third: true, Outs: b.Outs}
		fail := BaseOutState{First: b.First, Outs: b.Outs + 1}
		delta, err = weighEV(rate, success, 0, fail, 0, current, env)

	case IntentionalWalk:
		// A defensive call: the delta is the run expectancy handed to the
		// batting side, negated.
		after, aerr := RE24(BaseOutState{First: true, Second: b.Second, Third: b.Third, Outs: b.Outs}, env)
		if aerr != nil {
			return Recommendation{}, false, aerr
		}
		delta = -(after - current)

	case HitAndRun:
		// Success: batter singles with the runners in motion; first goes all
		// the way to third, anyone past him scores. Failure: strikeout and
		// the runner is thrown out stealing.
		if m.BatterOPS != nil {
			rate = clampRate(rate + (*m.BatterOPS-leagueAvgOPS)*hitSuccessOPSCoeff)
		}
		success := BaseOutState{First: true, Third: true, Outs: b.Outs}
		runsOnSuccess := 0.0
		if b.Second {
			runsOnSuccess++
		}
		if b.Third {
			runsOnSuccess++
		}
		fail := BaseOutState{Second: b.Second, Third: b.Third, Outs: b.Outs + 2}
		delta, err = weighEV(rate, success, runsOnSuccess, fail, 0, current, env)

	case SqueezePlay:
		// Success: third scores on the bunt, batter out. Failure: the
		// runner is cut down at the plate.
		success := BaseOutState{First: b.First, Second: b.Second, Outs: b.Outs + 1}
		fail := success
		delta, err = weighEV(rate, success, 1, fail, 0, current, env)

	case PitchingChange, PinchHitter:
		li, lerr := LeverageIndex(g, env)
		if lerr != nil {
			return Recommendation{}, false, lerr
		}
		gate := baseLeverageGate
		if t == PitchingChange && m.PitcherERA != nil {
			gate = math.Max(minLeverageGate, gate-(*m.PitcherERA-leagueAvgERA)*eraGateCoeff)
		}
		if li < gate {
			return Recommendation{}, false, nil
		}
		return Recommendation{
			Tactic:    spec.name,
			Qualifies: true,
			Verdict:   VerdictConsider,
			Reason:    fmt.Sprintf("High leverage situation (LI=%.1f)", li),
		}, true, nil

	default:
		return Recommendation{}, false, fmt.Errorf("%w: %s", ErrUnknownTactic, spec.name)
	}
	if err != nil {
		return Recommendation{}, false, err
	}

	verdict := VerdictNeutral
	if delta > 0.02 {
		verdict = VerdictRecommended
	} else if delta <= -0.02 {
		verdict = VerdictNotRecommended
	}

	return Recommendation{
		Tactic:      spec.name,
		Qualifies:   true,
		RE24Delta:   math.Round(delta*1000) / 1000,
		SuccessRate: rate,
		Verdict:     verdict,
	}, true, nil
}

// weighEV mixes a tactic's success and failure branches and returns the
// expected RE24 change versus the current state. A branch that reaches three
// outs contributes zero remaining expectancy.
func weighEV(rate float64, success BaseOutState, successRuns float64, fail BaseOutState, failRuns float64, current float64, env ScoringEnvironment) (float64, error) {
	reSuccess, err := branchRE(success, env)
	if err != nil {
		return 0, err
	}
	reFail, err := branchRE(fail, env)
	if err != nil {
		return 0, err
	}
	ev := rate*(reSuccess+successRuns) + (1-rate)*(reFail+failRuns)
	return ev - current, nil
}

func branchRE(b BaseOutState, env ScoringEnvironment) (float64, error) {
	if b.Outs >= 3 {
		return 0, nil
	}
	return RE24(b, env)
}

func clampRate(r float64) float64 {
	return math.Min(0.95, math.Max(0.05, r))
}
