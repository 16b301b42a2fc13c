package engine

import "fmt"

// Half identifies which half of an inning is being played.
type Half string

const (
	Top    Half = "top"
	Bottom Half = "bottom"
)

// BaseOutState is one of the 24 base-out states: which bases are occupied
// and how many outs have been recorded. Three outs end the half-inning and
// are not part of this state space.
type BaseOutState struct {
	First  bool `json:"runner1"`
	Second bool `json:"runner2"`
	Third  bool `json:"runner3"`
	Outs   int  `json:"outs"`
}

// GameState is the full situation the engine evaluates: inning, half,
// base-out state and score difference from the home team's perspective.
type GameState struct {
	Inning    int          `json:"inning"`
	Half      Half         `json:"half"`
	Bases     BaseOutState `json:"bases"`
	ScoreDiff int          `json:"score_diff"` // home minus away
}

// ScoringEnvironment scales the run-expectancy model to a league's average
// offensive level. MLB averages about 4.5 runs per team per game; NPB about 4.0.
type ScoringEnvironment struct {
	RunsPerGame float64 `json:"runs_per_game"`
}

var (
	MLB = ScoringEnvironment{RunsPerGame: 4.5}
	NPB = ScoringEnvironment{RunsPerGame: 4.0}
)

// Runners returns the conventional base-state notation, e.g. "1-3" for
// runners on first and third.
func (b BaseOutState) Runners() string {
	s := []byte{'-', '-', '-'}
	if b.First {
		s[0] = '1'
	}
	if b.Second {
		s[1] = '2'
	}
	if b.Third {
		s[2] = '3'
	}
	return string(s)
}

// RunnerCount returns the number of occupied bases.
func (b BaseOutState) RunnerCount() int {
	n := 0
	if b.First {
		n++
	}
	if b.Second {
		n++
	}
	if b.Third {
		n++
	}
	return n
}

func (b BaseOutState) validate() error {
	if b.Outs < 0 || b.Outs > 2 {
		return fmt.Errorf("%w: outs must be 0-2, got %d", ErrInvalidState, b.Outs)
	}
	return nil
}

func (g GameState) validate() error {
	if g.Inning < 1 {
		return fmt.Errorf("%w: inning must be >= 1, got %d", ErrInvalidState, g.Inning)
	}
	if g.Half != Top && g.Half != Bottom {
		return fmt.Errorf("%w: half must be %q or %q, got %q", ErrInvalidState, Top, Bottom, g.Half)
	}
	return g.Bases.validate()
}

func (e ScoringEnvironment) validate() error {
	if e.RunsPerGame <= 0 {
		return fmt.Errorf("%w: runs per game must be positive, got %g", ErrInvalidEnvironment, e.RunsPerGame)
	}
	return nil
}
