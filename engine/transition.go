package engine

import "fmt"

// PlayOutcome is one of the fixed plate-appearance outcomes the engine
// understands. The catalog is closed; calibration data is attached to it
// rather than carried by open-ended types.
type PlayOutcome int

const (
	Strikeout PlayOutcome = iota
	Groundout
	Flyout
	OtherOut
	DoublePlay
	Walk
	Single
	Double
	Triple
	HomeRun
)

var outcomeNames = map[PlayOutcome]string{
	Strikeout:  "strikeout",
	Groundout:  "groundout",
	Flyout:     "flyout",
	OtherOut:   "other_out",
	DoublePlay: "double_play",
	Walk:       "walk",
	Single:     "single",
	Double:     "double",
	Triple:     "triple",
	HomeRun:    "home_run",
}

func (o PlayOutcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Transition is the result of applying a play outcome to a base-out state.
// When the play records the third out, InningOver is set and Bases is the
// zero value; runs that scored before the third out still count.
type Transition struct {
	Bases      BaseOutState
	InningOver bool
	Runs       int
}

// Apply resolves a play outcome against a base-out state. The mapping is
// deterministic and total over the 24-state by outcome domain:
//
//   - outs advance runners only where baseball forces them to (a walk moves
//     forced runners, a sacrifice fly scores third with fewer than two outs);
//   - hits advance runners station-to-station plus the hit's bases, with the
//     runner from second scoring on a single and the runner from first
//     reaching third on a double;
//   - a double play needs a runner on first and fewer than two outs,
//     otherwise it degrades to a plain out.
func Apply(state BaseOutState, outcome PlayOutcome) (Transition, error) {
	if err := state.validate(); err != nil {
		return Transition{}, err
	}

	next := state
	runs := 0

	switch outcome {
	case Strikeout, OtherOut:
		next.Outs++

	case Groundout:
		// Fielder's choice erases the runner on first more often than not.
		next.First = false
		next.Outs++

	case Flyout:
		if state.Third && state.Outs < 2 {
			// Sacrifice fly.
			next.Third = false
			runs = 1
		}
		next.Outs++

	case DoublePlay:
		if state.First && state.Outs < 2 {
			next.First = false
			next.Outs += 2
		} else {
			next.Outs++
		}

	case Walk:
		switch {
		case state.First && state.Second && state.Third:
			runs = 1
		case state.First && state.Second:
			next.Third = true
		case state.First:
			next.Second = true
		}
		next.First = true

	case Single:
		if state.Third {
			runs++
		}
		next.Third = state.Second
		next.Second = state.First
		next.First = true

	case Double:
		if state.Third {
			runs++
		}
		if state.Second {
			runs++
		}
		next.Third = state.First
		next.Second = true
		next.First = false

	case Triple:
		runs = state.RunnerCount()
		next.First = false
		next.Second = false
		next.Third = true

	case HomeRun:
		runs = state.RunnerCount() + 1
		next.First = false
		next.Second = false
		next.Third = false

	default:
		return Transition{}, fmt.Errorf("%w: %v", ErrUnknownOutcome, outcome)
	}

	if next.Outs >= 3 {
		return Transition{InningOver: true, Runs: runs}, nil
	}
	return Transition{Bases: next, Runs: runs}, nil
}
