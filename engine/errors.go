package engine

import "errors"

// Every engine failure is a deterministic input-validation failure. Callers
// match with errors.Is and translate to their own error surface; the engine
// never substitutes a placeholder probability for a bad input.
var (
	// ErrInvalidState marks a malformed BaseOutState or GameState: outs
	// outside 0-2, a non-positive inning, or an unrecognized half.
	ErrInvalidState = errors.New("invalid game state")

	// ErrInvalidEnvironment marks a non-positive runs-per-game setting.
	ErrInvalidEnvironment = errors.New("invalid scoring environment")

	// ErrUnknownOutcome marks a play outcome outside the fixed catalog.
	ErrUnknownOutcome = errors.New("unknown play outcome")

	// ErrUnknownTactic marks a tactic the evaluator cannot classify. Seeing
	// this error means the tactic catalog itself is wrong.
	ErrUnknownTactic = errors.New("unknown tactic")

	// ErrUnknownScenario marks a preset-scenario lookup miss.
	ErrUnknownScenario = errors.New("unknown scenario")
)
