package engine

// WPA returns the win probability added by a completed play: the home team's
// win probability after the play minus before it. Positive values favor the
// home team. The result is exactly the difference of two WinProbability
// evaluations; there is no other logic here.
func WPA(before, after GameState, env ScoringEnvironment) (float64, error) {
	wpBefore, err := WinProbability(before, env)
	if err != nil {
		return 0, err
	}
	wpAfter, err := WinProbability(after, env)
	if err != nil {
		return 0, err
	}
	return wpAfter - wpBefore, nil
}
