package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinProbabilityBounds(t *testing.T) {
	for inning := 1; inning <= 12; inning++ {
		for _, half := range []Half{Top, Bottom} {
			for _, bases := range allBaseOutStates() {
				for diff := -6; diff <= 6; diff++ {
					g := GameState{Inning: inning, Half: half, Bases: bases, ScoreDiff: diff}
					wp, err := WinProbability(g, MLB)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, wp, 0.01)
					assert.LessOrEqual(t, wp, 0.99)
				}
			}
		}
	}
}

func TestWinProbabilityKnownStates(t *testing.T) {
	tests := []struct {
		name string
		g    GameState
		lo   float64
		hi   float64
	}{
		{
			"game start is near even",
			GameState{Inning: 1, Half: Top},
			0.40, 0.55,
		},
		{
			"three-run lead in the fifth",
			GameState{Inning: 5, Half: Top, ScoreDiff: 3},
			0.90, 0.99,
		},
		{
			"home leads entering visitor ninth (save situation)",
			GameState{Inning: 9, Half: Top, ScoreDiff: 1},
			0.65, 0.80,
		},
		{
			"home ahead batting in bottom nine is nearly but not certainly won",
			GameState{Inning: 9, Half: Bottom, ScoreDiff: 2},
			0.99, 0.99,
		},
		{
			"down two with nobody on, two out in the home ninth",
			GameState{Inning: 9, Half: Bottom, Bases: BaseOutState{Outs: 2}, ScoreDiff: -2},
			0.01, 0.02,
		},
		{
			"bottom ninth tie, bases loaded, two outs",
			GameState{Inning: 9, Half: Bottom, Bases: BaseOutState{First: true, Second: true, Third: true, Outs: 2}},
			0.85, 0.90,
		},
		{
			"walk-off chance: second and third, one out, tied home ninth",
			GameState{Inning: 9, Half: Bottom, Bases: BaseOutState{Second: true, Third: true, Outs: 1}},
			0.90, 0.99,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp, err := WinProbability(tt.g, MLB)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, wp, tt.lo)
			assert.LessOrEqual(t, wp, tt.hi)
		})
	}
}

// Mid-game, a single out should never move the needle by much for a fixed
// score; the model is continuous away from the late-inning boundary.
func TestWinProbabilityContinuityAcrossOuts(t *testing.T) {
	for diff := -2; diff <= 2; diff++ {
		prev := -1.0
		for outs := 0; outs <= 2; outs++ {
			g := GameState{Inning: 5, Half: Top, Bases: BaseOutState{Outs: outs}, ScoreDiff: diff}
			wp, err := WinProbability(g, MLB)
			require.NoError(t, err)
			if prev >= 0 {
				assert.Less(t, math.Abs(wp-prev), 0.15,
					"WP jumped between %d and %d outs at diff %d", outs-1, outs, diff)
			}
			prev = wp
		}
	}
}

func TestWinProbabilityNeverExactlyTerminal(t *testing.T) {
	// No representable in-play state is a finished game.
	for _, g := range []GameState{
		{Inning: 9, Half: Bottom, ScoreDiff: 10},
		{Inning: 14, Half: Bottom, ScoreDiff: 1},
		{Inning: 9, Half: Bottom, Bases: BaseOutState{Outs: 2}, ScoreDiff: -10},
	} {
		wp, err := WinProbability(g, MLB)
		require.NoError(t, err)
		assert.Less(t, wp, 1.0)
		assert.Greater(t, wp, 0.0)
	}
}

func TestWinProbabilityAfterWalkOff(t *testing.T) {
	// Tied home ninth, runner on third: a single ends the game at exactly 1.
	g := GameState{Inning: 9, Half: Bottom, Bases: BaseOutState{Third: true, Outs: 1}}
	tr, err := Apply(g.Bases, Single)
	require.NoError(t, err)
	require.Equal(t, 1, tr.Runs)

	wp, err := WinProbabilityAfter(g, tr, MLB)
	require.NoError(t, err)
	assert.Equal(t, 1.0, wp)
}

func TestWinProbabilityAfterFinalOut(t *testing.T) {
	// Home trails in the bottom of the ninth; the third out ends it at 0.
	g := GameState{Inning: 9, Half: Bottom, Bases: BaseOutState{Outs: 2}, ScoreDiff: -1}
	tr, err := Apply(g.Bases, Strikeout)
	require.NoError(t, err)
	require.True(t, tr.InningOver)

	wp, err := WinProbabilityAfter(g, tr, MLB)
	require.NoError(t, err)
	assert.Equal(t, 0.0, wp)
}

func TestWinProbabilityAfterRollsInning(t *testing.T) {
	// Third out in the top half moves to the bottom with the bases cleared.
	g := GameState{Inning: 6, Half: Top, Bases: BaseOutState{First: true, Outs: 2}, ScoreDiff: 1}
	tr, err := Apply(g.Bases, Groundout)
	require.NoError(t, err)
	require.True(t, tr.InningOver)

	got, err := WinProbabilityAfter(g, tr, MLB)
	require.NoError(t, err)

	want, err := WinProbability(GameState{Inning: 6, Half: Bottom, ScoreDiff: 1}, MLB)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)

	// A tied bottom ninth ending on outs rolls to the tenth, not a result.
	g = GameState{Inning: 9, Half: Bottom, Bases: BaseOutState{Outs: 2}}
	tr, err = Apply(g.Bases, Flyout)
	require.NoError(t, err)
	got, err = WinProbabilityAfter(g, tr, MLB)
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)
	assert.Less(t, got, 1.0)
}

func TestWinProbabilityInvalidInputs(t *testing.T) {
	_, err := WinProbability(GameState{Inning: 0, Half: Top}, MLB)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = WinProbability(GameState{Inning: 3, Half: "middle"}, MLB)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = WinProbability(GameState{Inning: 3, Half: Top, Bases: BaseOutState{Outs: 3}}, MLB)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = WinProbability(GameState{Inning: 3, Half: Top}, ScoringEnvironment{})
	assert.ErrorIs(t, err, ErrInvalidEnvironment)
}

func TestAdjustWinProbability(t *testing.T) {
	base := 0.5

	assert.Equal(t, base, AdjustWinProbability(base, Matchup{}))

	hotOPS := 0.900
	adjusted := AdjustWinProbability(base, Matchup{BatterOPS: &hotOPS})
	assert.Greater(t, adjusted, base, "an above-average batter raises WP")

	ace := 2.00
	adjusted = AdjustWinProbability(base, Matchup{PitcherERA: &ace})
	assert.Less(t, adjusted, base, "an above-average pitcher lowers WP")

	// Monotone in OPS across a smooth sweep.
	prev := -1.0
	for ops := 0.5; ops <= 1.2; ops += 0.05 {
		v := ops
		wp := AdjustWinProbability(base, Matchup{BatterOPS: &v})
		assert.GreaterOrEqual(t, wp, prev)
		prev = wp
	}

	// Adjustments stay inside the clamp.
	extreme := 2.0
	assert.LessOrEqual(t, AdjustWinProbability(0.98, Matchup{BatterOPS: &extreme}), 0.99)
	bad := 12.0
	assert.GreaterOrEqual(t, AdjustWinProbability(0.02, Matchup{PitcherERA: &bad}), 0.01)
}
