package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allOutcomes = []PlayOutcome{
	Strikeout, Groundout, Flyout, OtherOut, DoublePlay,
	Walk, Single, Double, Triple, HomeRun,
}

// Every outcome applied to every state must resolve without error, never
// score negative runs, and never leave an in-play state with 3+ outs.
func TestApplyTotal(t *testing.T) {
	for _, s := range allBaseOutStates() {
		for _, o := range allOutcomes {
			tr, err := Apply(s, o)
			require.NoError(t, err, "state %s/%d outs, outcome %v", s.Runners(), s.Outs, o)
			assert.GreaterOrEqual(t, tr.Runs, 0)
			if !tr.InningOver {
				assert.LessOrEqual(t, tr.Bases.Outs, 2)
			}
		}
	}
}

func TestApplyGrandSlam(t *testing.T) {
	loaded := BaseOutState{First: true, Second: true, Third: true}

	tr, err := Apply(loaded, HomeRun)
	require.NoError(t, err)

	assert.Equal(t, 4, tr.Runs)
	assert.False(t, tr.InningOver)
	assert.Equal(t, BaseOutState{}, tr.Bases)
}

func TestApplyHits(t *testing.T) {
	tests := []struct {
		name     string
		state    BaseOutState
		outcome  PlayOutcome
		wantNext BaseOutState
		wantRuns int
	}{
		{
			"single scores third, station to station",
			BaseOutState{First: true, Third: true, Outs: 1}, Single,
			BaseOutState{First: true, Second: true, Outs: 1}, 1,
		},
		{
			"double scores second and third, first to third",
			BaseOutState{First: true, Second: true, Third: true}, Double,
			BaseOutState{Second: true, Third: true}, 2,
		},
		{
			"triple clears the bases",
			BaseOutState{First: true, Second: true, Outs: 2}, Triple,
			BaseOutState{Third: true, Outs: 2}, 2,
		},
		{
			"solo home run",
			BaseOutState{Outs: 2}, HomeRun,
			BaseOutState{Outs: 2}, 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Apply(tt.state, tt.outcome)
			require.NoError(t, err)
			assert.False(t, tr.InningOver)
			assert.Equal(t, tt.wantNext, tr.Bases)
			assert.Equal(t, tt.wantRuns, tr.Runs)
		})
	}
}

func TestApplyWalkForcesOnlyForcedRunners(t *testing.T) {
	tests := []struct {
		name     string
		state    BaseOutState
		wantNext BaseOutState
		wantRuns int
	}{
		{
			"bases empty",
			BaseOutState{}, BaseOutState{First: true}, 0,
		},
		{
			"runner on second is not forced",
			BaseOutState{Second: true}, BaseOutState{First: true, Second: true}, 0,
		},
		{
			"first and second forced up",
			BaseOutState{First: true, Second: true},
			BaseOutState{First: true, Second: true, Third: true}, 0,
		},
		{
			"bases loaded walk scores one",
			BaseOutState{First: true, Second: true, Third: true},
			BaseOutState{First: true, Second: true, Third: true}, 1,
		},
		{
			"runner on first and third, third holds",
			BaseOutState{First: true, Third: true},
			BaseOutState{First: true, Second: true, Third: true}, 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Apply(tt.state, Walk)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNext, tr.Bases)
			assert.Equal(t, tt.wantRuns, tr.Runs)
		})
	}
}

func TestApplySacrificeFly(t *testing.T) {
	// Runner on third with fewer than two outs tags and scores.
	tr, err := Apply(BaseOutState{Third: true, Outs: 1}, Flyout)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Runs)
	assert.Equal(t, BaseOutState{Outs: 2}, tr.Bases)

	// With two outs the inning ends and nobody scores.
	tr, err = Apply(BaseOutState{Third: true, Outs: 2}, Flyout)
	require.NoError(t, err)
	assert.True(t, tr.InningOver)
	assert.Equal(t, 0, tr.Runs)
}

func TestApplyDoublePlay(t *testing.T) {
	// Runner on first, fewer than two outs: two outs recorded.
	tr, err := Apply(BaseOutState{First: true}, DoublePlay)
	require.NoError(t, err)
	assert.False(t, tr.InningOver)
	assert.Equal(t, BaseOutState{Outs: 2}, tr.Bases)

	// No runner on first: degrades to a single out.
	tr, err = Apply(BaseOutState{Second: true, Outs: 1}, DoublePlay)
	require.NoError(t, err)
	assert.Equal(t, BaseOutState{Second: true, Outs: 2}, tr.Bases)

	// Runner on first with one out: inning over.
	tr, err = Apply(BaseOutState{First: true, Outs: 1}, DoublePlay)
	require.NoError(t, err)
	assert.True(t, tr.InningOver)
}

func TestApplyThirdOutMarker(t *testing.T) {
	tr, err := Apply(BaseOutState{First: true, Outs: 2}, Strikeout)
	require.NoError(t, err)
	assert.True(t, tr.InningOver)
	assert.Equal(t, BaseOutState{}, tr.Bases)
	assert.Equal(t, 0, tr.Runs)
}

func TestApplyInvalidInputs(t *testing.T) {
	_, err := Apply(BaseOutState{Outs: 3}, Single)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = Apply(BaseOutState{}, PlayOutcome(99))
	assert.ErrorIs(t, err, ErrUnknownOutcome)
}
