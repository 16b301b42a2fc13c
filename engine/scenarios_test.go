package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenariosResolveAndValidate(t *testing.T) {
	require.Len(t, ScenarioNames, len(scenarios))

	for _, key := range ScenarioNames {
		s, err := LookupScenario(key)
		require.NoError(t, err, key)
		assert.Equal(t, key, s.Key)
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Description)

		// Every preset must be a state the engine accepts.
		_, err = WinProbability(s.State, MLB)
		assert.NoError(t, err, key)
	}
}

func TestScenarioDetails(t *testing.T) {
	drama, err := LookupScenario("ninth_inning_drama")
	require.NoError(t, err)
	assert.Equal(t, 9, drama.State.Inning)
	assert.Equal(t, Bottom, drama.State.Half)
	assert.Equal(t, "123", drama.State.Bases.Runners())
	assert.Equal(t, 2, drama.State.Bases.Outs)

	start, err := LookupScenario("game_start")
	require.NoError(t, err)
	assert.Equal(t, GameState{Inning: 1, Half: Top}, start.State)
}

func TestLookupScenarioUnknown(t *testing.T) {
	_, err := LookupScenario("ninth_inning")
	assert.ErrorIs(t, err, ErrUnknownScenario)
}
