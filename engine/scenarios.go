package engine

import "fmt"

// Scenario is a named preset game state used for demos and quick lookups.
type Scenario struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	State       GameState `json:"game_state"`
}

var scenarios = map[string]Scenario{
	"ninth_inning_drama": {
		Key:         "ninth_inning_drama",
		Name:        "9th Inning Drama",
		Description: "Bottom 9th, 2 outs, bases loaded, tie game",
		State: GameState{
			Inning: 9, Half: Bottom,
			Bases: BaseOutState{First: true, Second: true, Third: true, Outs: 2},
		},
	},
	"game_start": {
		Key:         "game_start",
		Name:        "Game Start",
		Description: "Top of 1st, no outs, bases empty, 0-0",
		State:       GameState{Inning: 1, Half: Top},
	},
	"rally_7th": {
		Key:         "rally_7th",
		Name:        "7th Inning Rally",
		Description: "Bottom 7th, 1 out, runners on 1st & 2nd, down by 1",
		State: GameState{
			Inning: 7, Half: Bottom,
			Bases:     BaseOutState{First: true, Second: true, Outs: 1},
			ScoreDiff: -1,
		},
	},
	"tied_8th": {
		Key:         "tied_8th",
		Name:        "Tied 8th",
		Description: "Top of 8th, no outs, bases empty, tie game",
		State:       GameState{Inning: 8, Half: Top},
	},
	"walkoff_chance": {
		Key:         "walkoff_chance",
		Name:        "Walk-off Chance",
		Description: "Bottom 9th, 1 out, runners on 2nd & 3rd, tie game",
		State: GameState{
			Inning: 9, Half: Bottom,
			Bases: BaseOutState{Second: true, Third: true, Outs: 1},
		},
	},
	"comfortable_lead": {
		Key:         "comfortable_lead",
		Name:        "Comfortable Lead",
		Description: "Top of 5th, no outs, bases empty, home team up by 3",
		State:       GameState{Inning: 5, Half: Top, ScoreDiff: 3},
	},
}

// ScenarioNames lists the preset scenario keys in a stable order.
var ScenarioNames = []string{
	"ninth_inning_drama",
	"game_start",
	"rally_7th",
	"tied_8th",
	"walkoff_chance",
	"comfortable_lead",
}

// LookupScenario resolves a preset scenario by key.
func LookupScenario(key string) (Scenario, error) {
	s, ok := scenarios[key]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenario, key)
	}
	return s, nil
}
