package main

import (
	"fmt"

	"wp-engine/engine"
	"wp-engine/mlb"
)

// APIError is the JSON error envelope for all endpoints.
type APIError struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type IndexResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
	Scenarios []string `json:"scenarios"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    string `json:"time"`
	Version string `json:"version"`
}

// RunnersJSON mirrors the conventional 1B/2B/3B flag notation.
type RunnersJSON struct {
	First  int `json:"1B"`
	Second int `json:"2B"`
	Third  int `json:"3B"`
}

// GameStateJSON is the wire form of a game state.
type GameStateJSON struct {
	Inning      int         `json:"inning"`
	TopBottom   string      `json:"top_bottom"`
	Outs        int         `json:"outs"`
	Runners     RunnersJSON `json:"runners"`
	ScoreDiff   int         `json:"score_diff"`
	RunsPerGame float64     `json:"runs_per_game,omitempty"`
}

func toGameStateJSON(g engine.GameState, rpg float64) GameStateJSON {
	return GameStateJSON{
		Inning:      g.Inning,
		TopBottom:   string(g.Half),
		Outs:        g.Bases.Outs,
		Runners:     RunnersJSON{First: flag(g.Bases.First), Second: flag(g.Bases.Second), Third: flag(g.Bases.Third)},
		ScoreDiff:   g.ScoreDiff,
		RunsPerGame: rpg,
	}
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// AnalysisResponse carries the full picture for one game state: win
// probability, leverage, and tactical options.
type AnalysisResponse struct {
	GameState         GameStateJSON           `json:"game_state"`
	WinProbability    float64                 `json:"win_probability"`
	WinProbabilityPct string                  `json:"win_probability_pct"`
	AdjustedWP        *float64                `json:"adjusted_wp"`
	LeverageIndex     float64                 `json:"leverage_index"`
	LeverageLabel     string                  `json:"leverage_label"`
	Tactics           []engine.Recommendation `json:"tactics"`
}

type WPAResponse struct {
	WPA         float64       `json:"wpa"`
	WPBefore    float64       `json:"wp_before"`
	WPAfter     float64       `json:"wp_after"`
	BeforeState GameStateJSON `json:"before_state"`
	AfterState  GameStateJSON `json:"after_state"`
}

type RE24Response struct {
	RunsPerGame float64            `json:"runs_per_game"`
	Count       int                `json:"count"`
	Table       []engine.RE24Entry `json:"re24_table"`
}

type ScenarioResponse struct {
	Scenario    string `json:"scenario"`
	Description string `json:"description"`
	AnalysisResponse
}

type GamesTodayResponse struct {
	Date  string     `json:"date"`
	Count int        `json:"count"`
	Games []mlb.Game `json:"games"`
}

// LiveWPResponse is the live game state plus analysis. Analysis is nil for
// games that have not started, with StatusNote explaining why.
type LiveWPResponse struct {
	GamePk     int64             `json:"gamePk"`
	AwayTeam   string            `json:"away_team"`
	HomeTeam   string            `json:"home_team"`
	Status     string            `json:"status"`
	ScoreHome  int               `json:"score_home"`
	ScoreAway  int               `json:"score_away"`
	Batter     string            `json:"batter_name,omitempty"`
	Pitcher    string            `json:"pitcher_name,omitempty"`
	StatusNote string            `json:"status_note,omitempty"`
	Analysis   *AnalysisResponse `json:"analysis,omitempty"`
}

func pct(wp float64) string {
	return fmt.Sprintf("%.1f%%", wp*100)
}
