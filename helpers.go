package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"wp-engine/engine"
	"wp-engine/mlb"
)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("encoding response")
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	appMetrics.IncrementErrors()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(APIError{Error: message})
}

// statusForError maps engine and live-feed errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidState),
		errors.Is(err, engine.ErrInvalidEnvironment):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrUnknownScenario),
		errors.Is(err, mlb.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, mlb.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseIntRange(q url.Values, name string, def, min, max int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %d and %d", name, min, max)
	}
	return v, nil
}

func parseFloatRange(q url.Values, name string, def, min, max float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %g and %g", name, min, max)
	}
	return v, nil
}

// parseOptionalFloat returns nil when the parameter is absent.
func parseOptionalFloat(q url.Values, name string, min, max float64) (*float64, error) {
	if q.Get(name) == "" {
		return nil, nil
	}
	v, err := parseFloatRange(q, name, 0, min, max)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseGameState reads a game state from query parameters. prefix selects
// the before_/after_ families on the play endpoint; empty for the plain
// form. maxOuts is 2 normally and 3 for a post-play state, where a third
// out is clamped back into the engine's domain.
func parseGameState(q url.Values, prefix string, maxOuts int) (engine.GameState, error) {
	inning, err := parseIntRange(q, prefix+"inning", 0, 1, 15)
	if err != nil {
		return engine.GameState{}, err
	}
	if q.Get(prefix+"inning") == "" {
		return engine.GameState{}, fmt.Errorf("%sinning is required", prefix)
	}

	half := q.Get(prefix + "top_bottom")
	if half != string(engine.Top) && half != string(engine.Bottom) {
		return engine.GameState{}, fmt.Errorf("%stop_bottom must be %q or %q", prefix, engine.Top, engine.Bottom)
	}

	outs, err := parseIntRange(q, prefix+"outs", 0, 0, maxOuts)
	if err != nil {
		return engine.GameState{}, err
	}
	if q.Get(prefix+"outs") == "" {
		return engine.GameState{}, fmt.Errorf("%souts is required", prefix)
	}
	if outs > 2 {
		outs = 2
	}

	r1, err := parseIntRange(q, prefix+"runner1", 0, 0, 1)
	if err != nil {
		return engine.GameState{}, err
	}
	r2, err := parseIntRange(q, prefix+"runner2", 0, 0, 1)
	if err != nil {
		return engine.GameState{}, err
	}
	r3, err := parseIntRange(q, prefix+"runner3", 0, 0, 1)
	if err != nil {
		return engine.GameState{}, err
	}

	diff, err := parseIntRange(q, prefix+"score_diff", 0, -20, 20)
	if err != nil {
		return engine.GameState{}, err
	}

	return engine.GameState{
		Inning: inning,
		Half:   engine.Half(half),
		Bases: engine.BaseOutState{
			First:  r1 == 1,
			Second: r2 == 1,
			Third:  r3 == 1,
			Outs:   outs,
		},
		ScoreDiff: diff,
	}, nil
}

func parseEnvironment(q url.Values, def float64) (engine.ScoringEnvironment, error) {
	rpg, err := parseFloatRange(q, "runs_per_game", def, 2.0, 8.0)
	if err != nil {
		return engine.ScoringEnvironment{}, err
	}
	return engine.ScoringEnvironment{RunsPerGame: rpg}, nil
}

func parseMatchup(q url.Values) (engine.Matchup, error) {
	ops, err := parseOptionalFloat(q, "batter_ops", 0, 2.0)
	if err != nil {
		return engine.Matchup{}, err
	}
	era, err := parseOptionalFloat(q, "pitcher_era", 0, 15.0)
	if err != nil {
		return engine.Matchup{}, err
	}
	return engine.Matchup{BatterOPS: ops, PitcherERA: era}, nil
}

func validateDateFormat(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}

// clientID picks a rate-limit key for the request: the client IP, without
// the ephemeral port.
func clientID(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
