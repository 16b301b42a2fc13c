package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"wp-engine/engine"
)

const serviceVersion = "0.2.0"

var endpointList = []string{
	"/api/v1/health",
	"/api/v1/wp",
	"/api/v1/wp/play",
	"/api/v1/re24",
	"/api/v1/wp/scenario",
	"/api/v1/games/today",
	"/api/v1/wp/live/{gamePk}",
	"/api/v1/metrics",
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, IndexResponse{
		Name:      "Win Probability Engine",
		Version:   serviceVersion,
		Endpoints: endpointList,
		Scenarios: engine.ScenarioNames,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: serviceVersion,
	})
}

// analyze runs the full evaluation for one state: win probability, leverage
// index, tactic recommendations, and the optional matchup adjustment.
func (s *Server) analyze(g engine.GameState, env engine.ScoringEnvironment, m engine.Matchup) (AnalysisResponse, error) {
	wp, err := engine.WinProbability(g, env)
	if err != nil {
		return AnalysisResponse{}, err
	}
	li, err := engine.LeverageIndex(g, env)
	if err != nil {
		return AnalysisResponse{}, err
	}
	tactics, err := engine.Recommend(g, env, m)
	if err != nil {
		return AnalysisResponse{}, err
	}

	resp := AnalysisResponse{
		GameState:         toGameStateJSON(g, env.RunsPerGame),
		WinProbability:    round4(wp),
		WinProbabilityPct: pct(wp),
		LeverageIndex:     li,
		LeverageLabel:     engine.LeverageLabel(li),
		Tactics:           tactics,
	}
	if m.BatterOPS != nil || m.PitcherERA != nil {
		adj := round4(engine.AdjustWinProbability(wp, m))
		resp.AdjustedWP = &adj
	}
	return resp, nil
}

func (s *Server) handleWP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	g, err := parseGameState(q, "", 2)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	env, err := parseEnvironment(q, s.config.DefaultRPG)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	m, err := parseMatchup(q)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cacheKey := generateCacheKey("wp", q.Encode())
	if cached, found := s.respCache.Get(cacheKey); found {
		appMetrics.IncrementCacheHit()
		writeJSON(w, cached)
		return
	}
	appMetrics.IncrementCacheMiss()

	resp, err := s.analyze(g, env, m)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}

	s.respCache.Set(cacheKey, resp, s.config.CacheTTL)
	writeJSON(w, resp)
}

func (s *Server) handleWPA(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	before, err := parseGameState(q, "before_", 2)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// The after state may carry the third out of a play.
	after, err := parseGameState(q, "after_", 3)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	env, err := parseEnvironment(q, s.config.DefaultRPG)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	wpBefore, err := engine.WinProbability(before, env)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	wpAfter, err := engine.WinProbability(after, env)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, WPAResponse{
		WPA:         round4(wpAfter - wpBefore),
		WPBefore:    round4(wpBefore),
		WPAfter:     round4(wpAfter),
		BeforeState: toGameStateJSON(before, 0),
		AfterState:  toGameStateJSON(after, 0),
	})
}

func (s *Server) handleRE24(w http.ResponseWriter, r *http.Request) {
	env, err := parseEnvironment(r.URL.Query(), s.config.DefaultRPG)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, err := s.tables.Get(env)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, RE24Response{
		RunsPerGame: env.RunsPerGame,
		Count:       len(table.Entries),
		Table:       table.Entries,
	})
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sc, err := engine.LookupScenario(q.Get("name"))
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	env, err := parseEnvironment(q, s.config.DefaultRPG)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	analysis, err := s.analyze(sc.State, env, engine.Matchup{})
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}

	writeJSON(w, ScenarioResponse{
		Scenario:         sc.Name,
		Description:      sc.Description,
		AnalysisResponse: analysis,
	})
}

func (s *Server) handleGamesToday(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" && !validateDateFormat(date) {
		writeError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	games, err := s.mlb.Schedule(r.Context(), date)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}

	label := date
	if label == "" {
		label = "today"
	}
	writeJSON(w, GamesTodayResponse{
		Date:  label,
		Count: len(games),
		Games: games,
	})
}

func (s *Server) handleLiveWP(w http.ResponseWriter, r *http.Request) {
	gamePk, err := strconv.ParseInt(mux.Vars(r)["gamePk"], 10, 64)
	if err != nil {
		writeError(w, "gamePk must be an integer", http.StatusBadRequest)
		return
	}
	env, err := parseEnvironment(r.URL.Query(), s.config.DefaultRPG)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	lg, err := s.mlb.LiveState(r.Context(), gamePk)
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}

	resp := LiveWPResponse{
		GamePk:    gamePk,
		AwayTeam:  lg.AwayTeam,
		HomeTeam:  lg.HomeTeam,
		Status:    lg.Status,
		ScoreHome: lg.HomeScore,
		ScoreAway: lg.AwayScore,
		Batter:    lg.Batter,
		Pitcher:   lg.Pitcher,
	}

	if !lg.Started() {
		resp.StatusNote = "Game not yet started"
		writeJSON(w, resp)
		return
	}

	analysis, err := s.analyze(lg.State, env, engine.Matchup{})
	if err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	resp.Analysis = &analysis

	writeJSON(w, resp)
}
