// Package mlb is a thin client for the MLB Stats API: today's schedule and
// the live linescore for a single game, shaped for the win-probability
// engine.
package mlb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"wp-engine/engine"
)

const (
	// DefaultBaseURL is the public MLB Stats API endpoint.
	DefaultBaseURL = "https://statsapi.mlb.com/api"

	// Live state changes pitch to pitch; a short cache absorbs dashboard
	// refresh storms without serving stale innings.
	liveCacheTTL     = 10 * time.Second
	scheduleCacheTTL = time.Minute

	requestTimeout = 10 * time.Second
	maxAttempts    = 3
	retryBaseDelay = 200 * time.Millisecond
)

var (
	// ErrGameNotFound is returned when the API has no game for the requested gamePk.
	ErrGameNotFound = errors.New("game not found")
	// ErrUpstream wraps transport and non-2xx failures from the Stats API.
	ErrUpstream = errors.New("mlb stats api error")
)

// Game is one entry from the daily schedule.
type Game struct {
	GamePk    int64  `json:"gamePk"`
	AwayTeam  string `json:"away_team"`
	HomeTeam  string `json:"home_team"`
	Status    string `json:"status"`
	StartTime string `json:"start_time_utc"`
}

// LiveGame is the current situation of a game in progress, plus the team and
// player context the linescore carries.
type LiveGame struct {
	State     engine.GameState `json:"game_state"`
	HomeScore int              `json:"score_home"`
	AwayScore int              `json:"score_away"`
	Batter    string           `json:"batter_name,omitempty"`
	Pitcher   string           `json:"pitcher_name,omitempty"`
	AwayTeam  string           `json:"away_team"`
	HomeTeam  string           `json:"home_team"`
	Status    string           `json:"status"`
}

// Started reports whether the game has begun. Pre-game states have no
// linescore worth evaluating.
func (g LiveGame) Started() bool {
	switch g.Status {
	case "Scheduled", "Pre-Game", "Warmup":
		return false
	}
	return true
}

// Client fetches schedule and live game data with retries and a short
// in-memory cache.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	payload   any
	expiresAt time.Time
}

// NewClient creates a Stats API client. An empty baseURL selects the public
// endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		cache: make(map[string]cacheEntry),
	}
}

type scheduleResponse struct {
	Dates []struct {
		Games []struct {
			GamePk int64 `json:"gamePk"`
			Teams  struct {
				Away struct {
					Team struct {
						Name string `json:"name"`
					} `json:"team"`
				} `json:"away"`
				Home struct {
					Team struct {
						Name string `json:"name"`
					} `json:"team"`
				} `json:"home"`
			} `json:"teams"`
			Status struct {
				DetailedState string `json:"detailedState"`
			} `json:"status"`
			GameDate string `json:"gameDate"`
		} `json:"games"`
	} `json:"dates"`
}

// Schedule returns the MLB schedule for a date ("YYYY-MM-DD"). An empty date
// means today, UTC.
func (c *Client) Schedule(ctx context.Context, date string) ([]Game, error) {
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	cacheKey := "schedule:" + date
	if games, ok := cacheGet[[]Game](c, cacheKey); ok {
		return games, nil
	}

	params := url.Values{}
	params.Set("date", date)
	params.Set("sportId", "1")

	var resp scheduleResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/v1/schedule?%s", c.baseURL, params.Encode()), &resp); err != nil {
		return nil, err
	}

	games := make([]Game, 0)
	for _, d := range resp.Dates {
		for _, g := range d.Games {
			games = append(games, Game{
				GamePk:    g.GamePk,
				AwayTeam:  g.Teams.Away.Team.Name,
				HomeTeam:  g.Teams.Home.Team.Name,
				Status:    g.Status.DetailedState,
				StartTime: g.GameDate,
			})
		}
	}

	c.cachePut(cacheKey, games, scheduleCacheTTL)
	return games, nil
}

type liveFeedResponse struct {
	GameData struct {
		Status struct {
			DetailedState string `json:"detailedState"`
		} `json:"status"`
		Teams struct {
			Away struct {
				Name string `json:"name"`
			} `json:"away"`
			Home struct {
				Name string `json:"name"`
			} `json:"home"`
		} `json:"teams"`
	} `json:"gameData"`
	LiveData struct {
		Linescore struct {
			CurrentInning int  `json:"currentInning"`
			IsTopInning   bool `json:"isTopInning"`
			Outs          int  `json:"outs"`
			Teams         struct {
				Home struct {
					Runs int `json:"runs"`
				} `json:"home"`
				Away struct {
					Runs int `json:"runs"`
				} `json:"away"`
			} `json:"teams"`
			Offense struct {
				First  *struct{} `json:"first"`
				Second *struct{} `json:"second"`
				Third  *struct{} `json:"third"`
				Batter *struct {
					FullName string `json:"fullName"`
				} `json:"batter"`
			} `json:"offense"`
			Defense struct {
				Pitcher *struct {
					FullName string `json:"fullName"`
				} `json:"pitcher"`
			} `json:"defense"`
		} `json:"linescore"`
	} `json:"liveData"`
}

// LiveState fetches the live linescore for one game. The third out of a
// half-inning is reported as outs=3 by the API; it is clamped to 2 so the
// state stays inside the engine's domain.
func (c *Client) LiveState(ctx context.Context, gamePk int64) (LiveGame, error) {
	cacheKey := fmt.Sprintf("live:%d", gamePk)
	if lg, ok := cacheGet[LiveGame](c, cacheKey); ok {
		return lg, nil
	}

	var resp liveFeedResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/v1.1/game/%d/feed/live", c.baseURL, gamePk), &resp); err != nil {
		return LiveGame{}, err
	}

	ls := resp.LiveData.Linescore

	inning := ls.CurrentInning
	if inning < 1 {
		inning = 1
	}
	half := engine.Bottom
	if ls.IsTopInning {
		half = engine.Top
	}
	outs := ls.Outs
	if outs > 2 {
		outs = 2
	}

	lg := LiveGame{
		State: engine.GameState{
			Inning: inning,
			Half:   half,
			Bases: engine.BaseOutState{
				First:  ls.Offense.First != nil,
				Second: ls.Offense.Second != nil,
				Third:  ls.Offense.Third != nil,
				Outs:   outs,
			},
			ScoreDiff: ls.Teams.Home.Runs - ls.Teams.Away.Runs,
		},
		HomeScore: ls.Teams.Home.Runs,
		AwayScore: ls.Teams.Away.Runs,
		AwayTeam:  resp.GameData.Teams.Away.Name,
		HomeTeam:  resp.GameData.Teams.Home.Name,
		Status:    resp.GameData.Status.DetailedState,
	}
	if ls.Offense.Batter != nil {
		lg.Batter = ls.Offense.Batter.FullName
	}
	if ls.Defense.Pitcher != nil {
		lg.Pitcher = ls.Defense.Pitcher.FullName
	}

	c.cachePut(cacheKey, lg, liveCacheTTL)
	return lg, nil
}

// getJSON performs a GET with bounded retries on transport errors and 5xx
// responses. 404 maps to ErrGameNotFound and is never retried.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrUpstream, err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(ErrGameNotFound)
			case resp.StatusCode >= 500:
				io.Copy(io.Discard, resp.Body)
				return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
			case resp.StatusCode != http.StatusOK:
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return retry.Unrecoverable(fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, body))
			}

			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("%w: decode: %v", ErrUpstream, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(retryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Uint("attempt", n+1).Err(err).Str("url", rawURL).Msg("stats api retry")
		}),
	)
}

func cacheGet[T any](c *Client, key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return zero, false
	}
	v, ok := entry.payload.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

func (c *Client) cachePut(key string, payload any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{payload: payload, expiresAt: time.Now().Add(ttl)}
}
