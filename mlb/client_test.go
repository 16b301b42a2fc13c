package mlb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wp-engine/engine"
)

const scheduleJSON = `{
  "dates": [{
    "games": [
      {
        "gamePk": 745804,
        "teams": {
          "away": {"team": {"name": "Boston Red Sox"}},
          "home": {"team": {"name": "New York Yankees"}}
        },
        "status": {"detailedState": "In Progress"},
        "gameDate": "2024-06-14T23:05:00Z"
      },
      {
        "gamePk": 745805,
        "teams": {
          "away": {"team": {"name": "Chicago Cubs"}},
          "home": {"team": {"name": "St. Louis Cardinals"}}
        },
        "status": {"detailedState": "Scheduled"},
        "gameDate": "2024-06-15T00:10:00Z"
      }
    ]
  }]
}`

const liveFeedJSON = `{
  "gameData": {
    "status": {"detailedState": "In Progress"},
    "teams": {
      "away": {"name": "Boston Red Sox"},
      "home": {"name": "New York Yankees"}
    }
  },
  "liveData": {
    "linescore": {
      "currentInning": 7,
      "isTopInning": false,
      "outs": 1,
      "teams": {
        "home": {"runs": 2},
        "away": {"runs": 3}
      },
      "offense": {
        "first": {"id": 605141},
        "second": {"id": 665742},
        "batter": {"fullName": "Aaron Judge"}
      },
      "defense": {
        "pitcher": {"fullName": "Tanner Houck"}
      }
    }
  }
}`

func TestSchedule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/schedule", r.URL.Path)
		assert.Equal(t, "2024-06-14", r.URL.Query().Get("date"))
		assert.Equal(t, "1", r.URL.Query().Get("sportId"))
		w.Write([]byte(scheduleJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	games, err := c.Schedule(context.Background(), "2024-06-14")
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, int64(745804), games[0].GamePk)
	assert.Equal(t, "Boston Red Sox", games[0].AwayTeam)
	assert.Equal(t, "New York Yankees", games[0].HomeTeam)
	assert.Equal(t, "In Progress", games[0].Status)
	assert.Equal(t, "2024-06-14T23:05:00Z", games[0].StartTime)
	assert.Equal(t, "Scheduled", games[1].Status)
}

func TestScheduleCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(scheduleJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Schedule(context.Background(), "2024-06-14")
	require.NoError(t, err)
	_, err = c.Schedule(context.Background(), "2024-06-14")
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
}

func TestLiveState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.1/game/745804/feed/live", r.URL.Path)
		w.Write([]byte(liveFeedJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	lg, err := c.LiveState(context.Background(), 745804)
	require.NoError(t, err)

	assert.Equal(t, engine.GameState{
		Inning:    7,
		Half:      engine.Bottom,
		Bases:     engine.BaseOutState{First: true, Second: true, Outs: 1},
		ScoreDiff: -1,
	}, lg.State)
	assert.Equal(t, 2, lg.HomeScore)
	assert.Equal(t, 3, lg.AwayScore)
	assert.Equal(t, "Aaron Judge", lg.Batter)
	assert.Equal(t, "Tanner Houck", lg.Pitcher)
	assert.Equal(t, "New York Yankees", lg.HomeTeam)
	assert.True(t, lg.Started())
}

func TestLiveStateClampsThirdOut(t *testing.T) {
	body := `{
	  "gameData": {"status": {"detailedState": "In Progress"}, "teams": {"away": {"name": "A"}, "home": {"name": "H"}}},
	  "liveData": {"linescore": {"currentInning": 5, "isTopInning": true, "outs": 3,
	    "teams": {"home": {"runs": 0}, "away": {"runs": 0}}, "offense": {}, "defense": {}}}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	lg, err := c.LiveState(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, lg.State.Bases.Outs)
	assert.Equal(t, engine.Top, lg.State.Half)
}

func TestLiveStatePreGame(t *testing.T) {
	body := `{
	  "gameData": {"status": {"detailedState": "Pre-Game"}, "teams": {"away": {"name": "A"}, "home": {"name": "H"}}},
	  "liveData": {"linescore": {"teams": {"home": {}, "away": {}}, "offense": {}, "defense": {}}}
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	lg, err := c.LiveState(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, lg.Started())
	// Missing linescore fields still land on a valid state.
	assert.Equal(t, 1, lg.State.Inning)
}

func TestLiveStateNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.LiveState(context.Background(), 999999)
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestRetryOnServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Write([]byte(liveFeedJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	lg, err := c.LiveState(context.Background(), 745804)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, 7, lg.State.Inning)
}

func TestRetryGivesUp(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.LiveState(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(3), hits.Load())
}
