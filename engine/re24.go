package engine

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// baselineRPG is the scoring environment the baseline matrix was calibrated
// on. RE24 values scale linearly with runs per game relative to this.
const baselineRPG = 4.5

// baselineRE24 holds expected runs for the remainder of the inning for each
// of the 24 base-out states, MLB 2010-2019 averages. Indexed by stateIndex.
var baselineRE24 = [24]float64{
	// 0 outs: ---, 1--, -2-, 12-, --3, 1-3, -23, 123
	0.481, 0.859, 1.100, 1.437, 1.350, 1.784, 1.964, 2.292,
	// 1 out
	0.254, 0.509, 0.664, 0.884, 0.950, 1.130, 1.376, 1.541,
	// 2 outs
	0.098, 0.224, 0.319, 0.429, 0.353, 0.478, 0.580, 0.752,
}

func stateIndex(b BaseOutState) int {
	i := b.Outs * 8
	if b.First {
		i |= 1
	}
	if b.Second {
		i |= 2
	}
	if b.Third {
		i |= 4
	}
	return i
}

// RE24 returns the expected runs scored in the remainder of the inning for
// the given base-out state, scaled to the scoring environment.
func RE24(b BaseOutState, env ScoringEnvironment) (float64, error) {
	if err := b.validate(); err != nil {
		return 0, err
	}
	if err := env.validate(); err != nil {
		return 0, err
	}
	return baselineRE24[stateIndex(b)] * (env.RunsPerGame / baselineRPG), nil
}

// RE24Entry is one row of the run-expectancy table dump.
type RE24Entry struct {
	Runners      string  `json:"runners"`
	Runner1      bool    `json:"runner1"`
	Runner2      bool    `json:"runner2"`
	Runner3      bool    `json:"runner3"`
	Outs         int     `json:"outs"`
	ExpectedRuns float64 `json:"expected_runs"`
}

// Table is the full run-expectancy matrix for one scoring environment,
// immutable after construction.
type Table struct {
	Env     ScoringEnvironment
	Entries []RE24Entry
}

// NewTable builds the scaled 24-state table. Entries are ordered by outs,
// then by runner configuration.
func NewTable(env ScoringEnvironment) (*Table, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}
	entries := make([]RE24Entry, 0, 24)
	for outs := 0; outs <= 2; outs++ {
		for cfg := 0; cfg < 8; cfg++ {
			b := BaseOutState{
				First:  cfg&1 != 0,
				Second: cfg&2 != 0,
				Third:  cfg&4 != 0,
				Outs:   outs,
			}
			re, err := RE24(b, env)
			if err != nil {
				return nil, err
			}
			entries = append(entries, RE24Entry{
				Runners:      b.Runners(),
				Runner1:      b.First,
				Runner2:      b.Second,
				Runner3:      b.Third,
				Outs:         outs,
				ExpectedRuns: math.Round(re*1000) / 1000,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Outs < entries[j].Outs
	})
	return &Table{Env: env, Entries: entries}, nil
}

// TableCache memoizes built tables per scoring environment. The serving
// layer owns one instance; tests construct their own so nothing leaks
// between environments. Concurrent builds for the same environment are
// coalesced; a duplicate build would be wasteful but never incorrect.
type TableCache struct {
	mu     sync.RWMutex
	group  singleflight.Group
	tables map[float64]*Table
}

func NewTableCache() *TableCache {
	return &TableCache{tables: make(map[float64]*Table)}
}

// Get returns the table for env, building it on first use.
func (c *TableCache) Get(env ScoringEnvironment) (*Table, error) {
	c.mu.RLock()
	t, ok := c.tables[env.RunsPerGame]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	key := fmt.Sprintf("%g", env.RunsPerGame)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		t, ok := c.tables[env.RunsPerGame]
		c.mu.RUnlock()
		if ok {
			return t, nil
		}
		t, err := NewTable(env)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.tables[env.RunsPerGame] = t
		c.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

// Len reports how many environments are cached.
func (c *TableCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tables)
}
