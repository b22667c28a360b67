// Package simulation wires the environment, agent and stats collaborator
// together into the main event loop.
package simulation

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog/log"

	"dcasim/internal/agent"
	"dcasim/internal/environment"
	"dcasim/internal/gridfuncs"
	"dcasim/internal/stats"
)

// Config is the subset of the top-level configuration the driver needs
// directly; the rest (call_dur, call_rate, ...) is folded into
// environment.Config before Run is called.
type Config struct {
	Env       environment.Config
	NEvents   int
	LogIter   int
	Alpha     float32
	AlphaAvg  float32
	AlphaGrad float32
}

// Run executes the event loop described in the simulation driver component:
// initialize env and agent, then repeatedly step, update and re-act until
// n_events iterations elapse or ctx is cancelled. It returns the number of
// events actually processed, which is less than cfg.NEvents only on
// cancellation. If onReady is non-nil, it is invoked once with the live
// environment before the loop starts -- the hook the dashboard uses to get a
// read-only handle on the grid it will poll concurrently.
func Run(ctx context.Context, cfg Config, st *stats.Stats, rng *rand.Rand, onReady func(*environment.Env)) int {
	env, event0 := environment.New(cfg.Env, st, rng)
	if onReady != nil {
		onReady(env)
	}
	ag := agent.New(cfg.Alpha, cfg.AlphaAvg, cfg.AlphaGrad)

	state := &agent.State{
		Grid:  env.Grid.Clone(),
		Frep:  gridfuncs.FeatureRep(env.Grid),
		Event: event0,
	}
	action, nextFrep := ag.GetAction(state)

	processed := 0
	for i := 0; i < cfg.NEvents; i++ {
		select {
		case <-ctx.Done():
			log.Info().Int("events_processed", processed).Msg("cancelled, exiting with partial results")
			st.ReportFinal(processed, state.Event.Time)
			return processed
		default:
		}

		reward, nextEvent := env.Step(state.Event, action)
		nextState := &agent.State{
			Grid:  env.Grid.Clone(),
			Frep:  nextFrep,
			Event: nextEvent,
		}

		ag.Update(state, nextState, reward)
		st.SetAvgReward(float64(ag.AvgReward()))

		action, nextFrep = ag.GetAction(nextState)
		state = nextState
		processed++

		if cfg.LogIter > 0 && processed%cfg.LogIter == 0 {
			st.ReportLogIter(processed-cfg.LogIter, processed)
		}
	}

	st.ReportFinal(processed, state.Event.Time)
	return processed
}
