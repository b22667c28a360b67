// Package environment implements the event-loop step: accepting or rejecting
// calls, executing the chosen action on the grid, scheduling follow-on
// events, and reporting the reward.
package environment

import (
	"fmt"
	"math/rand"

	"dcasim/internal/eventgen"
	"dcasim/internal/gridfuncs"
	"dcasim/internal/stats"
)

// Config carries the environment's tunables: the hand-off probability, the
// grid verification flag, and the rate parameters passed on to its event
// generator.
type Config struct {
	PHandoff    float64
	VerifyGrid  bool
	CallRatePH  float64
	CallDur     float64
	HoffCallDur float64
}

// Env owns the grid and the event generator exclusively; the agent only ever
// sees the grid by reference during action selection.
type Env struct {
	pHandoff   float64
	verifyGrid bool
	Grid       *gridfuncs.Grid
	Stats      *stats.Stats
	eventgen   *eventgen.Generator
	rng        *rand.Rand
}

// New allocates an empty grid, seeds one NEW event per cell at t=0, and
// returns the environment along with the first event to process.
func New(cfg Config, st *stats.Stats, rng *rand.Rand) (*Env, *eventgen.Event) {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	gen := eventgen.New(eventgen.Params{
		CallRatePerHour: cfg.CallRatePH,
		CallDur:         cfg.CallDur,
		HoffCallDur:     cfg.HoffCallDur,
	}, rand.New(rand.NewSource(rng.Int63())))

	env := &Env{
		pHandoff:   cfg.PHandoff,
		verifyGrid: cfg.VerifyGrid,
		Grid:       &gridfuncs.Grid{},
		Stats:      st,
		eventgen:   gen,
		rng:        rng,
	}
	for r := 0; r < gridfuncs.Rows; r++ {
		for c := 0; c < gridfuncs.Cols; c++ {
			gen.EventNew(0, gridfuncs.Cell{Row: r, Col: c})
		}
	}
	return env, gen.Pop()
}

// Action is the channel to assign, or nil to reject/take no action.
type Action = *int

// Step processes event with the agent's chosen action, scheduling whatever
// follow-on events the event type implies, applying the action to the grid,
// and returns the resulting reward (n_used) and the next event to process.
func (env *Env) Step(event *eventgen.Event, action Action) (int, *eventgen.Event) {
	time, cell := event.Time, event.Cell

	switch event.EType {
	case gridfuncs.ENew:
		env.Stats.EventArrivalNew()
		env.eventgen.EventNew(time, cell)
		if action != nil {
			env.Stats.EventAcceptNew()
			if env.rng.Float64() < env.pHandoff {
				env.eventgen.EventHoffNew(time, cell, *action)
			} else {
				env.eventgen.EventEnd(time, cell, *action)
			}
		} else {
			env.Stats.EventRejectNew()
		}
	case gridfuncs.EHoff:
		env.Stats.EventArrivalHoff()
		if action != nil {
			env.eventgen.EventHoffEnd(time, cell, *action)
		} else {
			env.Stats.EventRejectHoff()
		}
	case gridfuncs.EEnd:
		env.Stats.EventEnd()
		if action == nil {
			panic("environment: END event requires an action")
		}
	}

	if action != nil {
		env.executeAction(event, *action)
	}

	if env.verifyGrid {
		if err := gridfuncs.ValidateReuseConstraint(env.Grid); err != nil {
			panic(fmt.Sprintf("environment: %v", err))
		}
	}

	reward := gridfuncs.NUsed(env.Grid)
	return reward, env.eventgen.Pop()
}

// executeAction applies the chosen channel to the grid for event.
func (env *Env) executeAction(event *eventgen.Event, ch int) {
	r, c := event.Cell.Row, event.Cell.Col
	switch event.EType {
	case gridfuncs.EEnd:
		if event.Ch == nil {
			panic("environment: END event has no channel to reassign")
		}
		reassCh := *event.Ch
		if !env.Grid[r][c][reassCh] {
			panic(fmt.Sprintf("environment: reassignment channel %d not in use at %v", reassCh, event.Cell))
		}
		if reassCh != ch {
			if !env.Grid[r][c][ch] {
				panic(fmt.Sprintf("environment: released channel %d not in use at %v", ch, event.Cell))
			}
			env.eventgen.Reassign(event.Cell, ch, reassCh)
		}
		env.Grid[r][c][ch] = false
	default:
		if env.Grid[r][c][ch] {
			panic(fmt.Sprintf("environment: channel %d already in use at %v", ch, event.Cell))
		}
		env.Grid[r][c][ch] = true
	}
}
