// Package agent implements the afterstate controller: eligibility
// enumeration, afterstate scoring via the linear value network, greedy
// channel selection, and optional hand-off look-ahead.
package agent

import (
	"dcasim/internal/eventgen"
	"dcasim/internal/gridfuncs"
	"dcasim/internal/valuenet"
)

// State bundles everything the agent needs to score an event: the grid it
// would act on, the frep consistent with that grid, and the event itself.
type State struct {
	Grid  *gridfuncs.Grid
	Frep  *gridfuncs.Frep
	Event *eventgen.Event
}

// Agent is a linear-value afterstate controller trained online by
// average-reward TDC. Only one is ever instantiated per run, so it is a
// concrete type rather than an interface -- static polymorphism over the
// small {get_action, update} capability set the spec calls for, not dynamic
// dispatch.
type Agent struct {
	net       *valuenet.Net
	alphaAvg  float32
	avgReward float32
}

// New returns a freshly initialized Agent.
func New(alpha, alphaAvg, alphaGrad float32) *Agent {
	return &Agent{
		net:      valuenet.New(alpha, alphaGrad),
		alphaAvg: alphaAvg,
	}
}

// AvgReward returns the agent's current average-reward estimate.
func (a *Agent) AvgReward() float32 {
	return a.avgReward
}

// GetAction enumerates the candidate channels for state.Event, scores their
// afterstates (with hand-off look-ahead where applicable), and returns the
// greedily best action along with the frep of the chosen afterstate. An
// empty candidate set on NEW/HOFF yields (nil, state.Frep) unchanged -- the
// call is rejected, not an error. An empty set on END is a programming error.
func (a *Agent) GetAction(state *State) (*int, *gridfuncs.Frep) {
	cell := state.Event.Cell
	etype := state.Event.EType

	var chs []int
	if etype == gridfuncs.EEnd {
		chs = gridfuncs.GetInuseChs(state.Grid, cell)
	} else {
		chs = gridfuncs.GetEligibleChs(state.Grid, cell)
	}

	if len(chs) == 0 {
		if etype == gridfuncs.EEnd {
			panic("agent: no channels in use for END event")
		}
		return nil, state.Frep
	}

	qvals, freps := a.getQvals(state, chs)
	idx := argmax(qvals)
	ch := chs[idx]
	return &ch, freps[idx]
}

// getQvals scores each candidate channel's afterstate. When the current
// event is the END half of a hand-off (ToCell set), each candidate's value
// is instead the best value reachable by the subsequent HOFF arrival at
// ToCell -- hand-off look-ahead. If no candidate yields any eligible HOFF
// channel at ToCell, it falls back to scoring the departure afterstates
// directly.
func (a *Agent) getQvals(state *State, chs []int) ([]float32, []*gridfuncs.Frep) {
	cell := state.Event.Cell
	etype := state.Event.EType
	freps := gridfuncs.IncrementalFreps(state.Grid, state.Frep, cell, etype, chs)

	if state.Event.ToCell == nil {
		return a.net.Forward(freps), freps
	}

	toCell := *state.Event.ToCell
	astates := gridfuncs.Afterstates(state.Grid, cell, etype, chs)
	// Default every candidate to its direct departure value; candidates with
	// a non-empty hand-off eligibility set get overwritten with the
	// look-ahead value below. When every candidate's iha_chs is empty this
	// reduces exactly to net.Forward(freps), matching the spec's fallback.
	qvals := a.net.Forward(freps)
	for i, astate := range astates {
		ihaChs := gridfuncs.GetEligibleChs(astate, toCell)
		if len(ihaChs) == 0 {
			continue
		}
		haFreps := gridfuncs.IncrementalFreps(astate, freps[i], toCell, gridfuncs.EHoff, ihaChs)
		haVals := a.net.Forward(haFreps)
		qvals[i] = maxFloat32(haVals)
	}
	return qvals, freps
}

// Update trains the value network from the observed transition
// (state.Frep, reward, next_state.Frep) and advances the average-reward
// estimate. The action is not needed: both state and next_state are fully
// observed, so the TD error needs only the frep pair and the reward.
func (a *Agent) Update(state, nextState *State, reward int) {
	tdErr := a.net.Backward(state.Frep, float32(reward), a.avgReward, nextState.Frep)
	if valuenet.IsNaN(tdErr) {
		panic("agent: TD error diverged to NaN")
	}
	a.avgReward += a.alphaAvg * tdErr
}

func argmax(vals []float32) int {
	best := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] > vals[best] {
			best = i
		}
	}
	return best
}

func maxFloat32(vals []float32) float32 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
