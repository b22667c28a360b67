// Package stats keeps the arrival/rejection counters and blocking-probability
// series for a running simulation. Every counter is updated from the single
// simulation goroutine but may be read concurrently -- by the periodic
// console reporter or the optional live dashboard -- so every field is backed
// by a lock-free atomic type, avoiding a mutex on the hot path.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"

	"dcasim/internal/atomicfloat"
)

// Stats accumulates call-level counters and derives blocking probabilities
// from them. All methods are safe for concurrent use.
type Stats struct {
	startTime time.Time

	arrivalsNew  atomic.Int64
	arrivalsHoff atomic.Int64
	acceptedNew  atomic.Int64
	rejectedNew  atomic.Int64
	rejectedHoff atomic.Int64
	ended        atomic.Int64

	// Windowed counters, reset at each log_iter report.
	windowArrivalsNew  atomic.Int64
	windowRejectedNew  atomic.Int64
	windowArrivalsHoff atomic.Int64
	windowRejectedHoff atomic.Int64

	// avgReward is the agent's running average-reward estimate, written once
	// per event by the simulation loop and polled by the dashboard -- the
	// one field on this type where a plain atomic.Int64 won't do.
	avgReward *atomicfloat.Float64
}

// New returns a zeroed Stats with its clock started now.
func New() *Stats {
	return &Stats{startTime: time.Now(), avgReward: atomicfloat.New(0)}
}

// SetAvgReward records the agent's latest average-reward estimate.
func (s *Stats) SetAvgReward(v float64) {
	s.avgReward.Store(v)
}

// AvgReward returns the most recently recorded average-reward estimate.
func (s *Stats) AvgReward() float64 {
	return s.avgReward.Load()
}

func (s *Stats) EventArrivalNew() {
	s.arrivalsNew.Add(1)
	s.windowArrivalsNew.Add(1)
}

func (s *Stats) EventAcceptNew() {
	s.acceptedNew.Add(1)
}

func (s *Stats) EventRejectNew() {
	s.rejectedNew.Add(1)
	s.windowRejectedNew.Add(1)
}

func (s *Stats) EventArrivalHoff() {
	s.arrivalsHoff.Add(1)
	s.windowArrivalsHoff.Add(1)
}

func (s *Stats) EventRejectHoff() {
	s.rejectedHoff.Add(1)
	s.windowRejectedHoff.Add(1)
}

func (s *Stats) EventEnd() {
	s.ended.Add(1)
}

// ArrivalsNew, ArrivalsHoff, RejectedNew and RejectedHoff expose the raw
// cumulative counters, mainly for tests and the dashboard feed.
func (s *Stats) ArrivalsNew() int64  { return s.arrivalsNew.Load() }
func (s *Stats) ArrivalsHoff() int64 { return s.arrivalsHoff.Load() }
func (s *Stats) RejectedNew() int64  { return s.rejectedNew.Load() }
func (s *Stats) RejectedHoff() int64 { return s.rejectedHoff.Load() }
func (s *Stats) Ended() int64        { return s.ended.Load() }

func ratio(num, denom int64) float64 {
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

// CumulativeBlockProbNew, CumulativeBlockProbHoff and CumulativeBlockProbTotal
// report the running blocking probability since the simulation started.
func (s *Stats) CumulativeBlockProbNew() float64 {
	return ratio(s.rejectedNew.Load(), s.arrivalsNew.Load())
}

func (s *Stats) CumulativeBlockProbHoff() float64 {
	return ratio(s.rejectedHoff.Load(), s.arrivalsHoff.Load())
}

func (s *Stats) CumulativeBlockProbTotal() float64 {
	rejected := s.rejectedNew.Load() + s.rejectedHoff.Load()
	arrivals := s.arrivalsNew.Load() + s.arrivalsHoff.Load()
	return ratio(rejected, arrivals)
}

// WindowBlockProb reports the blocking probability since the last call to
// ResetWindow, for new calls and hand-offs combined.
func (s *Stats) WindowBlockProb() float64 {
	rejected := s.windowRejectedNew.Load() + s.windowRejectedHoff.Load()
	arrivals := s.windowArrivalsNew.Load() + s.windowArrivalsHoff.Load()
	return ratio(rejected, arrivals)
}

// ResetWindow zeroes the windowed counters, starting a fresh log_iter period.
func (s *Stats) ResetWindow() {
	s.windowArrivalsNew.Store(0)
	s.windowRejectedNew.Store(0)
	s.windowArrivalsHoff.Store(0)
	s.windowRejectedHoff.Store(0)
}

// ReportLogIter prints the periodic blocking-probability line and resets the
// windowed counters, matching spec's "Blocking probability events A-B: ..."
// format.
func (s *Stats) ReportLogIter(iterStart, iterEnd int) {
	fmt.Printf(
		"Blocking probability events %d-%d: %.4f, cumulative %.4f\n",
		iterStart, iterEnd, s.WindowBlockProb(), s.CumulativeBlockProbTotal(),
	)
	s.ResetWindow()
}

// ReportFinal prints the end-of-run summary: wall time, event rate, and
// cumulative blocking probability for new, hand-off and total calls.
func (s *Stats) ReportFinal(nEvents int, simTime float64) {
	elapsed := time.Since(s.startTime)
	rate := float64(nEvents) / elapsed.Seconds()
	fmt.Printf(
		"Simulation done: %d events in %s (%.1f events/sec), sim time %.2f minutes\n",
		nEvents, elapsed.Round(time.Millisecond), rate, simTime,
	)
	fmt.Printf(
		"Cumulative blocking probability -- new: %.4f, hand-off: %.4f, total: %.4f\n",
		s.CumulativeBlockProbNew(), s.CumulativeBlockProbHoff(), s.CumulativeBlockProbTotal(),
	)
}
