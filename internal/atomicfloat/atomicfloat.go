// Package atomicfloat provides a lock-free float64, for metrics written by
// one goroutine and polled by another without blocking the writer.
package atomicfloat

import (
	"math"
	"sync/atomic"
)

// Float64 wraps a float64 for atomic reads and writes via its bit pattern.
type Float64 struct {
	bits atomic.Uint64
}

// New returns a Float64 initialized to val.
func New(val float64) *Float64 {
	f := &Float64{}
	f.bits.Store(math.Float64bits(val))
	return f
}

// Load atomically reads the current value.
func (f *Float64) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Store atomically overwrites the value. Unlike a read-add-CAS loop, a plain
// store never needs to retry: the metrics this type backs (a running
// average, a sampled gauge) always want "the latest value wins", not a
// serialized accumulation.
func (f *Float64) Store(val float64) {
	f.bits.Store(math.Float64bits(val))
}
