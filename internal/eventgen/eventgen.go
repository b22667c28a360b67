// Package eventgen implements the priority-queue event generator: NEW, HOFF
// and END events with exponential inter-arrival and hold times, ordered by
// (time, id) so hand-off pairs resolve deterministically.
package eventgen

import (
	"container/heap"
	"fmt"
	"math/rand"

	"dcasim/internal/gridfuncs"
)

// Event is a single scheduled occurrence in the call-level event stream.
type Event struct {
	ID    uint32
	Time  float64
	EType gridfuncs.EType
	Cell  gridfuncs.Cell
	// Ch is required for END events: the channel being released.
	Ch *int
	// ToCell is set only on an END that immediately precedes a HOFF, naming
	// the hand-off's arrival cell. It enables hand-off look-ahead.
	ToCell *gridfuncs.Cell
}

func intPtr(i int) *int { return &i }

// endKey identifies the (cell, channel) an END event is pending for.
type endKey struct {
	row, col, ch int
}

// eventItem is the heap element: only the ordering key and the event id are
// needed to maintain heap order, the event payload itself lives in the id
// map. Ties are broken by ascending id, which guarantees a hand-off's END
// (the smaller id) is always popped before its paired HOFF arrival.
type eventItem struct {
	time float64
	id   uint32
}

// eventHeap is a container/heap.Interface min-heap on (time, id).
type eventHeap []eventItem

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].id < h[j].id
}
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)        { *h = append(*h, x.(eventItem)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Generator owns the event heap, the id->Event index, and the (cell,channel)
// -> pending-END-id index. It is exclusively owned by one Environment.
type Generator struct {
	nextID uint32

	callRate        float64 // calls per minute
	callDurInv      float64 // 1 / mean call duration
	hoffCallDurInv  float64 // 1 / mean hand-off call duration

	pq     eventHeap
	events map[uint32]*Event
	endIDs map[endKey]uint32

	rng *rand.Rand
}

// Params configures a Generator's sampling rates.
type Params struct {
	CallRatePerHour float64 // calls per hour per cell
	CallDur         float64 // mean call duration, minutes
	HoffCallDur     float64 // mean hand-off call duration, minutes
}

// New creates an empty Generator. The supplied rng is the thread-local random
// source used for exponential sampling; pass rand.New(rand.NewSource(seed))
// for a reproducible run, or nil for a fresh source seeded from the
// package-global one.
func New(p Params, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	g := &Generator{
		callRate:       p.CallRatePerHour / 60.0,
		callDurInv:     1.0 / p.CallDur,
		hoffCallDurInv: 1.0 / p.HoffCallDur,
		events:         make(map[uint32]*Event),
		endIDs:         make(map[endKey]uint32),
		rng:            rng,
	}
	heap.Init(&g.pq)
	return g
}

// Push inserts event into the heap, and, for END events, into the end index.
func (g *Generator) Push(event *Event) {
	if event.EType == gridfuncs.EEnd {
		if event.Ch == nil {
			panic("eventgen: END event pushed without a channel")
		}
		key := endKey{event.Cell.Row, event.Cell.Col, *event.Ch}
		if _, exists := g.endIDs[key]; exists {
			panic(fmt.Sprintf("eventgen: END already pending for %v", key))
		}
		g.endIDs[key] = event.ID
	}
	heap.Push(&g.pq, eventItem{time: event.Time, id: event.ID})
	g.events[event.ID] = event
}

// Pop removes and returns the earliest event by (time, id).
func (g *Generator) Pop() *Event {
	if len(g.pq) == 0 {
		panic("eventgen: no events to pop")
	}
	item := heap.Pop(&g.pq).(eventItem)
	event, ok := g.events[item.id]
	if !ok {
		panic("eventgen: event for id not found")
	}
	delete(g.events, item.id)
	if event.EType == gridfuncs.EEnd {
		key := endKey{event.Cell.Row, event.Cell.Col, *event.Ch}
		if _, ok := g.endIDs[key]; !ok {
			panic("eventgen: end id not found")
		}
		delete(g.endIDs, key)
	}
	return event
}

// Reassign moves the pending END for (cell, fromCh) to (cell, toCh), updating
// both the end index and the in-heap event's channel field. Heap ordering is
// unaffected since the event's time and id don't change.
func (g *Generator) Reassign(cell gridfuncs.Cell, fromCh, toCh int) {
	if fromCh == toCh {
		panic("eventgen: reassign requires fromCh != toCh")
	}
	key := endKey{cell.Row, cell.Col, fromCh}
	id, ok := g.endIDs[key]
	if !ok {
		panic("eventgen: end id not found for reassign")
	}
	delete(g.endIDs, key)
	g.endIDs[endKey{cell.Row, cell.Col, toCh}] = id
	event, ok := g.events[id]
	if !ok {
		panic("eventgen: event for id not found during reassign")
	}
	event.Ch = intPtr(toCh)
}

func (g *Generator) newID() uint32 {
	g.nextID++
	return g.nextID
}

// expSample draws a non-NaN Exp(rate) variate.
func (g *Generator) expSample(rate float64) float64 {
	dt := g.rng.ExpFloat64() / rate
	if dt != dt { // NaN check
		panic("eventgen: sampled a NaN inter-event time")
	}
	return dt
}

// EventNew schedules the next NEW arrival at cell.
func (g *Generator) EventNew(t float64, cell gridfuncs.Cell) {
	dt := g.expSample(g.callRate)
	g.Push(&Event{
		ID:    g.newID(),
		Time:  t + dt,
		EType: gridfuncs.ENew,
		Cell:  cell,
	})
}

// EventEnd schedules the departure of a regular (non-hand-off) call and
// returns its scheduled end time.
func (g *Generator) EventEnd(t float64, cell gridfuncs.Cell, ch int) float64 {
	return g.eventEnd(t, g.callDurInv, cell, ch, nil)
}

// EventHoffEnd schedules the departure of a handed-off call and returns its
// scheduled end time.
func (g *Generator) EventHoffEnd(t float64, cell gridfuncs.Cell, ch int) float64 {
	return g.eventEnd(t, g.hoffCallDurInv, cell, ch, nil)
}

func (g *Generator) eventEnd(t, durInv float64, cell gridfuncs.Cell, ch int, toCell *gridfuncs.Cell) float64 {
	dt := g.expSample(durInv)
	endTime := t + dt
	g.Push(&Event{
		ID:     g.newID(),
		Time:   endTime,
		EType:  gridfuncs.EEnd,
		Cell:   cell,
		Ch:     intPtr(ch),
		ToCell: toCell,
	})
	return endTime
}

// EventHoffNew hands a call off from cell to a uniformly random hex-distance-1
// neighbor. It schedules the departure END at cell (carrying ToCell) and the
// HOFF arrival at the neighbor, both at the same end time; the END's smaller
// id guarantees it is processed first.
func (g *Generator) EventHoffNew(t float64, cell gridfuncs.Cell, ch int) {
	neighs := gridfuncs.Neighbors(1, cell.Row, cell.Col, false)
	toCell := neighs[g.rng.Intn(len(neighs))]
	endTime := g.eventEnd(t, g.callDurInv, cell, ch, &toCell)
	g.Push(&Event{
		ID:    g.newID(),
		Time:  endTime,
		EType: gridfuncs.EHoff,
		Cell:  toCell,
	})
}

// Len reports the number of events currently scheduled.
func (g *Generator) Len() int {
	return len(g.pq)
}
