package agent

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"dcasim/internal/eventgen"
	"dcasim/internal/gridfuncs"
)

func TestGetActionOnEmptyGridPicksAnEligibleChannel(t *testing.T) {
	Convey("Given a fresh agent and an empty grid", t, func() {
		a := New(2.52e-6, 0.06, 5e-6)
		var g gridfuncs.Grid
		frep := gridfuncs.FeatureRep(&g)
		cell := gridfuncs.Cell{Row: 3, Col: 3}
		event := &eventgen.Event{EType: gridfuncs.ENew, Cell: cell}

		Convey("GetAction returns a non-nil channel and a matching frep", func() {
			ch, nextFrep := a.GetAction(&State{Grid: &g, Frep: frep, Event: event})
			So(ch, ShouldNotBeNil)
			So(*ch, ShouldBeBetweenOrEqual, 0, gridfuncs.Channels-1)
			So(nextFrep, ShouldNotBeNil)
		})
	})
}

func TestGetActionOnFullCellRejectsNewArrival(t *testing.T) {
	Convey("Given a cell with every channel already occupied", t, func() {
		a := New(2.52e-6, 0.06, 5e-6)
		var g gridfuncs.Grid
		cell := gridfuncs.Cell{Row: 2, Col: 2}
		for ch := 0; ch < gridfuncs.Channels; ch++ {
			g[cell.Row][cell.Col][ch] = true
		}
		frep := gridfuncs.FeatureRep(&g)
		event := &eventgen.Event{EType: gridfuncs.ENew, Cell: cell}

		Convey("GetAction rejects: nil channel, unchanged frep", func() {
			ch, nextFrep := a.GetAction(&State{Grid: &g, Frep: frep, Event: event})
			So(ch, ShouldBeNil)
			So(nextFrep, ShouldEqual, frep)
		})
	})
}

func TestGetActionOnEndEventPicksAmongInuseChannels(t *testing.T) {
	Convey("Given a cell with exactly one channel in use", t, func() {
		a := New(2.52e-6, 0.06, 5e-6)
		var g gridfuncs.Grid
		cell := gridfuncs.Cell{Row: 1, Col: 1}
		g[cell.Row][cell.Col][17] = true
		frep := gridfuncs.FeatureRep(&g)
		event := &eventgen.Event{EType: gridfuncs.EEnd, Cell: cell, Ch: func() *int { i := 17; return &i }()}

		Convey("GetAction returns that channel", func() {
			ch, _ := a.GetAction(&State{Grid: &g, Frep: frep, Event: event})
			So(ch, ShouldNotBeNil)
			So(*ch, ShouldEqual, 17)
		})
	})
}

func TestGetActionPanicsOnEndWithNoInuseChannels(t *testing.T) {
	Convey("Given an END event at a cell with nothing in use", t, func() {
		a := New(2.52e-6, 0.06, 5e-6)
		var g gridfuncs.Grid
		cell := gridfuncs.Cell{Row: 0, Col: 0}
		frep := gridfuncs.FeatureRep(&g)
		event := &eventgen.Event{EType: gridfuncs.EEnd, Cell: cell}

		Convey("GetAction panics", func() {
			So(func() {
				a.GetAction(&State{Grid: &g, Frep: frep, Event: event})
			}, ShouldPanic)
		})
	})
}

func TestGetActionWithHandoffLookAheadScoresToCellOptions(t *testing.T) {
	Convey("Given an END event that precedes a HOFF arrival at a neighbor", t, func() {
		a := New(2.52e-6, 0.06, 5e-6)
		var g gridfuncs.Grid
		cell := gridfuncs.Cell{Row: 3, Col: 3}
		toCell := gridfuncs.Cell{Row: 3, Col: 4}

		g[cell.Row][cell.Col][10] = true
		g[cell.Row][cell.Col][20] = true

		frep := gridfuncs.FeatureRep(&g)
		event := &eventgen.Event{
			EType:  gridfuncs.EEnd,
			Cell:   cell,
			Ch:     func() *int { i := 10; return &i }(),
			ToCell: &toCell,
		}

		Convey("GetAction still returns one of the in-use channels", func() {
			ch, nextFrep := a.GetAction(&State{Grid: &g, Frep: frep, Event: event})
			So(ch, ShouldNotBeNil)
			So(*ch, ShouldBeIn, []int{10, 20})
			So(nextFrep, ShouldNotBeNil)
		})
	})
}

func TestGetActionFallsBackWhenNoHandoffEligibility(t *testing.T) {
	Convey("Given a hand-off END whose arrival cell has no eligible channels at all", t, func() {
		a := New(2.52e-6, 0.06, 5e-6)
		var g gridfuncs.Grid
		cell := gridfuncs.Cell{Row: 3, Col: 3}
		toCell := gridfuncs.Cell{Row: 3, Col: 4}

		g[cell.Row][cell.Col][10] = true
		// Saturate every channel at toCell so get_eligible_chs there is always empty.
		for ch := 0; ch < gridfuncs.Channels; ch++ {
			g[toCell.Row][toCell.Col][ch] = true
		}

		frep := gridfuncs.FeatureRep(&g)
		event := &eventgen.Event{
			EType:  gridfuncs.EEnd,
			Cell:   cell,
			Ch:     func() *int { i := 10; return &i }(),
			ToCell: &toCell,
		}

		Convey("GetAction falls back to scoring the departure afterstate directly", func() {
			ch, nextFrep := a.GetAction(&State{Grid: &g, Frep: frep, Event: event})
			So(ch, ShouldNotBeNil)
			So(*ch, ShouldEqual, 10)
			So(nextFrep, ShouldNotBeNil)
		})
	})
}

func TestUpdateAdvancesAverageRewardAndWeights(t *testing.T) {
	Convey("Given an agent and two distinct states", t, func() {
		a := New(0.01, 0.06, 0.001)
		var g1 gridfuncs.Grid
		f1 := gridfuncs.FeatureRep(&g1)
		var g2 gridfuncs.Grid
		g2[0][0][0] = true
		f2 := gridfuncs.FeatureRep(&g2)

		s1 := &State{Grid: &g1, Frep: f1}
		s2 := &State{Grid: &g2, Frep: f2}

		Convey("Update changes the average reward estimate and the weights without panicking", func() {
			before := a.AvgReward()
			a.Update(s1, s2, 5)
			So(a.AvgReward(), ShouldNotEqual, before)
			So(a.net.Value(f1), ShouldNotEqual, float32(0))
		})
	})
}
