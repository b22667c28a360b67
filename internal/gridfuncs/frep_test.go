package gridfuncs

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// incrementalVsScratch checks that deriving freps incrementally for every
// candidate channel agrees, element-wise, with computing the afterstate's
// frep from scratch -- and that grid is left unchanged by the call.
func incrementalVsScratch(t *testing.T, g *Grid, cell Cell, etype EType, chs []int) {
	t.Helper()
	before := *g
	astates := Afterstates(g, cell, etype, chs)
	preFrep := FeatureRep(g)
	freps := IncrementalFreps(g, preFrep, cell, etype, chs)

	So(*g, ShouldResemble, before)
	So(len(freps), ShouldEqual, len(astates))
	for i, astate := range astates {
		want := FeatureRep(astate)
		So(*freps[i], ShouldResemble, *want)
	}
}

func TestIncrementalFrepsEmptyGridNew(t *testing.T) {
	Convey("Call arrival on an empty grid", t, func() {
		var g Grid
		cell := Cell{Row: 2, Col: 3}
		chs := GetEligibleChs(&g, cell)
		So(len(chs), ShouldEqual, Channels)
		incrementalVsScratch(t, &g, cell, ENew, chs)
	})
}

func TestIncrementalFrepsSoleChannelEnd(t *testing.T) {
	Convey("Termination of the only channel in use", t, func() {
		var g Grid
		g[4][1][4] = true
		cell := Cell{Row: 4, Col: 1}
		chs := GetInuseChs(&g, cell)
		incrementalVsScratch(t, &g, cell, EEnd, chs)
	})
}

func TestIncrementalFrepsNeighborInUse(t *testing.T) {
	Convey("Arrival when focal cell and a neighbor already have channels in use", t, func() {
		var g Grid
		cell := Cell{Row: 0, Col: 0}
		g[0][0][4] = true
		g[0][1][5] = true
		chs := GetEligibleChs(&g, cell)
		So(chs, ShouldNotContain, 4)
		So(chs, ShouldNotContain, 5)
		incrementalVsScratch(t, &g, cell, ENew, chs)
	})
}

func TestFeatureRepEmptyGrid(t *testing.T) {
	Convey("An empty grid has zero used-counts and full eligibility everywhere", t, func() {
		var g Grid
		frep := FeatureRep(&g)
		for r := 0; r < Rows; r++ {
			for c := 0; c < Cols; c++ {
				for ch := 0; ch < Channels; ch++ {
					So(frep[r][c][ch], ShouldEqual, 0)
				}
				So(frep[r][c][Channels], ShouldEqual, float32(Channels))
			}
		}
	})
}

func TestFeatureRepChannelEverywhere(t *testing.T) {
	Convey("Given channel 0 in use at every cell", t, func() {
		var g Grid
		for r := 0; r < Rows; r++ {
			for c := 0; c < Cols; c++ {
				g[r][c][0] = true
			}
		}
		frep := FeatureRep(&g)

		Convey("each cell's used-count for channel 0 equals its distance-4 neighbor count minus self", func() {
			for r := 0; r < Rows; r++ {
				for c := 0; c < Cols; c++ {
					want := float32(len(Neighbors(4, r, c, false)))
					So(frep[r][c][0], ShouldEqual, want)
				}
			}
		})

		Convey("eligibility is Channels-1 everywhere", func() {
			for r := 0; r < Rows; r++ {
				for c := 0; c < Cols; c++ {
					So(frep[r][c][Channels], ShouldEqual, float32(Channels-1))
				}
			}
		})
	})
}

func TestFeatureRepSingleCell(t *testing.T) {
	Convey("Given a single (1,2,9) in use", t, func() {
		var g Grid
		r, c, ch := 1, 2, 9
		g[r][c][ch] = true
		frep := FeatureRep(&g)

		Convey("every distance-4 neighbor of (1,2) shows used-count 1 at channel 9", func() {
			for _, n := range Neighbors(4, r, c, false) {
				So(frep[n.Row][n.Col][ch], ShouldEqual, 1)
			}
			So(frep[r][c][ch], ShouldEqual, 0)
		})

		Convey("every distance-2 neighbor of (1,2), including self, loses one eligible channel", func() {
			lowered := map[Cell]bool{}
			for _, n := range Neighbors(2, r, c, true) {
				lowered[n] = true
				So(frep[n.Row][n.Col][Channels], ShouldEqual, float32(Channels-1))
			}
			for rr := 0; rr < Rows; rr++ {
				for cc := 0; cc < Cols; cc++ {
					if !lowered[Cell{Row: rr, Col: cc}] {
						So(frep[rr][cc][Channels], ShouldEqual, float32(Channels))
					}
				}
			}
		})
	})
}

func TestEligibilityCountMatchesEligibleChs(t *testing.T) {
	Convey("The eligibility feature equals the length of GetEligibleChs for every cell", t, func() {
		var g Grid
		g[3][3][7] = true
		g[2][2][8] = true
		frep := FeatureRep(&g)
		for r := 0; r < Rows; r++ {
			for c := 0; c < Cols; c++ {
				n := len(GetEligibleChs(&g, Cell{Row: r, Col: c}))
				So(frep[r][c][Channels], ShouldEqual, float32(n))
			}
		}
	})
}
