package dashboard

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"dcasim/internal/gridfuncs"
	"dcasim/internal/stats"
)

func TestSnapshotReflectsGridAndStats(t *testing.T) {
	Convey("Given a grid with known occupancy and some recorded stats", t, func() {
		var g gridfuncs.Grid
		g[0][0][5] = true
		g[0][0][6] = true
		g[2][2][1] = true

		st := stats.New()
		st.EventArrivalNew()
		st.EventRejectNew()
		st.SetAvgReward(7.5)

		srv := New(":0", &g, st)

		Convey("snapshot reports per-cell counts and stats consistently", func() {
			snap := srv.snapshot()
			So(snap.OccupiedPerCell[0][0], ShouldEqual, 2)
			So(snap.OccupiedPerCell[2][2], ShouldEqual, 1)
			So(snap.OccupiedPerCell[1][1], ShouldEqual, 0)
			So(snap.ArrivalsNew, ShouldEqual, int64(1))
			So(snap.BlockProbNew, ShouldEqual, 1.0)
			So(snap.AvgReward, ShouldEqual, 7.5)

			Convey("and marshals to JSON without error", func() {
				b, err := marshalIndented(snap)
				So(err, ShouldBeNil)
				So(len(b), ShouldBeGreaterThan, 0)
			})
		})
	})
}
