package valuenet

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"dcasim/internal/gridfuncs"
)

func TestForwardZeroWeights(t *testing.T) {
	Convey("A freshly constructed net values every frep at zero", t, func() {
		n := New(2.52e-6, 5e-6)
		var g gridfuncs.Grid
		f := gridfuncs.FeatureRep(&g)
		So(n.Value(f), ShouldEqual, float32(0))

		vals := n.Forward([]*gridfuncs.Frep{f, f})
		So(vals, ShouldResemble, []float32{0, 0})
	})
}

func TestBackwardUpdatesWeights(t *testing.T) {
	Convey("Given a net and two distinct freps", t, func() {
		n := New(0.01, 0.001)
		var g1 gridfuncs.Grid
		f1 := gridfuncs.FeatureRep(&g1)
		var g2 gridfuncs.Grid
		g2[0][0][0] = true
		f2 := gridfuncs.FeatureRep(&g2)

		Convey("Backward returns a finite TD error and changes the weights", func() {
			before := n.theta
			tdErr := n.Backward(f1, 5.0, 0.0, f2)
			So(IsNaN(tdErr), ShouldBeFalse)
			So(n.theta, ShouldNotResemble, before)
		})
	})
}
