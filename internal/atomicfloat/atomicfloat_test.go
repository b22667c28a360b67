package atomicfloat

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadStore(t *testing.T) {
	Convey("A Float64 round-trips stored values, including negatives and zero", t, func() {
		f := New(3.25)
		So(f.Load(), ShouldEqual, 3.25)

		f.Store(-1.5)
		So(f.Load(), ShouldEqual, -1.5)

		f.Store(0)
		So(f.Load(), ShouldEqual, 0.0)
	})
}
