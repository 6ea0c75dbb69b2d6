package servo

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestScale(t *testing.T) {
	Convey("endpoints map onto the output range exactly", t, func() {
		So(Scale(0, 100, 1500, 2400, 0), ShouldEqual, 1500)
		So(Scale(0, 100, 1500, 2400, 100), ShouldEqual, 2400)
		So(Scale(-100, 0, 600, 1500, -100), ShouldEqual, 600)
		So(Scale(-100, 0, 600, 1500, 0), ShouldEqual, 1500)
	})

	Convey("intermediate values truncate toward zero", t, func() {
		// 50 * 900 / 100 = 450
		So(Scale(0, 100, 1500, 2400, 50), ShouldEqual, 1950)
		// 33 * 900 / 100 = 297
		So(Scale(0, 100, 1500, 2400, 33), ShouldEqual, 1797)
		// -40: 60 * 900 / 100 = 540
		So(Scale(-100, 0, 600, 1500, -40), ShouldEqual, 1140)
	})

	Convey("pulse readings map back to percentages", t, func() {
		So(Scale(1500, 2400, 0, 100, 1950), ShouldEqual, 50)
		So(Scale(600, 1500, -100, 0, 600), ShouldEqual, -100)
		So(Scale(600, 1500, -100, 0, 1140), ShouldEqual, -40)
	})

	Convey("the product is widened before dividing", t, func() {
		// large enough to overflow a 32-bit intermediate
		So(Scale(0, 100000, 0, 100000, 70000), ShouldEqual, 70000)
	})
}
