package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStatus(t *testing.T) {
	Convey("Given the outcome of an operation", t, func() {
		Convey("Then a nil error maps to ok", func() {
			So(Status(nil), ShouldEqual, "ok")
		})

		Convey("Then any error maps to error", func() {
			So(Status(errors.New("boom")), ShouldEqual, "error")
		})
	})
}

func TestToolCalls(t *testing.T) {
	Convey("Given the tool call counter", t, func() {
		counter := Metrics.ToolCalls.WithLabelValues("metrics_test_tool", "ok")
		before := testutil.ToFloat64(counter)

		Convey("When a call is recorded", func() {
			counter.Inc()

			Convey("Then the counter increases by one", func() {
				So(testutil.ToFloat64(counter), ShouldEqual, before+1)
			})
		})
	})
}
