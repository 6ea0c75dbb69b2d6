package cannode

import (
	"testing"

	"github.com/CodedInternet/goservod/canbus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	Convey("without sending abort errors", t, func() {
		cmd := &command{}
		err := cmd.Abort()
		So(err, ShouldNotBeNil)
	})

	Convey("process tries multiple times before timing out", t, func() {
		// fresh bus and node per run so flags set in one branch cannot
		// leak into the next
		tBus, tNode := createTestNode()

		cmd := &command{
			node: tNode,
			msg: canbus.Msg{
				ID:  tNode.id,
				Cmd: cmdAllStop,
			},
		}
		tBus.txCount = 0
		_, err := cmd.process()
		So(err, ShouldEqual, ErrMaxRetries)
		So(tBus.txCount, ShouldEqual, maxRetries)

		Convey("aborting returns the correct error and does not send till max", func() {
			// need to create the channel manually else Abort will error
			cmd.abort = make(chan struct{})
			go cmd.Abort()
			tBus.txCount = 0
			_, err := cmd.process()
			So(err, ShouldEqual, ErrSendAbort)
			So(tBus.txCount, ShouldBeLessThan, maxRetries)
		})

		Convey("successful send with ACK returns without an err", func() {
			tBus.rxecho = true
			resp, err := cmd.process()
			So(err, ShouldBeNil)
			So(resp.ID, ShouldEqual, tNode.id)
			So(tBus.lastTx, ShouldResemble, cmd.msg)
		})

		Convey("a transport failure surfaces immediately", func() {
			tBus.txerr = true
			tBus.txCount = 0
			_, err := cmd.process()
			So(err, ShouldNotBeNil)
			So(tBus.txCount, ShouldEqual, 1)
		})
	})
}
