package utils

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	goutils "go.viam.com/utils"

	"github.com/ggldnl/hexviz/logging"
)

// SlowLogger warns periodically, backing off from 2s to 5s between messages, until the
// returned func is called or ctx is done. It is used to surface long running loads.
func SlowLogger(ctx context.Context, clk clock.Clock, msg string, logger logging.Logger, keysAndValues ...interface{}) func() {
	slowTicker := clk.Ticker(2 * time.Second)
	firstTick := true

	ctxWithCancel, cancel := context.WithCancel(ctx)
	startTime := clk.Now()
	goutils.PanicCapturingGo(func() {
		for {
			select {
			case <-slowTicker.C:
				elapsed := clk.Since(startTime).Round(time.Second).String()
				fields := append(append([]interface{}{}, keysAndValues...), "time_elapsed", elapsed)
				logger.Warnw(msg, fields...)
				if firstTick {
					slowTicker.Reset(3 * time.Second)
					firstTick = false
				} else {
					slowTicker.Reset(5 * time.Second)
				}
			case <-ctxWithCancel.Done():
				return
			}
		}
	})
	return func() { slowTicker.Stop(); cancel() }
}
