// Package clock provides a context-carried clock so that playback pacing
// can be driven by a mock clock in tests.
package clock

import (
	"context"

	"github.com/benbjohnson/clock"
)

type Clock = clock.Clock
type Mock = clock.Mock

type clockKeyType struct{}

var clockKey = clockKeyType{}

var realClock = clock.New()

// NewMock returns a mock clock whose current time starts at the Unix epoch.
func NewMock() *Mock {
	return clock.NewMock()
}

// WithMockClock embeds a mock clock in the context and returns it.
func WithMockClock(ctx context.Context) (context.Context, *Mock) {
	clk := clock.NewMock()
	return context.WithValue(ctx, clockKey, (Clock)(clk)), clk
}

// GetClock returns the clock embedded in the context, or a realtime clock
// when the context carries none.
func GetClock(ctx context.Context) Clock {
	clk := ctx.Value(clockKey)
	if clk == nil {
		return realClock
	}
	return clk.(Clock)
}
