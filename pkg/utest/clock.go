package utest

import "time"

// DefaultTicksPerSecond is the tick rate of the built-in clock.
const DefaultTicksPerSecond = 1000

// Clock is a monotonic tick source. Targets without a usable time package
// supply their own, typically backed by a hardware timer.
type Clock interface {
	Ticks() int64
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() int64

// Ticks calls f.
func (f ClockFunc) Ticks() int64 {
	return f()
}

type monotonicClock struct {
	start time.Time
	tps   int64
}

func newMonotonicClock(tps int64) *monotonicClock {
	return &monotonicClock{start: time.Now(), tps: tps}
}

func (c *monotonicClock) Ticks() int64 {
	d := time.Since(c.start)
	return int64(d/time.Second)*c.tps + int64(d%time.Second)*c.tps/int64(time.Second)
}

// stopwatch measures one invocation. A stopwatch without a clock is disabled
// and always reports zero.
type stopwatch struct {
	clock   Clock
	tps     int64
	started int64
}

func (s *stopwatch) enabled() bool {
	return s.clock != nil
}

func (s *stopwatch) start() {
	if s.clock == nil {
		return
	}
	s.started = s.clock.Ticks()
}

func (s *stopwatch) stop() time.Duration {
	if s.clock == nil {
		return 0
	}
	delta := s.clock.Ticks() - s.started
	if delta < 0 {
		delta = 0
	}
	return ticksToDuration(delta, s.tps)
}

// ticksToDuration converts ticks at tps ticks per second. tps must not exceed
// one tick per nanosecond.
func ticksToDuration(ticks, tps int64) time.Duration {
	secs := ticks / tps
	rem := ticks % tps
	return time.Duration(secs)*time.Second + time.Duration(rem*int64(time.Second)/tps)
}
