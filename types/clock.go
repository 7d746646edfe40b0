package types

import "time"

// Clock supplies the current timepoint. Every mutating operation reads
// it exactly once, so a single logical operation never observes two
// different times.
type Clock interface {
	Now() uint64
}

// SystemClock reads unix seconds from the wall clock.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}
