//go:build !tinygo

package hal

// boundaryYield is nil on the host: timer goroutines are preempted by the Go
// scheduler and pend their lines without help.
var boundaryYield func()
