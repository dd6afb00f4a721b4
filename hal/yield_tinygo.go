//go:build tinygo

package hal

import "runtime"

// The TinyGo scheduler is cooperative. Without a yield at the boundary the
// SysTick and Timer3 goroutines never run once a thread owns the core.
var boundaryYield = runtime.Gosched
