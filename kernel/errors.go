package kernel

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

var (
	// ErrRange reports a period or priority outside its accepted range.
	ErrRange = errors.New("rtk: value out of range")

	ErrTooManyThreads = errors.New("rtk: thread pool full")
	ErrLaunched       = errors.New("rtk: kernel already launched")
	ErrNoThreads      = errors.New("rtk: no threads to launch")
)

func inRange[T constraints.Integer](v, lo, hi T) bool {
	return v >= lo && v <= hi
}

func checkRange[T constraints.Integer](what string, v, lo, hi T) error {
	if inRange(v, lo, hi) {
		return nil
	}
	return fmt.Errorf("%s %d not in [%d, %d]: %w", what, v, lo, hi, ErrRange)
}
