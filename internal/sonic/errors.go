package sonic

import (
	"errors"
	"fmt"
)

// errUnknownChannel marks references to channels absent from a series.
var errUnknownChannel = errors.New("unknown channel")

// LoadError reports a window file that could not be turned into a usable
// series. The batch skips the window and continues.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// AlignmentError reports a degenerate mean wind vector. Callers fall back
// to the unrotated series.
type AlignmentError struct {
	Reason string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment: %s", e.Reason)
}

// FluxError reports that a channel lacked enough non-missing samples for
// flux computation. The flux and QC stages of the window are skipped.
type FluxError struct {
	Channel string
	Samples int
}

func (e *FluxError) Error() string {
	return fmt.Sprintf("flux: channel %s has %d non-missing samples, need at least 2", e.Channel, e.Samples)
}

// StatTestError reports a stationarity test that could not be executed for
// a channel. The outcome is recorded as skipped, never as a failure.
type StatTestError struct {
	Channel string
	Err     error
}

func (e *StatTestError) Error() string {
	return fmt.Sprintf("stationarity test for %s: %v", e.Channel, e.Err)
}

func (e *StatTestError) Unwrap() error { return e.Err }
