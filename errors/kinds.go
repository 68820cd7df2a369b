package errors

import (
	"errors"
	"fmt"
)

// The seven error kinds the pipeline distinguishes between. Each is a
// wrapped sentinel type so callers use errors.Is/errors.As rather than
// string matching, the same pattern UnretriableError/ObjectNotFoundError
// use above.

type kindError struct {
	kind  string
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *kindError) Unwrap() error {
	return e.cause
}

func (e *kindError) Is(target error) bool {
	other, ok := target.(*kindError)
	return ok && other.kind == e.kind
}

func newKind(kind string) func(string, ...error) error {
	return func(msg string, cause ...error) error {
		var c error
		if len(cause) > 0 {
			c = cause[0]
		}
		return &kindError{kind: kind, msg: msg, cause: c}
	}
}

// ProbeFailure: the Media Prober could not extract keyframes/duration
// from a source file (ffprobe exited non-zero, produced unparseable
// output, or the file has no video stream).
var ProbeFailure = newKind("ProbeFailure")

// NoSegments: fewer than 2 segment boundaries were derived from a probed
// file, so 0 output segments would result.
var NoSegments = newKind("NoSegments")

// EncodeFailure: the external AV encoder failed to produce the expected
// fMP4 fragment for a segment.
var EncodeFailure = newKind("EncodeFailure")

// MalformedFragment: the box walk over an encoder's temp output never
// found a moof box.
var MalformedFragment = newKind("MalformedFragment")

// IOFailure: a Storage, Queue or State Repository transport call failed.
var IOFailure = newKind("IOFailure")

// PartialEnqueue: the orchestrator persisted a Video Status Record but
// failed to enqueue all N segment jobs after exhausting retries.
var PartialEnqueue = newKind("PartialEnqueue")

// StaleState: a worker tried to act on a Video Status Record that's
// already gone (another worker's finalize won the race, or a redelivered
// job arrived after cleanup). Treated as benign by callers.
var StaleState = newKind("StaleState")

func isKind(err error, kind string) bool {
	var ke *kindError
	if !errors.As(err, &ke) {
		return false
	}
	return ke.kind == kind
}

func IsProbeFailure(err error) bool      { return isKind(err, "ProbeFailure") }
func IsNoSegments(err error) bool        { return isKind(err, "NoSegments") }
func IsEncodeFailure(err error) bool     { return isKind(err, "EncodeFailure") }
func IsMalformedFragment(err error) bool { return isKind(err, "MalformedFragment") }
func IsIOFailure(err error) bool         { return isKind(err, "IOFailure") }
func IsPartialEnqueue(err error) bool    { return isKind(err, "PartialEnqueue") }
func IsStaleState(err error) bool        { return isKind(err, "StaleState") }
