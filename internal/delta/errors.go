package delta

import "errors"

// ErrAborted reports that a traversal callback asked to stop. It is a
// distinct outcome, not an internal failure: everything produced before the
// abort remains valid. The callback's own error is joined in and reachable
// through errors.Is and errors.As.
var ErrAborted = errors.New("traversal aborted by callback")

// ErrIterOver is the normal terminal signal of the lazy cursor: the current
// level (files, hunks of the current file, lines of the current hunk) is
// exhausted.
var ErrIterOver = errors.New("iteration complete")

// ErrUsage reports an invalid cursor operation ordering, such as asking for
// hunks before any file has been selected. It signals a caller bug, not a
// data problem.
var ErrUsage = errors.New("invalid iterator usage")

func abortError(cbErr error) error {
	return errors.Join(ErrAborted, cbErr)
}
