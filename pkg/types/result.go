package types

import "fmt"

// outcome of a mutating file store call
// storage faults travel separately as errors, a Result only describes the lock/existence outcome
type Result int

const (
	ResultOK Result = iota
	ResultPermissionDenied
	ResultNotFound
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultPermissionDenied:
		return "permission_denied"
	case ResultNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// converts the result to its domain error, nil for ResultOK
func (r Result) Err() error {
	switch r {
	case ResultOK:
		return nil
	case ResultPermissionDenied:
		return ErrPermissionDenied
	case ResultNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("unknown result %d", int(r))
	}
}

// sentinel returned by size queries for files that do not exist
const SizeNotFound int64 = -1
