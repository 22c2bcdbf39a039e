package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into coded domain errors:
//   - ErrNotFound: no record under the requested key
//   - ErrConflict: a uniqueness constraint (e.g. email) would be violated
//   - ErrInvalidState: the record cannot take the requested transition
//   - ErrUnavailable: the backing store could not be reached
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
