package share

import "errors"

// ErrShareIDConflict is returned by the store when every generated share id collided.
var ErrShareIDConflict = errors.New("share id collision: retries exhausted")
