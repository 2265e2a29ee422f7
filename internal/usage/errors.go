package usage

import "errors"

// ErrLimitReached indicates the client used up its daily analyses.
var ErrLimitReached = errors.New("limit reached")
