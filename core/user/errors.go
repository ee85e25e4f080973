package user

import "errors"

// ErrSessionEnded rejects fetches that were in flight when the session ended.
var ErrSessionEnded = errors.New("user: session ended during fetch")
