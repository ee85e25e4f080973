package async

import "errors"

var (
	// ErrTimeout is returned by AwaitWithTimeout when the future does not settle in time.
	ErrTimeout = errors.New("async: operation timed out")
	// ErrNoFutures is returned by WaitAny when called without futures.
	ErrNoFutures = errors.New("async: no futures provided")
	// ErrClosedChannel is returned by FromChan when the source channel closes without a value.
	ErrClosedChannel = errors.New("async: source channel closed without a result")
)
