// Package async provides a generic Future primitive for asynchronous results.
//
// A Future settles exactly once and can be awaited by any number of goroutines.
// Futures are created by running work in the background (Async, Exec), by
// adapting a single-value channel (FromChan), or already settled (Resolved,
// Rejected) when the answer is known up front.
//
// # Usage
//
//	future := async.Async(ctx, 123, fetchUser)
//
//	// Do other work...
//
//	user, err := future.Await()
//
// Returning a known value without spawning a goroutine:
//
//	if cached != nil {
//		return async.Resolved(cached)
//	}
//
// Bounded waits:
//
//	user, err := future.AwaitWithTimeout(50 * time.Millisecond)
//	if errors.Is(err, async.ErrTimeout) {
//		log.Println("Operation timed out")
//	}
//
//	user, err := future.AwaitContext(ctx) // returns ctx.Err() when ctx is done first
//
// Abandoning a wait never cancels the computation itself; other waiters still
// receive the result.
//
// # Coordination Utilities
//
// WaitAll waits for every future and returns their values in order; WaitAny
// returns as soon as any future settles.
//
// # Errors
//
//   - ErrTimeout: AwaitWithTimeout exceeded its duration
//   - ErrNoFutures: WaitAny called without futures
//   - ErrClosedChannel: FromChan source closed without a value
package async
