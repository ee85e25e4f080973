// Package event provides a typed, synchronous event emitter.
//
// A Bus delivers each emitted event to every handler subscribed to its name,
// in subscription order, on the emitting goroutine. Emit returns only after
// all handlers have run, so state changed before emitting is visible to every
// listener.
//
// # Basic Usage
//
//	bus := event.NewBus(event.WithLogger(logger))
//
//	unsubscribe := bus.Subscribe("$currentUser", func(ctx context.Context, evt event.Event) {
//		logger.Info("user loaded", "payload", evt.Payload)
//	})
//	defer unsubscribe()
//
//	bus.Emit(ctx, "$currentUser", u)
//
// Typed subscriptions skip payloads of a different type:
//
//	event.On(bus, names.CurrentUser, func(ctx context.Context, u *user.User) {
//		// ...
//	})
//
// # Event Names
//
// Names holds the configurable event names used across the SDK. DefaultNames
// returns the conventional values ($currentUser, $notLoggedin, ...); every
// field can be overridden through the environment.
//
// # Failure Isolation
//
// A panicking handler is recovered and logged; the remaining handlers still
// run. Unsubscribe handles are idempotent and safe to call from inside a
// handler.
package event
