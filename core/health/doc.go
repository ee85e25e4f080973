// Package health provides liveness and readiness handlers.
//
//	r.Get("/health/live", health.Liveness())
//	r.Get("/health/ready", health.Readiness(log, redis.Healthcheck(rdb)))
//
// Dependency checks follow the func(context.Context) error signature.
package health
