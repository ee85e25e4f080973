// Package httpserver runs an http.Handler with production timeouts and
// graceful shutdown.
//
//	srv := httpserver.New(":8080", httpserver.WithLogger(log))
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//
// Run returns when ctx is cancelled, after in-flight requests finished or the
// shutdown timeout elapsed. Start and Stop are available for callers that
// manage the lifecycle themselves. TLS is enabled with WithTLS or with the
// certificate files of Config.
package httpserver
