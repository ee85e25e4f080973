// Package logger provides structured logging utilities built on Go's standard slog package.
//
// Create loggers with the factory function and functional options:
//
//	log := logger.New(
//		logger.WithDevelopment("stormpath"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log := logger.New(
//		logger.WithProduction("stormpath"),
//		logger.WithOutput(os.Stderr),
//	)
//
// Attribute helpers follow the empty Attr pattern for nil safety, so calls
// like log.Error("msg", logger.Error(err)) need no explicit nil checks:
//
//	log.Warn("navigation blocked",
//		logger.Component("guard"),
//		logger.Route("admin"),
//		logger.Error(err),
//	)
//
// Discard returns a logger that drops everything; it is the default for
// every component that accepts a *slog.Logger.
package logger
