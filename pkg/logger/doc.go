// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// The package standardises structured logging across the client services by
// exposing a single factory - New - that creates a *slog.Logger configured by
// a set of Option functions:
//
//	log := logger.New(
//		logger.WithDevelopment("connectsphere"),
//		logger.WithAttr(slog.String("version", "1.0.0")),
//	)
//	log.Info("upload finished", logger.Filename("report.pdf"))
//
// Helper constructors such as Error, Component, Filename, etc. live in
// attr.go and return commonly-used slog.Attr instances to keep attribute
// naming consistent across the codebase.
package logger
