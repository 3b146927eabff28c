// Package logger provides structured logging for taskbridge using zerolog.
//
// Loggers take map-based fields so call sites read the same everywhere:
//
//	log := logger.Get("taskbridge")
//	log.Info("application started", logger.Fields("phase", "startup"))
//
// Console output is meant for local development; JSON output for workers
// running under a process supervisor.
package logger
