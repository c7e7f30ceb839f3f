// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// The package standardises structured logging across the queuer and runner
// binaries by exposing a single factory, New, that creates a *slog.Logger
// configured by a set of Option functions. These options allow you to:
//
//   • Select an output format (text or json)
//   • Set the minimum log level
//   • Send output to a size-rotated file instead of stdout
//   • Supply default slog.Attr values applied to every record
//   • Register ContextExtractor callbacks that inject attributes pulled from a
//     context value every time Handle is invoked.
//
// # Architecture
//
// Logger builds a decorated slog.Handler. First, New determines the concrete
// slog.Handler implementation, slog.NewTextHandler or slog.NewJSONHandler,
// based on the configured Format. It then wraps the handler with
// LogHandlerDecorator which is responsible for executing any registered
// ContextExtractor callbacks before delegating to the underlying handler.
// File output goes through lumberjack so long-running runners never fill a
// disk with a single unbounded log file.
//
// Helper constructors such as TaskID, Worker, Duration and Error live in
// attr.go and return commonly-used slog.Attr instances to keep attribute
// naming consistent across the codebase.
//
// # Usage
//
//	import "github.com/dmitrymomot/dispatchkit/pkg/logger"
//
//	func main() {
//	    cfg := config.Load[logger.Config]()
//	    log := logger.New(append(cfg.Options(), logger.WithService("tasks-runner"))...)
//	    logger.SetAsDefault(log)
//
//	    log.InfoContext(ctx, "task completed",
//	        logger.TaskID(42),
//	        logger.Worker("delete_db_table"),
//	        logger.Duration(time.Since(start)),
//	    )
//	}
//
// # Configuration
//
// Config carries the LOG_* environment variables shared by both binaries:
// LOG_LEVEL, LOG_FORMAT, LOG_FILE, LOG_FILE_MAX_SIZE_MB and LOG_FILE_BACKUPS.
// Config.Options translates them into factory options, so a binary can layer
// its own WithService or WithAttr on top.
//
// # Error Handling
//
// Helper functions Error and Errors produce attributes only when the supplied
// error value is non-nil allowing calls like:
//
//	log.Info("operation succeeded", logger.Error(err))
//
// without an additional nil check.
package logger
