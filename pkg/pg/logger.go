package pg

import "context"

// logger is the slice of slog the migration path needs. Declaring it as a
// local interface keeps goose output routed through whatever structured
// logger the binary built, without importing the logger package here.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
