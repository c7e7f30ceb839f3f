// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11` to
// deliver a convenient API that:
//
//   - Loads values from one or multiple `.env` files (fallback to the default
//     `.env` in the current working directory).
//   - Parses the environment into any Go struct using field tags.
//   - Caches each successfully loaded configuration type so it is only parsed
//     once for the lifetime of the process.
//   - Exposes a helper that panics on failure (`MustLoad`) for settings the
//     process cannot start without.
//
// # Architecture
//
// Internally the package keeps a singleton cache that stores parsed struct
// copies keyed by their fully-qualified type name. Each key also holds a
// `sync.Once` instance guaranteeing the expensive parsing work is executed at
// most once per configuration type even when accessed from multiple
// goroutines concurrently.
//
// The caching matters here because the queuer and runner binaries assemble
// their dependencies in several places (database pool, Redis client, logger,
// dispatch loops) and each place loads its own config struct. Every load of
// the same type observes identical values.
//
// # Usage
//
// Create a struct describing one concern and annotate its fields with `env`
// tags:
//
//	type PostgresConfig struct {
//	    URL         string        `env:"DATABASE_URL,required"`
//	    MaxConns    int32         `env:"DATABASE_MAX_CONNS" envDefault:"4"`
//	    ConnTimeout time.Duration `env:"DATABASE_CONN_TIMEOUT" envDefault:"10s"`
//	}
//
// Optionally load named `.env` files first, then populate the struct:
//
//	func main() {
//	    if err := config.LoadEnv("./deploy/.env.runner"); err != nil {
//	        log.Fatalf("loading env: %v", err)
//	    }
//
//	    var cfg PostgresConfig
//	    if err := config.Load(&cfg); err != nil {
//	        log.Fatalf("parsing env: %v", err)
//	    }
//	}
//
// Subsequent calls to `config.Load(&cfg)` are served from the in-memory cache
// without re-parsing.
//
// # Error Handling
//
// The package defines sentinel errors that can be compared with `errors.Is`:
//
//   - `ErrParsingConfig`   – failed to parse env vars into struct.
//   - `ErrLoadingEnvFiles` – a named .env file could not be read.
//   - `ErrConfigNotLoaded` – requested config type has not been loaded yet.
//   - `ErrNilPointer`      – nil pointer passed to `Load`/`MustLoad`.
//
// # Testing Helpers
//
// Use `ResetCache()` to clear the global cache between tests that mutate the
// process environment.
package config
