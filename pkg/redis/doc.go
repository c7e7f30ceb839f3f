// Package redis provides convenient helpers for connecting to the Redis
// server the dispatcher's queue and lease service live on.
//
// The package wraps the go-redis client and adds:
//
//   - Robust `Connect` which retries the connection using the supplied
//     configuration, so a runner starting before Redis does not die on boot.
//   - A health-check helper to integrate Redis into the readiness probe.
//
// Configuration is described by the `Config` struct whose fields are
// populated from environment variables via github.com/caarlos0/env.
//
// # Usage
//
// Connect with auto-retry:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	ctx := context.Background()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // handle error, probably terminate the application
//	}
//	defer client.Close()
//
// Register a health-check in the ops HTTP server:
//
//	checker := redis.Healthcheck(client)
//	if err := checker(ctx); err != nil {
//	    // redis is not healthy
//	}
//
// # Errors
//
// The package defines several sentinel errors (e.g. ErrRedisNotReady) that
// wrap the underlying go-redis errors using errors.Join. This makes it easy
// to compare and unwrap.
//
// # See Also
//
//   - https://github.com/redis/go-redis – underlying driver
package redis
