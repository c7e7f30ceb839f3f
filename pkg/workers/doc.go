// Package workers holds the reference task workers the binaries register:
// cache invalidation for retired model versions, scratch-table cleanup and
// the object-storage ingestion scanner.
//
// Each worker implements tasks.Worker. The dispatcher gives a run its open
// store session, the shared resources (database pool, Redis client, logger)
// and the execution lease; a worker acknowledges success by deleting its own
// task row inside the session. Failures fall in two classes: a plain error
// leaves the row for the next retry sweep, tasks.Fatal drops it for good.
//
// Heavy business logic stays out of this package. Workers here are
// infrastructure glue: they validate params, talk to one backing service
// and hand anything bigger to an injected interface such as Sink.
package workers
