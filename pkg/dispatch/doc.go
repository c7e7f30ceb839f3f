// Package dispatch contains the two long-running loops of the task system:
// the queuer, which promotes eligible database rows into the shared queue,
// and the runner, which pops due entries and executes the matching worker
// under a per-task lease.
//
// Both loops are written against small consumer-side interfaces so they run
// unchanged on the in-memory store, queue and locker implementations in
// tests. The tasks-queuer and tasks-runner binaries wire in the PostgreSQL
// and Redis implementations.
//
// Failure handling is split in two. Anything scoped to one task (a worker
// error, a lost lease, a vanished row) is logged and the loop moves on; the
// durable row stays behind and a later sweep retries it. Anything that makes
// the store itself unusable ends the loop with an error so the supervisor
// can restart the process with fresh connections.
package dispatch
