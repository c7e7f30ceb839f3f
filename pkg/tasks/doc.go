// Package tasks defines the shared vocabulary of the background task
// dispatcher: the durable Task row, the Worker contract, the process-local
// Registry with its promotion timing Policy, and the Session, Lease and
// Resources values handed to workers at dispatch time.
//
// A Task lives in the tasks table until the worker that owns its queue name
// acknowledges completion by deleting the row inside the dispatch session.
// Between creation and completion the queuer promotes the task into the
// shared queue whenever its next-eligible time has passed:
//
//	next_eligible = coalesce(execute_after, creation_time)
//	              + delay_seconds
//	              + num_pushed * retry_seconds
//
// where delay_seconds and retry_seconds come from the worker registered for
// the task's queue name, and unknown names fall back to no delay with a
// 200 second retry step.
//
// Workers report one of three outcomes from Run: nil after deleting the row
// (done), a plain error (row survives, retried after backoff), or an error
// wrapped with Fatal (row is dropped, no retry).
package tasks
