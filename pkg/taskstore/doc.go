// Package taskstore owns the durable side of the dispatcher: the tasks
// table in PostgreSQL. Its central operation is PromoteEligible, which runs
// the eligibility sweep as a single statement:
//
//	WITH eligible AS (
//	    SELECT id FROM tasks
//	    WHERE COALESCE(execute_after, creation_time)
//	          + delay(bg_worker_task)
//	          + num_pushed * retry(bg_worker_task) <= statement_timestamp()
//	    FOR UPDATE SKIP LOCKED
//	)
//	UPDATE tasks SET num_pushed = num_pushed + 1 ... RETURNING ...
//
// delay() and retry() are CASE expressions precomputed from the worker
// registry's timing policy at construction time. SKIP LOCKED makes a second
// concurrent sweep find nothing instead of blocking, so overlapping queuer
// instances are redundant rather than harmful. The queue push runs inside
// the same transaction through a callback; if it fails the bump rolls back
// and the tasks stay eligible.
//
// Memory mirrors the store contract in-process, including the row-lock and
// staged-session semantics, for tests.
package taskstore
