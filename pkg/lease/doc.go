// Package lease provides named, TTL-bounded, owner-identified locks on top
// of Redis. A lease is a plain key holding a random owner token, taken with
// SET NX PX; extend and release compare the token server-side so an expired
// lease that another owner reclaimed can never be touched by the previous
// holder. The dispatcher leases "task-runner:{task_id}" around every task
// execution to guarantee at most one concurrent run per task.
package lease
