// Package taskqueue implements the shared task queue as a Redis sorted set:
// members are task ids, scores are push timestamps, so the oldest push drains
// first. Pushes are conditional (ZADD NX) making re-promotion of an
// already-queued task a no-op, and pops are blocking and multi-consumer safe
// (BZPOPMIN hands any given entry to exactly one caller).
//
// Memory provides the same contract in-process for tests and local runs.
package taskqueue
