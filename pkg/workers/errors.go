package workers

import "errors"

// Common errors
var (
	// ErrRedisUnavailable is returned when a run needs Redis but the runner
	// resources carry no client
	ErrRedisUnavailable = errors.New("redis client is not configured")

	// ErrObjectStoreNil is returned when a nil object store is provided
	ErrObjectStoreNil = errors.New("object store cannot be nil")

	// ErrSinkNil is returned when a nil ingest sink is provided
	ErrSinkNil = errors.New("ingest sink cannot be nil")

	// ErrEndpointEmpty is returned when an HTTP sink is built without a URL
	ErrEndpointEmpty = errors.New("sink endpoint cannot be empty")

	// ErrInvalidTableName is returned for table names that are not plain
	// (optionally schema-qualified) SQL identifiers
	ErrInvalidTableName = errors.New("invalid table name")

	// ErrMissingBucket is returned when ingestion params name no bucket
	ErrMissingBucket = errors.New("bucket is not configured")

	// ErrS3Config is returned when loading the object storage config fails
	ErrS3Config = errors.New("failed to load object storage config")
)
