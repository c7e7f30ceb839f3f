package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
)

// QueueObjectStorageIngestion is the queue name tasks for the ingestion
// scanner are created under.
const QueueObjectStorageIngestion = "object_storage_ingestion"

const defaultPageSize = 1000

// ObjectStore is the slice of the S3 API the ingestor uses.
type ObjectStore interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// IngestionParams describe one bucket scan.
type IngestionParams struct {
	Bucket         string `json:"bucket"`
	Prefix         string `json:"prefix"`
	OrganizationID string `json:"organization_id"`
	ModelID        string `json:"model_id"`
}

// ObjectStorageIngestor walks a bucket prefix and streams every object into
// the ingestion pipeline. Long scans extend the execution lease after each
// page so a slow bucket does not look like a dead runner.
type ObjectStorageIngestor struct {
	store    ObjectStore
	sink     Sink
	pageSize int32
}

// NewObjectStorageIngestor creates the ingestion worker.
func NewObjectStorageIngestor(store ObjectStore, sink Sink, opts ...IngestorOption) (*ObjectStorageIngestor, error) {
	if store == nil {
		return nil, ErrObjectStoreNil
	}
	if sink == nil {
		return nil, ErrSinkNil
	}

	options := &ingestorOptions{pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(options)
	}

	return &ObjectStorageIngestor{
		store:    store,
		sink:     sink,
		pageSize: options.pageSize,
	}, nil
}

// IngestorOption is a functional option for configuring the ingestor
type IngestorOption func(*ingestorOptions)

type ingestorOptions struct {
	pageSize int32
}

// WithPageSize sets how many object keys one listing call returns
func WithPageSize(n int32) IngestorOption {
	return func(o *ingestorOptions) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

func (w *ObjectStorageIngestor) QueueName() string { return QueueObjectStorageIngestion }

func (w *ObjectStorageIngestor) DelaySeconds() int { return 0 }

func (w *ObjectStorageIngestor) RetrySeconds() int { return 600 }

// Run pages through the bucket listing, streaming each object into the sink
// and extending the lease between pages. The task row is deleted only when
// the whole listing has been handed over, so a partial scan is retried from
// the top; the sink is expected to deduplicate.
func (w *ObjectStorageIngestor) Run(ctx context.Context, task *tasks.Task, session tasks.Session, res *tasks.Resources, lease tasks.Lease) error {
	var params IngestionParams
	if err := task.DecodeParams(&params); err != nil {
		return tasks.Fatal(err)
	}
	if params.Bucket == "" {
		return tasks.Fatal(ErrMissingBucket)
	}

	var objects int
	var totalBytes int64
	var token *string
	for {
		page, err := w.store.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(params.Bucket),
			Prefix:            aws.String(params.Prefix),
			ContinuationToken: token,
			MaxKeys:           aws.Int32(w.pageSize),
		})
		if err != nil {
			if isMissingBucket(err) {
				// The bucket is gone; no retry will bring it back.
				return tasks.Fatal(fmt.Errorf("list bucket %q: %w", params.Bucket, err))
			}
			return fmt.Errorf("list bucket %q: %w", params.Bucket, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			size, err := w.ingestObject(ctx, params, key)
			if err != nil {
				if isMissingObject(err) {
					// Deleted between listing and fetch; the scan goes on.
					res.Log().Debug("object vanished during scan",
						logger.TaskID(task.ID), "key", key)
					continue
				}
				return err
			}
			objects++
			totalBytes += size
		}

		// A lease that cannot be extended belongs to someone else now;
		// stop before the work is done twice.
		if err := lease.Extend(ctx); err != nil {
			return fmt.Errorf("extend lease after %d objects: %w", objects, err)
		}

		if !aws.ToBool(page.IsTruncated) {
			break
		}
		token = page.NextContinuationToken
	}

	res.Log().Info("bucket scan ingested",
		logger.TaskID(task.ID),
		logger.Worker(w.QueueName()),
		logger.Count(objects),
		"bytes", totalBytes)

	return session.DeleteTask(ctx, task.ID)
}

func (w *ObjectStorageIngestor) ingestObject(ctx context.Context, params IngestionParams, key string) (int64, error) {
	obj, err := w.store.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(params.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("get object %q: %w", key, err)
	}

	size := aws.ToInt64(obj.ContentLength)
	ingestErr := w.sink.Ingest(ctx, IngestObject{
		OrganizationID: params.OrganizationID,
		ModelID:        params.ModelID,
		Bucket:         params.Bucket,
		Key:            key,
		Size:           size,
		Body:           obj.Body,
	})
	closeErr := obj.Body.Close()
	if ingestErr != nil {
		return 0, fmt.Errorf("ingest object %q: %w", key, ingestErr)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("close object %q: %w", key, closeErr)
	}
	return size, nil
}

func isMissingBucket(err error) bool {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket"
}

func isMissingObject(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}
