package workers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/dispatchkit/pkg/tasks"
	"github.com/dmitrymomot/dispatchkit/pkg/workers"
)

var (
	_ tasks.Worker          = (*workers.ModelVersionCacheInvalidator)(nil)
	_ tasks.Worker          = (*workers.TableDropper)(nil)
	_ tasks.Worker          = (*workers.ObjectStorageIngestor)(nil)
	_ workers.Sink          = (*workers.HTTPSink)(nil)
	_ workers.Sink          = (workers.SinkFunc)(nil)
	_ tasks.Session         = (*fakeSession)(nil)
	_ tasks.Lease           = (*fakeLease)(nil)
	_ workers.ObjectStore   = (*fakeObjectStore)(nil)
	_ redis.UniversalClient = (*fakeRedis)(nil)
)

func testTask(id int64, worker, params string) *tasks.Task {
	t := &tasks.Task{ID: id, WorkerName: worker, NumPushed: 1}
	if params != "" {
		t.Params = json.RawMessage(params)
	}
	return t
}

func testResources(r redis.UniversalClient) *tasks.Resources {
	return &tasks.Resources{
		Redis:  r,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// fakeSession records the statements and deletes a worker issues.
type fakeSession struct {
	mu      sync.Mutex
	execs   []string
	deletes []int64
	execErr error
}

func (s *fakeSession) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	s.execs = append(s.execs, sql)
	return pgconn.NewCommandTag("DROP TABLE"), nil
}

func (s *fakeSession) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeSession) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (s *fakeSession) DeleteTask(ctx context.Context, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, taskID)
	return nil
}

func (s *fakeSession) Commit(ctx context.Context) error { return nil }

func (s *fakeSession) Rollback(ctx context.Context) error { return nil }

func (s *fakeSession) acked(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.deletes {
		if d == id {
			return true
		}
	}
	return false
}

// fakeLease counts extensions and can be told to fail them.
type fakeLease struct {
	mu        sync.Mutex
	extends   int
	extendErr error
}

func (l *fakeLease) Name() string { return "task-runner:1" }

func (l *fakeLease) Extend(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.extends++
	return l.extendErr
}

func (l *fakeLease) Release(ctx context.Context) error { return nil }

func (l *fakeLease) extended() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.extends
}

// fakeRedis serves canned SCAN pages and records deletions. Everything else
// panics through the embedded nil interface, which is the point: these
// workers must touch nothing but SCAN and DEL.
type scanPage struct {
	keys   []string
	cursor uint64
}

type fakeRedis struct {
	redis.UniversalClient
	mu       sync.Mutex
	pages    []scanPage
	call     int
	patterns []string
	deleted  []string
	delErr   error
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, match)
	page := f.pages[f.call]
	f.call++
	return redis.NewScanCmdResult(page.keys, page.cursor, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return redis.NewIntResult(0, f.delErr)
	}
	f.deleted = append(f.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

// fakeObjectStore pages canned keys; continuation tokens are page indexes.
type fakeObjectStore struct {
	mu          sync.Mutex
	pages       [][]string
	objects     map[string]string
	missingKeys map[string]bool
	listErr     error
	listCalls   int
}

func (f *fakeObjectStore) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	idx := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		idx, _ = strconv.Atoi(tok)
	}
	f.listCalls++

	contents := make([]types.Object, 0, len(f.pages[idx]))
	for _, key := range f.pages[idx] {
		contents = append(contents, types.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(f.objects[key]))),
		})
	}

	out := &s3.ListObjectsV2Output{
		Contents:    contents,
		IsTruncated: aws.Bool(idx+1 < len(f.pages)),
	}
	if idx+1 < len(f.pages) {
		out.NextContinuationToken = aws.String(strconv.Itoa(idx + 1))
	}
	return out, nil
}

func (f *fakeObjectStore) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := aws.ToString(in.Key)
	if f.missingKeys[key] {
		return nil, &types.NoSuchKey{}
	}
	content := f.objects[key]
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader([]byte(content))),
		ContentLength: aws.Int64(int64(len(content))),
	}, nil
}

// memorySink collects ingested objects and their bodies.
type memorySink struct {
	mu      sync.Mutex
	keys    []string
	bodies  map[string]string
	objects map[string]workers.IngestObject
	failKey string
}

func newMemorySink() *memorySink {
	return &memorySink{
		bodies:  make(map[string]string),
		objects: make(map[string]workers.IngestObject),
	}
}

func (s *memorySink) Ingest(ctx context.Context, object workers.IngestObject) error {
	data, err := io.ReadAll(object.Body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failKey != "" && object.Key == s.failKey {
		return errors.New("pipeline rejected object")
	}
	s.keys = append(s.keys, object.Key)
	s.bodies[object.Key] = string(data)
	s.objects[object.Key] = object
	return nil
}

func (s *memorySink) ingested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.keys...)
}

func requireNotFatal(t *testing.T, err error) {
	t.Helper()
	if tasks.IsFatal(err) {
		t.Fatalf("error must leave the task for retry, got fatal: %v", err)
	}
}
