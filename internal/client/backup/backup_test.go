package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/repositories/reminders"
	"github.com/dmitrijs2005/geokeeper/internal/client/services"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory and pages listings by pageSize.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
	putErr   error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), pageSize: 1000}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket := aws.ToString(in.Bucket) + "/"
	var keys []string
	for k := range f.objects {
		key := strings.TrimPrefix(k, bucket)
		if strings.HasPrefix(k, bucket) && strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		fmt.Sscanf(*in.ContinuationToken, "%d", &start)
	}
	end := min(start+f.pageSize, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(fmt.Sprintf("%d", end))
	}
	return out, nil
}

func sample(n int) []models.Reminder {
	out := make([]models.Reminder, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.Reminder{
			ID:        fmt.Sprintf("id%d", i),
			Title:     models.Ptr(fmt.Sprintf("title%d", i)),
			Location:  models.Ptr("somewhere"),
			Latitude:  models.Ptr(float64(i)),
			Longitude: models.Ptr(float64(-i)),
		})
	}
	return out
}

// recordingGeo records armed ids and fails for ids listed in fail.
type recordingGeo struct {
	mu    sync.Mutex
	armed []string
	fail  map[string]error
}

func (g *recordingGeo) Arm(_ context.Context, r models.Reminder) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail[r.ID]; err != nil {
		return err
	}
	g.armed = append(g.armed, r.ID)
	return nil
}

func newService(store ObjectStore, repoStore reminders.Store, opts ...Option) *Service {
	return newServiceWithGeo(store, repoStore, &recordingGeo{}, opts...)
}

func newServiceWithGeo(store ObjectStore, repoStore reminders.Store, geo Geofencer, opts ...Option) *Service {
	repo := services.NewReminderRepository(repoStore, logging.Nop())
	return NewService(store, "bucket", "snapshots/", repo, geo, logging.Nop(), opts...)
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s3c := newFakeS3()

	src := newService(s3c, reminders.NewMemoryStore(sample(3)...))
	key, err := src.Export(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "snapshots/"))
	assert.True(t, strings.HasSuffix(key, ".json"))

	dstStore := reminders.NewMemoryStore(sample(1)...)
	geo := &recordingGeo{}
	dst := newServiceWithGeo(s3c, dstStore, geo)

	n, err := dst.Import(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = dst.Import(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := dstStore.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(3), all, "import upserts by id")
	assert.Equal(t, []string{"id1", "id2", "id3", "id1", "id2", "id3"}, geo.armed)
}

func TestImport_ValidatesAndArmsEachRecord(t *testing.T) {
	ctx := context.Background()
	s3c := newFakeS3()
	s3c.objects["bucket/mixed"] = []byte(`{"snapshot":{"version":1,"reminders":[
		{"id":"x"},
		{"id":"","title":"t"},
		{"id":"","title":"no id","location":"park","latitude":1,"longitude":2},
		{"id":"denied","title":"d","location":"l","latitude":1,"longitude":2},
		{"id":"ok","title":"o","location":"l","latitude":3,"longitude":4}
	]}}`)

	store := reminders.NewMemoryStore()
	geo := &recordingGeo{fail: map[string]error{"denied": errors.New("permission denied")}}

	n, err := newServiceWithGeo(s3c, store, geo).Import(ctx, "mixed")
	assert.Equal(t, 2, n)

	var skippedErr *SkippedError
	require.ErrorAs(t, err, &skippedErr)
	require.Len(t, skippedErr.Skipped, 3)
	assert.Equal(t, "x", skippedErr.Skipped[0].ID)
	assert.ErrorIs(t, skippedErr.Skipped[0].Err, models.ErrMissingLocation)
	assert.NotEmpty(t, skippedErr.Skipped[1].ID)
	assert.ErrorIs(t, skippedErr.Skipped[1].Err, models.ErrMissingLocation)
	assert.Equal(t, "denied", skippedErr.Skipped[2].ID)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, r := range all {
		assert.NotEmpty(t, r.ID)
		require.NoError(t, models.Validate(r))
	}
	assert.Equal(t, "no id", *all[0].Title)
	assert.Equal(t, "ok", all[1].ID)
	assert.Equal(t, []string{all[0].ID, "ok"}, geo.armed)
}

func TestImport_StoreFaultStops(t *testing.T) {
	ctx := context.Background()
	s3c := newFakeS3()
	key, err := newService(s3c, reminders.NewMemoryStore(sample(2)...)).Export(ctx)
	require.NoError(t, err)

	store := reminders.NewMemoryStore()
	store.Fail(errors.New("disk full"))
	n, err := newService(s3c, store).Import(ctx, key)
	require.ErrorContains(t, err, "disk full")
	assert.Zero(t, n)
}

func TestExport_PlainSnapshotFormat(t *testing.T) {
	ctx := context.Background()
	s3c := newFakeS3()
	svc := newService(s3c, reminders.NewMemoryStore(sample(2)...))
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	key, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Contains(t, key, "20240501T100000Z-")

	var env envelope
	require.NoError(t, json.Unmarshal(s3c.objects["bucket/"+key], &env))
	require.NotNil(t, env.Snapshot)
	assert.Equal(t, 1, env.Snapshot.Version)
	assert.Len(t, env.Snapshot.Reminders, 2)
	assert.Nil(t, env.Sealed)
}

func TestExportImport_Encrypted(t *testing.T) {
	ctx := context.Background()
	s3c := newFakeS3()

	key, err := newService(s3c, reminders.NewMemoryStore(sample(2)...), WithPassphrase("pw")).Export(ctx)
	require.NoError(t, err)
	assert.NotContains(t, string(s3c.objects["bucket/"+key]), "title1")

	_, err = newService(s3c, reminders.NewMemoryStore()).Import(ctx, key)
	require.ErrorIs(t, err, ErrPassphraseRequired)

	_, err = newService(s3c, reminders.NewMemoryStore(), WithPassphrase("wrong")).Import(ctx, key)
	require.Error(t, err)

	store := reminders.NewMemoryStore()
	n, err := newService(s3c, store, WithPassphrase("pw")).Import(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExport_Failures(t *testing.T) {
	ctx := context.Background()

	faulty := reminders.NewMemoryStore()
	faulty.Fail(errors.New("Error"))
	_, err := newService(newFakeS3(), faulty).Export(ctx)
	require.ErrorContains(t, err, "Error")

	s3c := newFakeS3()
	s3c.putErr = errors.New("access denied")
	_, err = newService(s3c, reminders.NewMemoryStore()).Export(ctx)
	require.ErrorContains(t, err, "access denied")
}

func TestImport_Failures(t *testing.T) {
	ctx := context.Background()
	s3c := newFakeS3()
	svc := newService(s3c, reminders.NewMemoryStore())

	_, err := svc.Import(ctx, "missing")
	var noKey *types.NoSuchKey
	require.ErrorAs(t, err, &noKey)

	s3c.objects["bucket/bad"] = []byte("not json")
	_, err = svc.Import(ctx, "bad")
	require.Error(t, err)

	s3c.objects["bucket/future"] = []byte(`{"snapshot":{"version":99}}`)
	_, err = svc.Import(ctx, "future")
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestList_PagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s3c := newFakeS3()
	s3c.pageSize = 2
	s3c.objects["bucket/snapshots/a.json"] = nil
	s3c.objects["bucket/snapshots/c.json"] = nil
	s3c.objects["bucket/snapshots/b.json"] = nil
	s3c.objects["bucket/other/x.json"] = nil

	keys, err := newService(s3c, reminders.NewMemoryStore()).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"snapshots/c.json", "snapshots/b.json", "snapshots/a.json"}, keys)
}

func TestS3Client_SatisfiesObjectStore(t *testing.T) {
	var _ ObjectStore = (*s3.Client)(nil)

	c, err := NewS3Client(context.Background(), S3Config{
		Region: "us-east-1", BaseEndpoint: "http://localhost:9000", AccessKey: "a", SecretKey: "b",
	})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
