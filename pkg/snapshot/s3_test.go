package snapshot

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/morph/internal/errors"
)

// fakeS3 is an in-memory bucket that pages listings two keys at a time.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	lists   int
	fail    error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++

	bucket := aws.ToString(in.Bucket) + "/"
	var keys []string
	for k := range f.objects {
		key, ok := strings.CutPrefix(k, bucket)
		if ok && strings.HasPrefix(key, aws.ToString(in.Prefix)) && key > aws.ToString(in.ContinuationToken) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if len(keys) > 2 {
		keys = keys[:2]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[1])
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3Store(t *testing.T) {
	fake := newFakeS3()
	testStore(t, NewS3Store(fake, "bucket", "trees/"))

	if _, ok := fake.objects["bucket/trees/b"]; !ok {
		t.Error("object trees/b not written under prefix")
	}
}

func TestS3StoreListPages(t *testing.T) {
	fake := newFakeS3()
	s := NewS3Store(fake, "bucket", "p/")
	ctx := context.Background()
	for _, id := range []string{"e", "a", "d", "c", "b"} {
		if err := s.Put(ctx, id, []byte(id)); err != nil {
			t.Fatalf("Put(%s) error = %v", id, err)
		}
	}
	_, _ = fake.PutObject(ctx, &s3.PutObjectInput{Bucket: aws.String("bucket"), Key: aws.String("other/x"), Body: strings.NewReader("")})

	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := strings.Join(ids, ","); got != "a,b,c,d,e" {
		t.Errorf("List() = %s, want a,b,c,d,e", got)
	}
	if fake.lists != 3 {
		t.Errorf("ListObjectsV2 calls = %d, want 3", fake.lists)
	}
}

func TestS3StoreBackendFailure(t *testing.T) {
	fake := newFakeS3()
	fake.fail = stderrors.New("access denied")
	s := NewS3Store(fake, "bucket", "")

	if err := s.Put(context.Background(), "x", nil); !errors.HasCode(err, "S002") {
		t.Errorf("Put() error = %v, want S002", err)
	}
	_, err := s.Get(context.Background(), "x")
	if !errors.HasCode(err, "S002") || stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want S002", err)
	}
}
