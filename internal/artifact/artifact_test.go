package artifact_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/artifact"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/artifact/artifacttest"
)

func TestSaveAndLoadLocal(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"model.json", "model.json.gz"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			location := filepath.Join(t.TempDir(), "nested", name)
			want := artifacttest.Bundle()

			if err := artifact.Save(context.Background(), artifact.LocalStore{}, location, want); err != nil {
				t.Fatalf("save: %v", err)
			}

			raw, err := os.ReadFile(location)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			gzipped := len(raw) > 1 && raw[0] == 0x1f && raw[1] == 0x8b
			if gzipped != artifact.Compressed(location) {
				t.Fatalf("expected gzip=%v for %s", artifact.Compressed(location), name)
			}

			got, err := artifact.Load(context.Background(), artifact.LocalStore{}, location)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.ID != want.ID || !reflect.DeepEqual(got.Labels, want.Labels) || !reflect.DeepEqual(got.Schema, want.Schema) {
				t.Fatalf("metadata did not survive round trip: %+v", got)
			}
			if !reflect.DeepEqual(got.Forest, want.Forest) || !reflect.DeepEqual(got.Scaler, want.Scaler) {
				t.Fatalf("pipeline did not survive round trip")
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := artifact.Load(context.Background(), artifact.LocalStore{}, filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ok, err := artifact.LocalStore{}.Exists(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	if err != nil || ok {
		t.Fatalf("expected missing file to not exist, got %v %v", ok, err)
	}
}

func TestUnmarshalRejectsBadDocuments(t *testing.T) {
	t.Parallel()

	good, err := artifact.Marshal(artifacttest.Bundle(), false)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tests := []struct {
		name   string
		data   []byte
		expect string
	}{
		{name: "not json", data: []byte("\x80\x04pickle"), expect: "validate bundle"},
		{name: "truncated", data: good[:len(good)/2], expect: "validate bundle"},
		{name: "missing labels", data: []byte(strings.Replace(string(good), `"labels"`, `"names"`, 1)), expect: "document schema"},
		{name: "wrong format", data: []byte(strings.Replace(string(good), artifact.Format, "pickle", 1)), expect: "unexpected format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := artifact.Unmarshal(tt.data)
			if err == nil || !strings.Contains(err.Error(), tt.expect) {
				t.Fatalf("expected error containing %q, got %v", tt.expect, err)
			}
		})
	}
}

func TestValidateCrossChecks(t *testing.T) {
	t.Parallel()

	b := artifacttest.Bundle()
	b.Labels = b.Labels[:2]
	if err := b.Validate(); err == nil {
		t.Fatalf("expected label count mismatch to be rejected")
	}

	b = artifacttest.Bundle()
	b.Labels[2] = b.Labels[0]
	if err := b.Validate(); err == nil {
		t.Fatalf("expected duplicate labels to be rejected")
	}

	b = artifacttest.Bundle()
	b.Scaler.Mean = b.Scaler.Mean[:3]
	if err := b.Validate(); err == nil {
		t.Fatalf("expected scaler width mismatch to be rejected")
	}
}

func TestSaveInvalidLeavesPreviousArtifact(t *testing.T) {
	t.Parallel()

	location := filepath.Join(t.TempDir(), "model.json")
	if err := artifact.Save(context.Background(), artifact.LocalStore{}, location, artifacttest.Bundle()); err != nil {
		t.Fatalf("save: %v", err)
	}
	before, _ := os.ReadFile(location)

	bad := artifacttest.Bundle()
	bad.Labels = nil
	if err := artifact.Save(context.Background(), artifact.LocalStore{}, location, bad); err == nil {
		t.Fatalf("expected invalid bundle to be refused")
	}

	after, _ := os.ReadFile(location)
	if !bytes.Equal(before, after) {
		t.Fatalf("previous artifact was modified")
	}

	entries, _ := os.ReadDir(filepath.Dir(location))
	if len(entries) != 1 {
		t.Fatalf("expected no temp files to remain, found %d entries", len(entries))
	}
}

func TestParseS3(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location string
		bucket   string
		key      string
		wantErr  bool
	}{
		{location: "s3://models/aspirations/model.json.gz", bucket: "models", key: "aspirations/model.json.gz"},
		{location: "s3://models/model.json", bucket: "models", key: "model.json"},
		{location: "s3://models", wantErr: true},
		{location: "s3:///model.json", wantErr: true},
		{location: "model.json", wantErr: true},
	}

	for _, tt := range tests {
		bucket, key, err := artifact.ParseS3(tt.location)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseS3(%q): expected error", tt.location)
			}
			continue
		}
		if err != nil || bucket != tt.bucket || key != tt.key {
			t.Fatalf("ParseS3(%q): got %q %q %v", tt.location, bucket, key, err)
		}
	}
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Bucket+"/"+*in.Key] = data
	f.types[*in.Bucket+"/"+*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[*in.Bucket+"/"+*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3StoreThroughRouter(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	router := artifact.NewRouter(artifact.NewS3Store(fake))
	ctx := context.Background()
	location := "s3://models/aspirations/model.json.gz"

	ok, err := router.Exists(ctx, location)
	if err != nil || ok {
		t.Fatalf("expected object to be absent, got %v %v", ok, err)
	}
	if _, err := artifact.Load(ctx, router, location); !errors.Is(err, artifact.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := artifact.Save(ctx, router, location, artifacttest.Bundle()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if fake.types["models/aspirations/model.json.gz"] != "application/gzip" {
		t.Fatalf("unexpected content type %q", fake.types["models/aspirations/model.json.gz"])
	}

	ok, err = router.Exists(ctx, location)
	if err != nil || !ok {
		t.Fatalf("expected object to exist, got %v %v", ok, err)
	}

	got, err := artifact.Load(ctx, router, location)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got.Labels, artifacttest.Labels) {
		t.Fatalf("unexpected labels %v", got.Labels)
	}
}

func TestRouterWithoutS3(t *testing.T) {
	t.Parallel()

	router := artifact.NewRouter(nil)
	if _, err := router.Get(context.Background(), "s3://models/model.json"); err == nil {
		t.Fatalf("expected error when s3 is not configured")
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	b := artifacttest.Bundle()
	data, err := artifact.Marshal(b, true)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	s, err := artifact.Inspect(data)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !s.Valid || s.Problem != "" {
		t.Fatalf("expected a valid artifact, got problem %q", s.Problem)
	}
	if s.ID != b.ID || s.Trees != 2 || len(s.Features) != 14 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if !reflect.DeepEqual(s.Labels, artifacttest.Labels) {
		t.Fatalf("expected labels %v, got %v", artifacttest.Labels, s.Labels)
	}

	broken := bytes.Replace(mustMarshal(t, b), []byte(`"format":"aspirations-pipeline"`), []byte(`"format":"other"`), 1)
	s, err = artifact.Inspect(broken)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if s.Valid || s.Problem == "" || s.Trees != 2 {
		t.Fatalf("expected a readable but invalid summary, got %+v", s)
	}

	if _, err := artifact.Inspect([]byte("not json")); err == nil {
		t.Fatalf("expected error for non-json input")
	}
}

func mustMarshal(t *testing.T, b *artifact.Bundle) []byte {
	t.Helper()
	data, err := artifact.Marshal(b, false)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
