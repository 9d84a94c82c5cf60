package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tailor/internal/shared/storage/object"
)

// fakeS3 keeps objects in memory, keyed by bucket-relative key.
type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStoreRoundTrip(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, "artifacts", "/tailor/")
	ctx := context.Background()

	key, size, err := store.Put(ctx, "session-1", "cover_letter_analyst.docx", "", strings.NewReader("docx"))
	require.NoError(t, err)
	assert.EqualValues(t, 4, size)
	require.Len(t, fake.puts, 1)

	put := fake.puts[0]
	assert.Equal(t, "artifacts", aws.ToString(put.Bucket))
	assert.Equal(t, "tailor/"+key, aws.ToString(put.Key))
	assert.Equal(t, "application/octet-stream", aws.ToString(put.ContentType))
	assert.Equal(t, s3types.ServerSideEncryptionAes256, put.ServerSideEncryption)
	assert.Contains(t, aws.ToString(put.ContentDisposition), "cover_letter_analyst.docx")

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "docx", string(body))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.True(t, errors.Is(err, object.ErrNotFound))
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Options{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "session/resume.docx", want: "session/resume.docx"},
		{name: "simple prefix", prefix: "tailor", key: "session/resume.docx", want: "tailor/session/resume.docx"},
		{name: "prefix slashes trimmed", prefix: "/tailor/", key: "/session/resume.docx", want: "tailor/session/resume.docx"},
		{name: "empty key", prefix: "tailor", key: "", want: "tailor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWithClient(nil, "b", tt.prefix)
			assert.Equal(t, tt.want, s.objectKey(tt.key))
		})
	}
}
