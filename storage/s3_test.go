package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	puts    []string // keys in call order

	failAfter int // fail the Nth put (1-based); 0 never fails
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, *in.Key)
	if f.failAfter > 0 && len(f.puts) >= f.failAfter {
		return nil, errors.New("simulated put failure")
	}
	var buf []byte
	if in.Body != nil {
		buf, _ = io.ReadAll(in.Body)
	}
	f.objects[*in.Key] = buf
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; ok {
		return &s3.HeadObjectOutput{}, nil
	}
	return nil, awserr.New("NotFound", "not found", nil)
}

func (f *fakeS3) DeleteObject(in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func testClient(api S3API) *Client {
	c := NewClientWithAPI(api, "test-bucket", "eu-west-1")
	// deterministic keys
	base := time.UnixMilli(1700000000000)
	n := 0
	c.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Millisecond)
	}
	return c
}

func TestUploadReturnsURLsInInputOrder(t *testing.T) {
	api := newFakeS3()
	client := testClient(api)

	files := []File{
		{Name: "first.jpg", ContentType: "image/jpeg", Data: []byte("aaa")},
		{Name: "second.png", ContentType: "image/png", Data: []byte("bbb")},
		{Name: "third.jpg", ContentType: "image/jpeg", Data: []byte("ccc")},
	}

	urls, err := client.Upload(context.Background(), files, "public/p1")
	require.NoError(t, err)
	require.Len(t, urls, 3)

	for i, f := range files {
		assert.Contains(t, urls[i], f.Name, "urls[%d] must correspond to files[%d]", i, i)
		require.True(t, strings.HasPrefix(urls[i], "https://test-bucket.s3.eu-west-1.amazonaws.com/public/p1/"))

		// The object behind urls[i] holds files[i]'s bytes.
		key := strings.TrimPrefix(urls[i], "https://test-bucket.s3.eu-west-1.amazonaws.com/")
		assert.Equal(t, f.Data, api.objects[key], "object at urls[%d] must hold files[%d]'s content", i, i)
	}
}

func TestUploadIsAllOrNothing(t *testing.T) {
	api := newFakeS3()
	api.failAfter = 2
	client := testClient(api)

	files := []File{
		{Name: "a.jpg", Data: []byte("a")},
		{Name: "b.jpg", Data: []byte("b")},
		{Name: "c.jpg", Data: []byte("c")},
	}

	urls, err := client.Upload(context.Background(), files, "public/p1")
	require.Error(t, err)
	assert.Nil(t, urls, "a failed batch must not return partial URLs")
	assert.Len(t, api.puts, 2, "the failure must abort the remaining uploads")
}

func TestUploadNeverOverwrites(t *testing.T) {
	api := newFakeS3()
	client := testClient(api)

	// Freeze the clock so both uploads compute the same key.
	fixed := time.UnixMilli(1700000000000)
	client.now = func() time.Time { return fixed }

	_, err := client.Upload(context.Background(), []File{{Name: "same.jpg", Data: []byte("x")}}, "public/p1")
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), []File{{Name: "same.jpg", Data: []byte("y")}}, "public/p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestUploadEmptyBatch(t *testing.T) {
	client := testClient(newFakeS3())

	urls, err := client.Upload(context.Background(), nil, "public/p1")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestUploadHonorsContextCancellation(t *testing.T) {
	api := newFakeS3()
	client := testClient(api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Upload(ctx, []File{{Name: "a.jpg", Data: []byte("a")}}, "public/p1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, api.puts)
}

func TestObjectKeySanitizesName(t *testing.T) {
	client := testClient(newFakeS3())

	key := client.ObjectKey("public/p1", "weird name?.jpg")
	assert.NotContains(t, key, " ")
	assert.NotContains(t, key, "?")
	assert.True(t, strings.HasPrefix(key, "public/p1/"))

	key = client.ObjectKey("public/p1", "")
	assert.True(t, strings.HasSuffix(key, "_file"))
}

func TestPublicURL(t *testing.T) {
	client := testClient(newFakeS3())
	url := client.PublicURL("public/p1/123_a.jpg")
	assert.Equal(t, "https://test-bucket.s3.eu-west-1.amazonaws.com/public/p1/123_a.jpg", url)
	assert.Equal(t, fmt.Sprintf("%spublic/p1/123_a.jpg", client.BaseURL()), url)
}
