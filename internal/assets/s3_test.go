package assets

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	dom "vidtube/internal/domain"
)

type fakeS3 struct {
	putErr   error
	puts     []*s3.PutObjectInput
	bodies   []string
	deleted  []string
	deadline bool
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	_, f.deadline = ctx.Deadline()
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, string(b))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func tempFile(t *testing.T, name, body string) dom.UploadedFile {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return dom.UploadedFile{FieldName: "avatar", FilePath: p, SizeBytes: int64(len(body))}
}

func TestPublicBaseURL(t *testing.T) {
	require.Equal(t, "https://cdn.example.com", publicBaseURL(Config{PublicBaseURL: "https://cdn.example.com/"}))
	require.Equal(t, "http://minio:9000/media", publicBaseURL(Config{Endpoint: "http://minio:9000", Bucket: "media"}))
	require.Equal(t, "https://media.s3.eu-west-1.amazonaws.com", publicBaseURL(Config{Bucket: "media", Region: "eu-west-1"}))
}

func TestS3Store_Upload(t *testing.T) {
	api := &fakeS3{}
	store := newS3Store(api, Config{Bucket: "media", PublicBaseURL: "https://cdn.test", UploadTimeout: time.Second})
	store.now = func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) }

	url, err := store.Upload(context.Background(), tempFile(t, "me.PNG", "pixels"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.test/avatar/2026/03/07/"), url)
	require.True(t, strings.HasSuffix(url, ".png"), url)

	require.Len(t, api.puts, 1)
	in := api.puts[0]
	require.Equal(t, "media", aws.ToString(in.Bucket))
	require.Equal(t, "image/png", aws.ToString(in.ContentType))
	require.Equal(t, int64(6), aws.ToInt64(in.ContentLength))
	require.Equal(t, "pixels", api.bodies[0])
	require.True(t, api.deadline, "upload runs under a timeout")

	again, err := store.Upload(context.Background(), tempFile(t, "me.png", "pixels"))
	require.NoError(t, err)
	require.NotEqual(t, url, again)
}

func TestS3Store_UploadErrors(t *testing.T) {
	api := &fakeS3{putErr: errors.New("503 slow down")}
	store := newS3Store(api, Config{Bucket: "media", PublicBaseURL: "https://cdn.test"})

	_, err := store.Upload(context.Background(), tempFile(t, "a.bin", "x"))
	require.ErrorContains(t, err, "slow down")

	_, err = store.Upload(context.Background(), dom.UploadedFile{FieldName: "avatar"})
	require.ErrorIs(t, err, dom.ErrValidation)

	_, err = store.Upload(context.Background(), dom.UploadedFile{FieldName: "avatar", FilePath: "/does/not/exist", SizeBytes: 3})
	require.Error(t, err)
}

func TestS3Store_Delete(t *testing.T) {
	api := &fakeS3{}
	store := newS3Store(api, Config{Bucket: "media", PublicBaseURL: "https://cdn.test"})
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "https://cdn.test/avatar/2026/03/07/abc.png"))
	require.NoError(t, store.Delete(ctx, "https://elsewhere.test/avatar/x.png"))
	require.NoError(t, store.Delete(ctx, ""))
	require.Equal(t, []string{"avatar/2026/03/07/abc.png"}, api.deleted)
}

func TestNewS3Store(t *testing.T) {
	store, err := NewS3Store(context.Background(), Config{
		Bucket: "media", Region: "us-east-1", Endpoint: "http://localhost:9000",
		AccessKey: "minio", SecretKey: "minio123", UsePathStyle: true, MaxAttempts: 2,
	})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/media", store.baseURL)
}
