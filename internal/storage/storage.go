// Package storage reads and writes objects addressed by file:// or s3:// URIs.
// Shard directories stay on local disk (or a mounted volume); result documents
// and fetched market lists may live in a bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3iface is the minimal subset of s3 client methods we use; allows test fakes.
type s3iface interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// newS3Client constructs an s3 client; overridden in tests.
// Env support for MinIO: AWS_ENDPOINT_URL_S3, AWS_S3_FORCE_PATH_STYLE.
var newS3Client = func(ctx context.Context) (s3iface, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := os.Getenv("AWS_ENDPOINT_URL_S3"); ep != "" {
			o.BaseEndpoint = aws.String(ep)
		}
		if strings.EqualFold(os.Getenv("AWS_S3_FORCE_PATH_STYLE"), "true") {
			o.UsePathStyle = true
		}
	})
	return client, nil
}

func parseS3(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", errors.New("invalid s3 uri")
	}
	return
}

// Open returns a ReadCloser and (if known) size for a file:// or s3:// URI.
// A bare path is treated as a local file.
func Open(ctx context.Context, uri string) (io.ReadCloser, int64, error) {
	if strings.HasPrefix(uri, "file://") || !strings.Contains(uri, "://") {
		p := strings.TrimPrefix(uri, "file://")
		f, err := os.Open(p)
		if err != nil {
			return nil, 0, err
		}
		st, _ := f.Stat()
		var sz int64
		if st != nil {
			sz = st.Size()
		}
		return f, sz, nil
	}
	b, k, err := parseS3(uri)
	if err != nil {
		return nil, 0, err
	}
	cl, err := newS3Client(ctx)
	if err != nil {
		return nil, 0, err
	}
	out, err := cl.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(b), Key: aws.String(k)})
	if err != nil {
		return nil, 0, err
	}
	var sz int64
	if out.ContentLength != nil {
		sz = *out.ContentLength
	}
	return out.Body, sz, nil
}

// Put writes body to the given URI in one shot. For s3:// it streams through
// the sdk uploader; for file:// it writes to a local file, creating parent
// directories as needed.
func Put(ctx context.Context, uri string, body io.Reader) error {
	if strings.HasPrefix(uri, "file://") || !strings.Contains(uri, "://") {
		p := strings.TrimPrefix(uri, "file://")
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		f, err := os.Create(p)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, body); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	b, k, err := parseS3(uri)
	if err != nil {
		return err
	}
	cl, err := newS3Client(ctx)
	if err != nil {
		return err
	}
	if real, ok := cl.(*s3.Client); ok {
		up := manager.NewUploader(real)
		_, err = up.Upload(ctx, &s3.PutObjectInput{Bucket: aws.String(b), Key: aws.String(k), Body: body})
		return err
	}
	// Fakes don't satisfy *s3.Client; fall back to a buffered PutObject.
	buf, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	_, err = cl.PutObject(ctx, &s3.PutObjectInput{Bucket: aws.String(b), Key: aws.String(k), Body: bytes.NewReader(buf)})
	return err
}

// Create returns a Writer/Closer pair for the given URI. For s3:// the content
// is buffered and uploaded on Close (simple and safe for one-shot documents;
// nothing is visible remotely until Close succeeds).
func Create(ctx context.Context, uri string) (io.Writer, io.Closer, error) {
	if strings.HasPrefix(uri, "file://") || !strings.Contains(uri, "://") {
		p := strings.TrimPrefix(uri, "file://")
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.Create(p)
		if err != nil {
			return nil, nil, err
		}
		return f, f, nil
	}
	if _, _, err := parseS3(uri); err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	done := false
	return &buf, closerFunc(func() error {
		if done {
			return nil
		}
		done = true
		return Put(ctx, uri, bytes.NewReader(buf.Bytes()))
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
