package fsxs3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/fsx"
)

// S3FileSystem implements fsx.FileSystem backed by an S3 bucket
type S3FileSystem struct {
	client *s3.Client
	bucket string
	prefix string // Optional key prefix for all objects
}

// NewS3FileSystem creates a new S3-backed file system
func NewS3FileSystem(client *s3.Client, bucket, prefix string) *S3FileSystem {
	return &S3FileSystem{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (fs *S3FileSystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	rc, err := fs.ReadFileStream(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

func (fs *S3FileSystem) ReadFileStream(ctx context.Context, p string) (io.ReadCloser, error) {
	out, err := fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("file not found: %s", p)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return out.Body, nil
}

func (fs *S3FileSystem) Stat(ctx context.Context, p string) (fsx.FileInfo, error) {
	out, err := fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return fsx.FileInfo{}, fmt.Errorf("file not found: %s", p)
		}
		return fsx.FileInfo{}, fmt.Errorf("failed to head object: %w", err)
	}

	info := fsx.FileInfo{
		Name:        path.Base(p),
		ContentType: aws.ToString(out.ContentType),
		Metadata:    out.Metadata,
	}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		info.ModTime = *out.LastModified
	}
	return info, nil
}

func (fs *S3FileSystem) List(ctx context.Context, p string) ([]fsx.FileInfo, error) {
	prefix := fs.key(p)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var fileInfos []fsx.FileInfo
	paginator := s3.NewListObjectsV2Paginator(fs.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(fs.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			info := fsx.FileInfo{
				Name:     path.Base(aws.ToString(obj.Key)),
				Metadata: make(map[string]string),
			}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.ModTime = *obj.LastModified
			}
			fileInfos = append(fileInfos, info)
		}
	}

	return fileInfos, nil
}

func (fs *S3FileSystem) Exists(ctx context.Context, p string) (bool, error) {
	_, err := fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object: %w", err)
	}
	return true, nil
}

func (fs *S3FileSystem) WriteFile(ctx context.Context, p string, data []byte) error {
	return fs.WriteFileStream(ctx, p, bytes.NewReader(data))
}

func (fs *S3FileSystem) WriteFileStream(ctx context.Context, p string, r io.Reader) error {
	_, err := fs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (fs *S3FileSystem) DeleteFile(ctx context.Context, p string) error {
	_, err := fs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(p)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (fs *S3FileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

// key prepends the configured prefix to an object path
func (fs *S3FileSystem) key(p string) string {
	p = strings.TrimPrefix(p, "/")
	if fs.prefix == "" {
		return p
	}
	return fs.prefix + "/" + p
}
