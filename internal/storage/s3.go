package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/nholding/finseries/internal/repository"
)

// S3API is the subset of *s3.Client used by S3BlobStore.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3BlobStore serves objects of one bucket, below an optional root path.
type S3BlobStore struct {
	api      S3API
	bucket   string
	rootPath string
}

// NewS3BlobStore wraps the client built by repository.NewS3Client.
func NewS3BlobStore(c *repository.S3Client) *S3BlobStore {
	return NewS3BlobStoreFromAPI(c.Client, c.BucketName, c.RootPath)
}

func NewS3BlobStoreFromAPI(api S3API, bucket, rootPath string) *S3BlobStore {
	return &S3BlobStore{api: api, bucket: bucket, rootPath: rootPath}
}

// List returns every key under rootPath/prefix, following continuation tokens until the listing is exhausted.
// Directory placeholder keys (ending in "/") are skipped.
func (s *S3BlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := joinKey(s.rootPath, prefix)

	paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(fullPrefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &StoreAccessError{Op: "list", Key: fullPrefix, Kind: classify(err), Err: err}
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Open streams the object stored under key. key is a full key as returned by List.
func (s *S3BlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &StoreAccessError{Op: "open", Key: key, Kind: classify(err), Err: err}
	}
	if out.Body == nil {
		return nil, &StoreAccessError{Op: "open", Key: key, Err: fmt.Errorf("body not found in response")}
	}
	return out.Body, nil
}

// classify maps S3 API errors to the store's error kinds.
func classify(err error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return ErrObjectNotFound
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrObjectNotFound
		case "NoSuchBucket":
			return ErrBucketNotFound
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return ErrAccessDenied
		}
	}
	return nil
}

// joinKey joins a root path and a prefix with a single "/", keeping a trailing "/" on prefix.
func joinKey(root, prefix string) string {
	root = strings.TrimSuffix(root, "/")
	prefix = strings.TrimPrefix(prefix, "/")
	switch {
	case root == "":
		return prefix
	case prefix == "":
		return root + "/"
	}
	return root + "/" + prefix
}
