// Package s3storage implements the storage.Storage port over Amazon S3
// for the serverless deployment, grounded on original_source's
// src/adapters/aws/s3.rs GetObject/PutObject pair.
package s3storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
)

type Adapter struct {
	Bucket     string
	Downloader *s3manager.Downloader
	Uploader   *s3manager.Uploader
}

func New(sess *session.Session, bucket string) Adapter {
	return Adapter{
		Bucket:     bucket,
		Downloader: s3manager.NewDownloader(sess),
		Uploader:   s3manager.NewUploader(sess),
	}
}

// Download fetches key into a uniquely-named temp file under the system
// temp dir and returns that path; callers are responsible for cleaning it
// up. The path is never derived from key alone: spec.md §5 requires
// workers use unique temp paths to avoid collisions when two callers (two
// segment jobs of the same video, landed on different workers) download
// the same source key concurrently on a shared disk.
func (a Adapter) Download(ctx context.Context, key string) (string, error) {
	pattern := fmt.Sprintf("hlsfrag-%s-*%s", sanitizeBase(key), filepath.Ext(key))
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", hlsfragerrors.IOFailure("creating temp download file for "+key, err)
	}
	localPath := f.Name()
	defer f.Close()

	_, err = a.Downloader.DownloadWithContext(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(a.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", hlsfragerrors.IOFailure("downloading s3://"+a.Bucket+"/"+key, err)
	}
	return localPath, nil
}

// sanitizeBase strips the extension and any characters os.CreateTemp's
// pattern would treat specially, keeping the generated temp file readable
// for debugging without reintroducing key as the sole source of identity.
func sanitizeBase(key string) string {
	base := strings.TrimSuffix(filepath.Base(key), filepath.Ext(key))
	return strings.ReplaceAll(base, "*", "_")
}

func (a Adapter) Upload(ctx context.Context, localPath string, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return hlsfragerrors.IOFailure("opening "+localPath+" for upload", err)
	}
	defer f.Close()

	_, err = a.Uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(a.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return hlsfragerrors.IOFailure("uploading to s3://"+a.Bucket+"/"+key, err)
	}
	return nil
}
