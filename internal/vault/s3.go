package vault

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"fic-go/internal/config"
	"fic-go/internal/fic"
)

// S3Store stores archives as S3 objects, addressed as "s3://bucket/key".
// Uploads go through the transfer manager so large archives are sent in
// parts without buffering the whole payload again.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Store builds an S3 archive store. Region and static credentials
// come from the export config when set; otherwise the default AWS
// credential chain applies.
func NewS3Store(ctx context.Context, cfg config.ExportConfig) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// IsS3Ref reports whether a destination reference names an S3 object.
func IsS3Ref(ref string) bool {
	return strings.HasPrefix(ref, "s3://")
}

// ParseS3Ref splits "s3://bucket/key" into bucket and key.
func ParseS3Ref(ref string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(ref, "s3://")
	if rest == ref {
		return "", "", fmt.Errorf("not an s3 reference: %s", ref)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 reference %q (want s3://bucket/key)", ref)
	}
	return bucket, key, nil
}

// Put uploads the archive to the referenced object.
func (s *S3Store) Put(ref string, r io.Reader) error {
	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return err
	}

	_, err = s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading archive to %s: %w", ref, err)
	}
	return nil
}

// Get downloads the referenced object into w.
func (s *S3Store) Get(ref string, w io.Writer) error {
	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return err
	}

	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("downloading archive from %s: %w", ref, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading archive from %s: %w", ref, err)
	}
	return nil
}

// Compile-time check that S3Store implements fic.ArchiveStore.
var _ fic.ArchiveStore = (*S3Store)(nil)
