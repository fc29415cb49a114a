package devtools

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/lumina-dev/lumina/internal/config"
	"github.com/lumina-dev/lumina/internal/errors"
)

// ObjectPutter is the subset of *s3.Client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader stores State snapshots as JSON objects.
type Uploader struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewUploader creates an uploader writing to bucket under prefix.
func NewUploader(client ObjectPutter, bucket, prefix string) *Uploader {
	return &Uploader{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Uploader creates an uploader from the snapshot configuration.
// Credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
// AWS_SESSION_TOKEN.
func NewS3Uploader(cfg config.SnapshotConfig) *Uploader {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
		Credentials:  aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return NewUploader(s3.New(opts), cfg.Bucket, cfg.Prefix)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, errors.New("E202").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}, nil
}

// Bucket returns the destination bucket.
func (u *Uploader) Bucket() string { return u.bucket }

// Upload stores st and returns the object key.
func (u *Uploader) Upload(ctx context.Context, st State) (string, error) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return "", errors.New("E202").Wrap(err)
	}

	key := u.prefix + st.Time.Format("20060102T150405Z") + "-" + uuid.NewString() + ".json"
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"seq":    strconv.FormatUint(st.Seq, 10),
			"mounts": strconv.Itoa(len(st.Mounts)),
		},
	})
	if err != nil {
		return "", errors.New("E202").WithSubject(key).Wrap(err)
	}
	return key, nil
}
