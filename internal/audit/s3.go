package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Sink uploads one JSON object per record, for environments where local
// disk is ephemeral.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Sink loads the default AWS configuration and returns the sink.
func NewS3Sink(ctx context.Context, bucket, prefix, region string) (*S3Sink, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &S3Sink{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// NewS3SinkWithClient wires an existing client, mainly for tests.
func NewS3SinkWithClient(client *s3.Client, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Sink) Write(ctx context.Context, rec *Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling audit record: %w", err)
	}
	key := path.Join(s.prefix, fmt.Sprintf("%d-%s.json", rec.Timestamp.UnixNano(), uuid.NewString()))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("uploading audit record: %w", err)
	}
	return nil
}
