package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/raywall/terraform-provider-lambdasync/internal/client"
	"github.com/raywall/terraform-provider-lambdasync/pkg/faults"
)

// ObjectAPI é o subconjunto do *s3.Client usado pelo repositório.
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Repository verifica pacotes de código publicados no S3.
type S3Repository struct {
	Client ObjectAPI
}

func NewS3Repository(c *client.AWSClient) *S3Repository {
	return &S3Repository{Client: c.S3}
}

// ObjectExists consulta o objeto (e a versão, quando informada) sem baixá-lo.
func (r *S3Repository) ObjectExists(ctx context.Context, bucket, key, version string) (bool, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if version != "" {
		input.VersionId = aws.String(version)
	}

	if _, err := r.Client.HeadObject(ctx, input); err != nil {
		var nf *s3types.NotFound
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nf) || errors.As(err, &nsk) || isAPIErrorCode(err, "NotFound") {
			return false, nil
		}
		return false, faults.NewTypedError(faults.ClientError, "HeadObject failed", err)
	}
	return true, nil
}
