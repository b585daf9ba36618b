package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/alnah/go-letterpdf/internal/textenc"
)

// DefaultS3Timeout bounds each S3 request.
const DefaultS3Timeout = 30 * time.Second

// maxTemplateSize caps a single object read.
const maxTemplateSize = 4 << 20

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config locates templates in a bucket. Credentials are optional: when
// AccessKeyID is empty the default AWS credential chain is used.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // S3-compatible endpoint (MinIO, RustFS); empty for AWS
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
	Timeout         time.Duration
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", ErrInvalidS3Config, err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// S3Store loads templates from s3://{bucket}/{prefix}/{name}{suffix}.
type S3Store struct {
	client   S3API
	bucket   string
	prefix   string
	suffix   string
	encoding string
	timeout  time.Duration
}

// NewS3Store creates an S3Store over client.
func NewS3Store(client S3API, cfg S3Config, opts ...StoreOption) (*S3Store, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: nil client", ErrInvalidS3Config)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is required", ErrInvalidS3Config)
	}

	o, err := applyStoreOptions(opts)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultS3Timeout
	}

	return &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		suffix:   o.suffix,
		encoding: o.encoding,
		timeout:  timeout,
	}, nil
}

// LoadTemplate fetches {prefix}/{name}{suffix}.
func (s *S3Store) LoadTemplate(ctx context.Context, name string) (string, error) {
	if err := ValidateTemplateName(name); err != nil {
		return "", err
	}

	content, err := s.get(ctx, s.key(name + s.suffix))
	if err != nil {
		if isS3NotFound(err) {
			return "", fmt.Errorf("%w: %q in s3://%s", ErrTemplateNotFound, name, s.bucket)
		}
		return "", err
	}
	return content, nil
}

// LoadPartials fetches every object under {prefix}/partials/ ending in suffix.
func (s *S3Store) LoadPartials(ctx context.Context) (map[string]string, error) {
	dir := s.key(partialsDir) + "/"
	keys, err := s.list(ctx, dir)
	if err != nil {
		return nil, err
	}

	partials := make(map[string]string, len(keys))
	for _, key := range keys {
		rel := strings.TrimPrefix(key, dir)
		if strings.Contains(rel, "/") || !strings.HasSuffix(rel, s.suffix) {
			continue
		}
		content, err := s.get(ctx, key)
		if err != nil {
			return nil, err
		}
		partials[strings.TrimSuffix(rel, s.suffix)] = content
	}
	return partials, nil
}

// ListTemplates returns template names under the prefix, partials excluded.
func (s *S3Store) ListTemplates(ctx context.Context) ([]string, error) {
	base := ""
	if s.prefix != "" {
		base = s.prefix + "/"
	}
	keys, err := s.list(ctx, base)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, key := range keys {
		rel := strings.TrimPrefix(key, base)
		if strings.HasPrefix(rel, partialsDir+"/") || !strings.HasSuffix(rel, s.suffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(rel, s.suffix))
	}
	sort.Strings(names)
	return names, nil
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// get reads one object. Each request is bounded by the store timeout
// and by ctx.
func (s *S3Store) get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return "", err
		}
		return "", fmt.Errorf("%w: s3://%s/%s: %w", ErrTemplateRead, s.bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxTemplateSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: s3://%s/%s: %v", ErrTemplateRead, s.bucket, key, err)
	}
	if len(data) > maxTemplateSize {
		return "", fmt.Errorf("%w: s3://%s/%s exceeds %d bytes", ErrTemplateRead, s.bucket, key, maxTemplateSize)
	}

	content, err := textenc.Decode(data, s.encoding)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path.Base(key), err)
	}
	return content, nil
}

func (s *S3Store) list(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	for {
		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: listing s3://%s/%s: %w", ErrTemplateRead, s.bucket, prefix, err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}
	return keys, nil
}

// isS3NotFound matches NoSuchKey and bare 404 responses (HEAD-style errors
// from S3-compatible servers).
func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404
}

// Compile-time interface checks.
var (
	_ TemplateStore = (*S3Store)(nil)
	_ Lister        = (*S3Store)(nil)
	_ S3API         = (*s3.Client)(nil)
)
