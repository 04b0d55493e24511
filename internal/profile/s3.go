package profile

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/pranavnadakkal/portfolio/internal/cryptoutil"
	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// S3API is the part of the S3 client the loader uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// SSMAPI is the part of the SSM client the loader uses.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SignatureVerifier checks a detached signature over a document.
type SignatureVerifier interface {
	VerifySignature(ctx context.Context, message, signature []byte) error
}

// S3LoaderOptions configures an S3Loader.
type S3LoaderOptions struct {
	Logger log.Logger

	// SSMParam holds the SHA-256 of the current profile document.
	SSMParam string

	// Documents live at s3://{S3Bucket}/{S3Prefix}/{sha256}.yaml
	S3Bucket string
	S3Prefix string

	S3  S3API
	SSM SSMAPI

	// Verifier, when set, requires a detached signature at {key}.sig.
	Verifier SignatureVerifier

	Validation ValidationOptions
}

// S3Loader fetches content-addressed profile documents from S3.
type S3Loader struct {
	opts   S3LoaderOptions
	logger log.Logger
}

// NewS3Loader returns a loader. The S3 and SSM clients are required.
func NewS3Loader(opts S3LoaderOptions) (*S3Loader, error) {
	if opts.SSMParam == "" {
		return nil, xerrors.New("SSMParam is required")
	}
	if opts.S3Bucket == "" {
		return nil, xerrors.New("S3Bucket is required")
	}
	if opts.S3 == nil || opts.SSM == nil {
		return nil, xerrors.New("S3 and SSM clients are required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	opts.S3Prefix = strings.Trim(opts.S3Prefix, "/")
	return &S3Loader{opts: opts, logger: opts.Logger}, nil
}

// CurrentHash reads the release pointer from SSM.
func (l *S3Loader) CurrentHash(ctx context.Context) (string, error) {
	out, err := l.opts.SSM.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(l.opts.SSMParam),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", xerrors.Wrapf(err, "get SSM parameter %s", l.opts.SSMParam)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", xerrors.Newf("SSM parameter %s has no value", l.opts.SSMParam)
	}
	hash, ok := cryptoutil.ParseSHA256(*out.Parameter.Value)
	if !ok {
		return "", xerrors.Newf("SSM parameter %s is not a sha256 digest", l.opts.SSMParam)
	}
	return hash, nil
}

func (l *S3Loader) key(hash string) string {
	if l.opts.S3Prefix != "" {
		return l.opts.S3Prefix + "/" + hash + ".yaml"
	}
	return hash + ".yaml"
}

// Load fetches the document the release pointer names.
func (l *S3Loader) Load(ctx context.Context) (*Snapshot, error) {
	hash, err := l.CurrentHash(ctx)
	if err != nil {
		return nil, err
	}
	return l.LoadHash(ctx, hash)
}

// LoadHash fetches, verifies and parses the document with the given hash.
func (l *S3Loader) LoadHash(ctx context.Context, hash string) (*Snapshot, error) {
	key := l.key(hash)
	l.logger.Info(ctx, "downloading profile", "bucket", l.opts.S3Bucket, "key", key)

	data, err := l.get(ctx, key, MaxDocumentBytes)
	if err != nil {
		return nil, err
	}

	actual := cryptoutil.SHA256Hex(data)
	if !cryptoutil.HashEqual(actual, hash) {
		return nil, xerrors.Newf("checksum mismatch for %s: expected %s, got %s", key, hash, actual)
	}

	signed := false
	if l.opts.Verifier != nil {
		sig, err := l.get(ctx, key+".sig", 4096)
		if err != nil {
			return nil, xerrors.Wrap(err, "fetch profile signature")
		}
		if err := l.opts.Verifier.VerifySignature(ctx, data, sig); err != nil {
			return nil, xerrors.Wrapf(err, "verify signature for %s", key)
		}
		signed = true
	}

	snap, err := FromBytes(data, SourceS3, "s3://"+l.opts.S3Bucket+"/"+key, l.opts.Validation)
	if err != nil {
		return nil, err
	}
	snap.Meta.Signed = signed
	snap.Meta.VerifiedAt = time.Now().UTC()

	l.logger.Info(ctx, "loaded profile", "sha256", shortHash(hash), "signed", signed)
	return snap, nil
}

// get reads an object, refusing anything larger than limit.
func (l *S3Loader) get(ctx context.Context, key string, limit int64) ([]byte, error) {
	out, err := l.opts.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.opts.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, xerrors.Newf("s3://%s/%s does not exist", l.opts.S3Bucket, key)
		}
		return nil, xerrors.Wrapf(err, "get S3 object s3://%s/%s", l.opts.S3Bucket, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, limit+1))
	if err != nil {
		return nil, xerrors.Wrapf(err, "read s3://%s/%s", l.opts.S3Bucket, key)
	}
	if int64(len(data)) > limit {
		return nil, xerrors.Newf("s3://%s/%s exceeds %d bytes", l.opts.S3Bucket, key, limit)
	}
	return data, nil
}
