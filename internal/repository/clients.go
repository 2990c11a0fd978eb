package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Config struct {
	Profile      string // Primarily for dev purposes
	Region       string // e.g. "eu-central-1"
	S3BucketName string
	RootPath     string // Key prefix every listing is relative to; "" is the bucket root

	Endpoint     string // Custom S3 endpoint (MinIO, LocalStack); empty uses AWS
	UsePathStyle bool   // Required by most S3-compatible endpoints
}

type Clients struct {
	S3     *S3Client
	Config *Config
}

type S3Client struct {
	Client     *s3.Client // The actual S3 client
	BucketName string     // The bucket name (from config)
	RootPath   string
}

// Validate checks the settings an S3 client cannot be built without.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("AWS region cannot be empty")
	}
	if c.S3BucketName == "" {
		return fmt.Errorf("S3 bucket name cannot be empty")
	}
	return nil
}

func (c *Config) LoadAWSConfig(ctx context.Context) (*aws.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(c.Profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &cfg, nil
}

// S3Options returns the client options derived from the config.
func (c *Config) S3Options() []func(*s3.Options) {
	var opts []func(*s3.Options)
	if c.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(c.Endpoint)
		})
	}
	if c.UsePathStyle {
		opts = append(opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	return opts
}

// NewS3Client creates a new S3 client and stores the bucket name
func NewS3Client(ctx context.Context, cfg *Config) (*S3Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid S3 client config: %w", err)
	}

	awsCfg, err := cfg.LoadAWSConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for S3 client: %w", err)
	}

	client := s3.NewFromConfig(*awsCfg, cfg.S3Options()...)
	return &S3Client{
		Client:     client,
		BucketName: cfg.S3BucketName, // Store the bucket name
		RootPath:   cfg.RootPath,
	}, nil
}

// NewAWSClients creates and returns a new Clients object with the S3 client
func NewAWSClients(ctx context.Context, cfg *Config) (*Clients, error) {
	s3Client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating S3 client: %w", err)
	}

	return &Clients{
		S3:     s3Client,
		Config: cfg,
	}, nil
}
