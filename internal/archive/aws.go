// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

type options struct {
	profile string
	region  string
}

// Option customizes how AWS config is loaded. With no options the shell's
// AWS setup (AWS_PROFILE, shared config, env, IMDS) is inherited.
type Option func(*options)

// WithProfile sets the shared config profile.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion sets the region override.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

func (o options) loadOptions() []func(*config.LoadOptions) error {
	var lo []func(*config.LoadOptions) error
	if o.profile != "" {
		lo = append(lo, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		lo = append(lo, config.WithRegion(o.region))
	}
	return lo
}

// NewS3 loads AWS config and returns an S3 client.
func NewS3(ctx context.Context, opts ...Option) (*s3v2.Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.LoadDefaultConfig(ctx, o.loadOptions()...)
	if err != nil {
		return nil, err
	}
	return s3v2.NewFromConfig(cfg), nil
}

var _ Uploader = (*s3v2.Client)(nil)
