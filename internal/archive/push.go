// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader is the part of the S3 client used by Push.
type Uploader interface {
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// Target names where a run directory goes.
type Target struct {
	Bucket string
	Prefix string
}

// Key returns the object key for a file of the run directory, relative to the
// directory.
func (t Target) Key(run, rel string) string {
	return path.Join(t.Prefix, run, filepath.ToSlash(rel))
}

// Push uploads every regular file beneath dir and returns the keys written.
// Objects already present are overwritten.
func Push(ctx context.Context, up Uploader, dir string, t Target) ([]string, error) {
	if t.Bucket == "" {
		return nil, errors.New("no bucket given")
	}

	run := filepath.Base(dir)
	var keys []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := t.Key(run, rel)

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		log.Debugf("uploading s3://%s/%s", t.Bucket, key)
		if _, err := up.PutObject(ctx, &s3v2.PutObjectInput{
			Bucket: awsv2.String(t.Bucket),
			Key:    awsv2.String(key),
			Body:   f,
		}); err != nil {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return keys, fmt.Errorf("failed to push %s: %w", dir, err)
	}

	log.Infof("pushed %d files to s3://%s/%s", len(keys), t.Bucket, t.Key(run, ""))
	return keys, nil
}
