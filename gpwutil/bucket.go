/*
Copyright © 2019 the InMAP authors.
This file is part of gpwgrid.

gpwgrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

gpwgrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with gpwgrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package gpwutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket opens the blob storage bucket that holds the blob at the
// given URL and returns it along with the key of the blob within the
// bucket. For "gs" and "s3" URLs the host is the bucket name. For "file"
// URLs the directory holding the file is the bucket, so
// "file:///data/glbnds.asc.gz" refers to key "glbnds.asc.gz" in
// directory /data and "file://data/glbnds.asc.gz" to the same key in the
// relative directory "data".
func OpenBucket(ctx context.Context, blobURL string) (*blob.Bucket, string, error) {
	u, err := url.Parse(blobURL)
	if err != nil {
		return nil, "", fmt.Errorf("gpwutil.OpenBucket: %v", err)
	}
	var b *blob.Bucket
	key := strings.TrimPrefix(u.Path, "/")
	switch u.Scheme {
	case "file":
		dir, base := path.Split(u.Host + u.Path)
		key = base
		if dir == "" {
			dir = "."
		}
		b, err = fileblob.OpenBucket(dir, nil)
	case "gs":
		b, err = gsBucket(ctx, u.Host)
	case "s3":
		b, err = s3Bucket(ctx, u.Host)
	default:
		return nil, "", fmt.Errorf("gpwutil.OpenBucket: invalid provider %s", u.Scheme)
	}
	if err != nil {
		return nil, "", fmt.Errorf("gpwutil.OpenBucket: %v", err)
	}
	if key == "" {
		return nil, "", fmt.Errorf("gpwutil.OpenBucket: no object name in %s", blobURL)
	}
	return b, key, nil
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}
