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
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob.
// If so, it downloads the file into a new temporary directory and
// returns the path to the downloaded file.
func maybeDownload(ctx context.Context, p string, log logrus.FieldLogger) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		return p, nil
	}
	var (
		r    io.ReadCloser
		name string
		err  error
	)
	switch {
	case strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://"):
		r, err = openHTTP(ctx, p, log)
		name = path.Base(strings.SplitN(p, "?", 2)[0])
	case IsBlob(p):
		r, name, err = openBlob(ctx, p)
	default:
		return p, nil
	}
	if err != nil {
		return "", fmt.Errorf("gpwutil: downloading %s: %v", p, err)
	}
	defer r.Close()

	dir, err := os.MkdirTemp("", "gpwgrid")
	if err != nil {
		return "", fmt.Errorf("gpwutil: creating temporary download directory: %v", err)
	}
	local := filepath.Join(dir, path.Base(name))
	w, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("gpwutil: creating file for download: %v", err)
	}
	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return "", fmt.Errorf("gpwutil: downloading %s: %v", p, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gpwutil: downloading %s: %v", p, err)
	}
	log.WithFields(logrus.Fields{
		"url":   p,
		"file":  local,
		"bytes": n,
	}).Info("downloaded input")
	return local, nil
}

// maxRetries is the number of times a failed HTTP download is retried.
const maxRetries = 4

// openHTTP requests url, retrying network errors and server errors with
// exponential backoff. Client errors are not retried.
func openHTTP(ctx context.Context, url string, log logrus.FieldLogger) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var body io.ReadCloser
	err = backoff.RetryNotify(
		func() error {
			resp, err := http.DefaultClient.Do(req.WithContext(ctx))
			if err != nil {
				return err
			}
			if resp.StatusCode == http.StatusOK {
				body = resp.Body
				return nil
			}
			resp.Body.Close()
			if resp.StatusCode >= 500 {
				return fmt.Errorf("%s", resp.Status)
			}
			return backoff.Permanent(fmt.Errorf("%s", resp.Status))
		},
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx),
		func(err error, d time.Duration) {
			log.WithField("url", url).Warnf("%v: retrying in %v", err, d)
		},
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func openBlob(ctx context.Context, p string) (io.ReadCloser, string, error) {
	bucket, key, err := OpenBucket(ctx, p)
	if err != nil {
		return nil, "", err
	}
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, "", err
	}
	return r, key, nil
}
