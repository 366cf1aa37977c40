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
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
)

type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	dir   string
	log   logrus.FieldLogger
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// the upload method is run. Local output paths have their directory
// created if it does not exist.
func (u *uploader) maybeUpload(p string) (string, error) {
	if !IsBlob(p) {
		if dir := filepath.Dir(p); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", fmt.Errorf("gpwutil: creating output directory: %v", err)
			}
		}
		return p, nil
	}
	if u.dir == "" {
		var err error
		u.dir, err = os.MkdirTemp("", "gpwgrid")
		if err != nil {
			return "", fmt.Errorf("gpwutil: creating temporary output directory: %v", err)
		}
	}
	local := filepath.Join(u.dir, path.Base(p))
	u.files = append(u.files, [2]string{local, p})
	return local, nil
}

// upload copies the local files registered by maybeUpload to blob
// storage.
func (u *uploader) upload(ctx context.Context) error {
	for _, files := range u.files {
		if err := uploadFile(ctx, files[0], files[1]); err != nil {
			return err
		}
		if u.log != nil {
			u.log.WithFields(logrus.Fields{
				"file": files[0],
				"url":  files[1],
			}).Info("uploaded output")
		}
	}
	return nil
}

func uploadFile(ctx context.Context, local, dst string) error {
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("gpwutil: opening file '%s' for upload: %s", local, err)
	}
	defer r.Close()
	bucket, key, err := OpenBucket(ctx, dst)
	if err != nil {
		return fmt.Errorf("gpwutil: opening bucket to upload file '%s': %s", dst, err)
	}
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("gpwutil: opening writer to upload file '%s': %s", dst, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("gpwutil: uploading file '%s' to '%s': %s", local, dst, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gpwutil: uploading file '%s' to '%s': %s", local, dst, err)
	}
	return nil
}

// cleanup removes the temporary directory used for uploads.
func (u *uploader) cleanup() {
	if u.dir != "" {
		os.RemoveAll(u.dir)
	}
}
