// Package archive snapshots a built artifact into a tar.gz and resolves the
// blob store it is uploaded to.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/deployproc/deployproc/internal/blob"
	"github.com/deployproc/deployproc/internal/blob/file"
	"github.com/deployproc/deployproc/internal/blob/gcs"
	"github.com/deployproc/deployproc/internal/blob/s3"
)

// Resolve maps an archive URI to a blob store. Supported schemes are
// file://, gs:// and s3://.
func Resolve(uri string) (blob.Storage, error) {
	switch {
	case strings.HasPrefix(uri, "file://"):
		return file.New(strings.TrimPrefix(uri, "file://")), nil
	case strings.HasPrefix(uri, "gs://"):
		return gcs.New(strings.TrimPrefix(uri, "gs://"))
	case strings.HasPrefix(uri, "s3://"):
		return s3.New(strings.TrimPrefix(uri, "s3://")), nil
	default:
		return nil, fmt.Errorf("unsupported archive URI: %s", uri)
	}
}

// Snapshot produces a tar.gz of the artifact tree rooted at dir. The
// staging repository's .git directory is not part of the artifact and is
// skipped.
func Snapshot(dir string) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if rel == ".git" {
			return filepath.SkipDir
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		link := ""
		if d.Type()&fs.ModeSymlink != 0 {
			link, err = os.Readlink(path)
			if err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not snapshot %s: %v", dir, err)
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
