package kmz

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
)

// Archive wraps rendered KML bytes in a zip container holding a single
// doc.kml entry. The entry timestamp is fixed so that identical input
// yields identical archive bytes.
func Archive(kml []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	header := &zip.FileHeader{
		Name:     DocumentName,
		Method:   zip.Deflate,
		Modified: time.Time{},
	}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return nil, errors.WrapIO("archive", DocumentName, err)
	}
	if _, err := w.Write(kml); err != nil {
		return nil, errors.WrapIO("archive", DocumentName, err)
	}
	if err := zw.Close(); err != nil {
		return nil, errors.WrapIO("archive", DocumentName, err)
	}
	return buf.Bytes(), nil
}

// WriteFile stages the archive beside its destination and renames it into
// place, so a failed write never leaves a truncated KMZ at the target
// path.
func WriteFile(path string, archive []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapIO("mkdir", filepath.Dir(path), err)
	}

	staged := path + ".tmp"
	if err := os.WriteFile(staged, archive, 0o644); err != nil {
		return errors.WrapIO("write", staged, err)
	}
	if err := os.Rename(staged, path); err != nil {
		os.Remove(staged)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
