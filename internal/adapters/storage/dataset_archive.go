// Package storage keeps gzip-compressed copies of imported datasets on disk.
package storage

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const archiveExt = ".csv.gz"

// DatasetArchive stores one directory per experiment under baseDir.
type DatasetArchive struct {
	baseDir string
	now     func() time.Time
}

func NewDatasetArchive(baseDir string) (*DatasetArchive, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dataset archive directory: %w", err)
	}
	return &DatasetArchive{baseDir: baseDir, now: time.Now}, nil
}

// Store compresses the file at sourcePath into the experiment's directory and
// returns the archived path. The name is prefixed with a UTC timestamp so
// repeated imports of the same file are all kept.
func (a *DatasetArchive) Store(ctx context.Context, experimentID, sourcePath string) (string, error) {
	dir := filepath.Join(a.baseDir, experimentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create experiment archive: %w", err)
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = src.Close() }()

	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	destPath := filepath.Join(dir, a.now().UTC().Format("20060102T150405.000000000")+"_"+base+archiveExt)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() { _ = dest.Close() }()

	gw := gzip.NewWriter(dest)
	gw.Name = filepath.Base(sourcePath)
	if _, err := io.Copy(gw, src); err != nil {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("failed to compress dataset: %w", err)
	}
	if err := gw.Close(); err != nil {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return destPath, nil
}

// List returns the archived files of an experiment, oldest first.
func (a *DatasetArchive) List(ctx context.Context, experimentID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(a.baseDir, experimentID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), archiveExt) {
			continue
		}
		paths = append(paths, filepath.Join(a.baseDir, experimentID, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Open returns a reader over the decompressed contents of an archived file.
func (a *DatasetArchive) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archived dataset: %w", err)
	}
	gr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	return &gzipFile{Reader: gr, file: f}, nil
}

// Delete removes every archived file of an experiment.
func (a *DatasetArchive) Delete(ctx context.Context, experimentID string) error {
	if experimentID == "" {
		return fmt.Errorf("experiment id is required")
	}
	if err := os.RemoveAll(filepath.Join(a.baseDir, experimentID)); err != nil {
		return fmt.Errorf("failed to delete archive: %w", err)
	}
	return nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.file.Close(); err == nil {
		err = cerr
	}
	return err
}
