// Package archive expands downloaded archives into the staging workspace.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Extractor expands an archive into destDir and returns the paths of the files it wrote, in archive order.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) ([]string, error)
}

// ErrExtraction is matched by every ExtractionError.
var ErrExtraction = errors.New("extraction error")

// ExtractionError reports a corrupt or unreadable archive, or an entry that could not be written.
type ExtractionError struct {
	Archive string
	Entry   string // Empty when the archive itself failed
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("extract %s: entry %s: %v", e.Archive, e.Entry, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// metadataDirs are archive folders written by desktop archivers that never hold disclosure data.
var metadataDirs = []string{"__MACOSX/"}

// ZipExtractor expands zip archives.
type ZipExtractor struct{}

func NewZipExtractor() *ZipExtractor {
	return &ZipExtractor{}
}

// Extract writes every regular file of the zip archive below destDir, keeping the archive's folder layout.
// Entries that would land outside destDir are rejected.
func (z *ZipExtractor) Extract(ctx context.Context, archivePath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, &ExtractionError{Archive: archivePath, Err: err}
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, &ExtractionError{Archive: archivePath, Err: err}
	}

	var paths []string
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return nil, &ExtractionError{Archive: archivePath, Err: err}
		}
		if isMetadata(f.Name) {
			continue
		}

		target, err := entryPath(destDir, f.Name)
		if err != nil {
			return nil, &ExtractionError{Archive: archivePath, Entry: f.Name, Err: err}
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, &ExtractionError{Archive: archivePath, Entry: f.Name, Err: err}
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}

		if err := writeEntry(f, target); err != nil {
			return nil, &ExtractionError{Archive: archivePath, Entry: f.Name, Err: err}
		}
		paths = append(paths, target)
	}

	return paths, nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// entryPath resolves an archive entry name below destDir.
func entryPath(destDir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("absolute path %q", name)
	}
	target := filepath.Join(destDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(destDir, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the destination directory", name)
	}
	return target, nil
}

func isMetadata(name string) bool {
	for _, dir := range metadataDirs {
		if strings.HasPrefix(name, dir) {
			return true
		}
	}
	return false
}
