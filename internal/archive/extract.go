package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
)

// ErrPathTraversal marks archives whose entries would land outside the
// extraction directory.
var ErrPathTraversal = errors.New("path traversal detected")

// Extract unpacks the archive at archivePath into destDir. The compression
// format is detected from the file itself. Every entry path is validated
// before anything is written: a single entry escaping destDir fails the
// whole archive with ErrPathTraversal and leaves the filesystem untouched.
func Extract(ctx context.Context, archivePath, destDir string) error {
	destAbs, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", destDir, err)
	}

	err = walk(ctx, archivePath, func(ctx context.Context, f archives.FileInfo) error {
		return validateEntry(destAbs, f)
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(destAbs, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", destAbs, err)
	}
	return walk(ctx, archivePath, func(ctx context.Context, f archives.FileInfo) error {
		return writeEntry(destAbs, f)
	})
}

// walk identifies the archive format and runs handler over every entry.
// Identify consumes the stream head, so each pass reopens the file.
func walk(ctx context.Context, archivePath string, handler archives.FileHandler) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer file.Close()

	format, input, err := archives.Identify(ctx, archivePath, file)
	if err != nil {
		return fmt.Errorf("failed to identify archive %s: %w", archivePath, err)
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return fmt.Errorf("archive format %s is not extractable", format.Extension())
	}
	return extractor.Extract(ctx, input, handler)
}

func validateEntry(destAbs string, f archives.FileInfo) error {
	target, err := safeJoin(destAbs, f.NameInArchive)
	if err != nil {
		return err
	}
	if f.LinkTarget == "" {
		return nil
	}
	if f.Mode()&fs.ModeSymlink != 0 {
		return validateLink(destAbs, target, f)
	}
	// hard link targets are archive-root relative
	_, err = safeJoin(destAbs, f.LinkTarget)
	return err
}

// safeJoin joins an entry name onto destAbs and guarantees the result is
// equal to or contained within it.
func safeJoin(destAbs, name string) (string, error) {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "", fmt.Errorf("%w: empty entry name", ErrPathTraversal)
	}
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: absolute entry %s", ErrPathTraversal, name)
	}
	target := filepath.Join(destAbs, filepath.FromSlash(clean))
	rel, err := filepath.Rel(destAbs, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry %s", ErrPathTraversal, name)
	}
	return target, nil
}

// validateLink resolves a symlink target against the link's own directory
// and rejects it when the resolved path escapes destAbs.
func validateLink(destAbs, linkPath string, f archives.FileInfo) error {
	target := f.LinkTarget
	if filepath.IsAbs(target) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrPathTraversal, f.NameInArchive, target)
	}
	resolved := filepath.Join(filepath.Dir(linkPath), filepath.FromSlash(target))
	rel, err := filepath.Rel(destAbs, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrPathTraversal, f.NameInArchive, target)
	}
	return nil
}

func writeEntry(destAbs string, f archives.FileInfo) error {
	target, err := safeJoin(destAbs, f.NameInArchive)
	if err != nil {
		return err
	}

	switch {
	case f.IsDir():
		return os.MkdirAll(target, 0o755)
	case f.Mode()&fs.ModeSymlink != 0:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.NameInArchive, err)
		}
		return os.Symlink(f.LinkTarget, target)
	case f.LinkTarget != "":
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.NameInArchive, err)
		}
		return os.Link(filepath.Join(destAbs, f.LinkTarget), target)
	default:
		return writeFile(target, f)
	}
}

func writeFile(target string, f archives.FileInfo) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.NameInArchive, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open entry %s: %w", f.NameInArchive, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}
