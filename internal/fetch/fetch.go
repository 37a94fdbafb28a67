package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/justfishin/internal/archive"
	"github.com/andresuchdata/justfishin/internal/format"
	"github.com/andresuchdata/justfishin/internal/storage"
	"github.com/andresuchdata/justfishin/pkg/logger"
)

// ErrUnsafeKey marks object keys that would escape the destination
// directory when used as a local file name.
var ErrUnsafeKey = errors.New("unsafe object key")

// Orchestrator downloads a selected object and extracts it in place.
type Orchestrator struct {
	store   storage.ObjectStorage
	out     io.Writer
	destDir string
}

// New returns an Orchestrator writing the archive and its contents into
// destDir. An empty destDir means the current directory.
func New(store storage.ObjectStorage, out io.Writer, destDir string) *Orchestrator {
	if destDir == "" {
		destDir = "."
	}
	return &Orchestrator{
		store:   store,
		out:     out,
		destDir: destDir,
	}
}

// Fetch downloads item with percentage progress, then extracts it as a
// compressed tar archive into the destination directory.
func (o *Orchestrator) Fetch(ctx context.Context, item storage.ObjectInfo) error {
	localPath, err := o.localPath(item.Key)
	if err != nil {
		return err
	}

	fmt.Fprintf(o.out, "downloading %s...\n", format.Bytes(item.Size))

	lastPct := -1
	progress := func(current, total int64) {
		if total <= 0 {
			return
		}
		pct := int(100 * current / total)
		if pct == lastPct {
			return
		}
		lastPct = pct
		fmt.Fprintf(o.out, "%d%%...\n", pct)
	}

	if err := o.store.DownloadObject(ctx, item.Key, localPath, progress); err != nil {
		return fmt.Errorf("failed to download %s: %w", item.Key, err)
	}
	logger.Log.Debug().Str("key", item.Key).Str("path", localPath).Msg("download complete")

	if err := archive.Extract(ctx, localPath, o.destDir); err != nil {
		return fmt.Errorf("failed to extract %s: %w", localPath, err)
	}
	return nil
}

// localPath maps an object key to a file path under the destination
// directory, rejecting keys that would land outside it.
func (o *Orchestrator) localPath(key string) (string, error) {
	if key == "" || filepath.IsAbs(key) || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrUnsafeKey, key)
	}
	path := filepath.Join(o.destDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(o.destDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeKey, key)
	}
	return path, nil
}
