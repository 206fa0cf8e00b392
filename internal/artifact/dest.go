package artifact

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/askiada/go-warlock/pkg/pipeline"
)

// Dest returns a stage writing every file under dir and passing it on unchanged.
func Dest(dir string) pipeline.Stage[*File] {
	return pipeline.DuplexMap(func(_ context.Context, file *File) (*File, error) {
		if dir == "" {
			return nil, errors.Wrap(pipeline.ErrInvalidDestination, "empty directory")
		}

		if !filepath.IsLocal(filepath.FromSlash(file.Path)) {
			return nil, errors.Wrapf(pipeline.ErrInvalidDestination, "%s escapes %s", file.Path, dir)
		}

		target := filepath.Join(dir, filepath.FromSlash(file.Path))

		err := os.MkdirAll(filepath.Dir(target), 0o755)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to create directory for %s", target)
		}

		mode := file.Mode
		if mode == 0 {
			mode = defaultMode
		}

		err = os.WriteFile(target, file.Contents, mode)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to write %s", target)
		}

		return file, nil
	})
}
