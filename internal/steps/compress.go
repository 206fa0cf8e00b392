package steps

import (
	"bytes"
	"context"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"github.com/askiada/go-warlock/internal/artifact"
	"github.com/askiada/go-warlock/pkg/pipeline"
)

// Gzip compresses every file and appends ".gz" to its path. The "level" option goes from 1
// (fastest) to 9 (smallest).
func Gzip(options map[string]any) (pipeline.Stage[*artifact.File], error) {
	level, err := intOption(options, "level", gzip.DefaultCompression)
	if err != nil {
		return pipeline.Stage[*artifact.File]{}, err
	}

	if level != gzip.DefaultCompression && (level < gzip.BestSpeed || level > gzip.BestCompression) {
		return pipeline.Stage[*artifact.File]{}, errors.Wrapf(ErrInvalidConfig, "gzip level %d", level)
	}

	return pipeline.DuplexMap(func(_ context.Context, file *artifact.File) (*artifact.File, error) {
		var buf bytes.Buffer

		w, err := gzip.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create gzip writer")
		}

		w.Name = file.Path
		w.ModTime = file.ModTime

		if _, err := w.Write(file.Contents); err != nil {
			return nil, errors.Wrapf(err, "unable to compress %s", file.Path)
		}

		if err := w.Close(); err != nil {
			return nil, errors.Wrapf(err, "unable to compress %s", file.Path)
		}

		out := file.WithContents(buf.Bytes())
		out.Path = file.Path + ".gz"

		return out, nil
	}), nil
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// LZ4 compresses every file into an lz4 frame and appends ".lz4" to its path. The "level"
// option goes from 0 (fast) to 9.
func LZ4(options map[string]any) (pipeline.Stage[*artifact.File], error) {
	level, err := intOption(options, "level", 0)
	if err != nil {
		return pipeline.Stage[*artifact.File]{}, err
	}

	if level < 0 || level >= len(lz4Levels) {
		return pipeline.Stage[*artifact.File]{}, errors.Wrapf(ErrInvalidConfig, "lz4 level %d", level)
	}

	return pipeline.DuplexMap(func(_ context.Context, file *artifact.File) (*artifact.File, error) {
		var buf bytes.Buffer

		w := lz4.NewWriter(&buf)

		err := w.Apply(lz4.CompressionLevelOption(lz4Levels[level]))
		if err != nil {
			return nil, errors.Wrap(err, "unable to configure lz4 writer")
		}

		if _, err := w.Write(file.Contents); err != nil {
			return nil, errors.Wrapf(err, "unable to compress %s", file.Path)
		}

		if err := w.Close(); err != nil {
			return nil, errors.Wrapf(err, "unable to compress %s", file.Path)
		}

		out := file.WithContents(buf.Bytes())
		out.Path = file.Path + ".lz4"

		return out, nil
	}), nil
}
