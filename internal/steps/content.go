package steps

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/zeebo/blake3"

	"github.com/askiada/go-warlock/internal/artifact"
	"github.com/askiada/go-warlock/pkg/pipeline"
)

// Fingerprint inserts the blake3 hash of the contents of every file before its extension:
// app.js becomes app.<hash>.js. The "length" option sets the number of hex digits kept.
func Fingerprint(options map[string]any) (pipeline.Stage[*artifact.File], error) {
	length, err := intOption(options, "length", 8)
	if err != nil {
		return pipeline.Stage[*artifact.File]{}, err
	}

	if length < 1 || length > 64 {
		return pipeline.Stage[*artifact.File]{}, errors.Wrapf(ErrInvalidConfig, "fingerprint length %d", length)
	}

	return pipeline.Map(func(file *artifact.File) (*artifact.File, error) {
		sum := blake3.Sum256(file.Contents)
		digest := hex.EncodeToString(sum[:])[:length]

		ext := file.Ext()
		out := file.Clone()
		out.Path = strings.TrimSuffix(file.Path, ext) + "." + digest + ext

		return out, nil
	}), nil
}

// Markdown renders the ".md" files to HTML. Other files are passed on unchanged. The "gfm"
// option, on by default, enables GitHub flavoured markdown and "unsafe" keeps raw HTML.
func Markdown(options map[string]any) (pipeline.Stage[*artifact.File], error) {
	gfm, err := boolOption(options, "gfm", true)
	if err != nil {
		return pipeline.Stage[*artifact.File]{}, err
	}

	unsafe, err := boolOption(options, "unsafe", false)
	if err != nil {
		return pipeline.Stage[*artifact.File]{}, err
	}

	var opts []goldmark.Option
	if gfm {
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	}

	if unsafe {
		opts = append(opts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	md := goldmark.New(opts...)

	return pipeline.Map(func(file *artifact.File) (*artifact.File, error) {
		if file.Ext() != ".md" {
			return file, nil
		}

		var buf bytes.Buffer

		err := md.Convert(file.Contents, &buf)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to render %s", file.Path)
		}

		out := file.WithExt(".html")
		out.Contents = buf.Bytes()

		return out, nil
	}), nil
}

// JSONC turns ".jsonc" files into plain JSON files by removing comments and trailing commas.
// Other files are passed on unchanged.
func JSONC(map[string]any) (pipeline.Stage[*artifact.File], error) {
	return pipeline.Map(func(file *artifact.File) (*artifact.File, error) {
		if file.Ext() != ".jsonc" {
			return file, nil
		}

		out := file.WithExt(".json")
		out.Contents = jsonc.ToJSON(file.Contents)

		return out, nil
	}), nil
}

// Header writes the "text" option followed by a new line at the top of every file.
func Header(options map[string]any) (pipeline.Stage[*artifact.File], error) {
	text, err := stringOption(options, "text", "")
	if err != nil {
		return pipeline.Stage[*artifact.File]{}, err
	}

	if text == "" {
		return pipeline.Stage[*artifact.File]{}, errors.Wrap(ErrInvalidConfig, "header text must be set")
	}

	return pipeline.Map(func(file *artifact.File) (*artifact.File, error) {
		contents := make([]byte, 0, len(text)+1+len(file.Contents))
		contents = append(contents, text...)
		contents = append(contents, '\n')
		contents = append(contents, file.Contents...)

		return file.WithContents(contents), nil
	}), nil
}

// FilterFiles keeps the files matching the "pattern" option, or drops them when "exclude" is
// set.
func FilterFiles(options map[string]any) (pipeline.Stage[*artifact.File], error) {
	pattern, err := stringOption(options, "pattern", "")
	if err != nil {
		return pipeline.Stage[*artifact.File]{}, err
	}

	exclude, err := boolOption(options, "exclude", false)
	if err != nil {
		return pipeline.Stage[*artifact.File]{}, err
	}

	if err := artifact.ValidatePattern(pattern); err != nil {
		return pipeline.Stage[*artifact.File]{}, errors.Wrapf(ErrInvalidConfig, "filter pattern: %v", err)
	}

	return pipeline.Filter(func(file *artifact.File) bool {
		ok, _ := artifact.Match(pattern, file.Path)

		return ok != exclude
	}), nil
}
