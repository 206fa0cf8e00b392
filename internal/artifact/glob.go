package artifact

import (
	"io/fs"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-warlock/pkg/pipeline"
)

var ErrEmptyPattern = errors.New("empty pattern")

// Match reports whether the slash separated name matches pattern. Besides the path.Match
// syntax, a "**" segment matches zero or more non empty segments: "src/**" matches "src" itself
// and "src/**/app.js" matches "src/app.js".
func Match(pattern, name string) (bool, error) {
	if pattern == "" {
		return false, ErrEmptyPattern
	}

	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pattern, name []string) (bool, error) {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			for len(pattern) > 0 && pattern[0] == "**" {
				pattern = pattern[1:]
			}

			if len(pattern) == 0 {
				return true, nil
			}

			for i := range name {
				// "**" never consumes an empty segment
				if i > 0 && name[i-1] == "" {
					return false, nil
				}

				ok, err := matchSegments(pattern, name[i:])
				if err != nil || ok {
					return ok, err
				}
			}

			return false, nil
		}

		if len(name) == 0 {
			return false, nil
		}

		ok, err := path.Match(pattern[0], name[0])
		if err != nil {
			return false, errors.Wrapf(err, "invalid pattern segment %q", pattern[0])
		}

		if !ok {
			return false, nil
		}

		pattern, name = pattern[1:], name[1:]
	}

	return len(name) == 0, nil
}

type matcher struct {
	include []string
	exclude []string
}

// ValidatePattern returns an error when pattern is empty or holds a malformed segment.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return ErrEmptyPattern
	}

	for _, segment := range strings.Split(pattern, "/") {
		if _, err := path.Match(segment, ""); err != nil {
			return errors.Wrapf(err, "invalid pattern %q", pattern)
		}
	}

	return nil
}

// newMatcher splits patterns into included and excluded ones. Excluded patterns start with "!".
func newMatcher(patterns []string) (*matcher, error) {
	m := &matcher{}

	for _, pattern := range patterns {
		negated, exclude := strings.CutPrefix(pattern, "!")
		if exclude {
			pattern = negated
		}

		if err := ValidatePattern(pattern); err != nil {
			return nil, err
		}

		if exclude {
			m.exclude = append(m.exclude, path.Clean(pattern))
		} else {
			m.include = append(m.include, path.Clean(pattern))
		}
	}

	return m, nil
}

func (m *matcher) match(name string) bool {
	for _, pattern := range m.exclude {
		if ok, _ := Match(pattern, name); ok {
			return false
		}
	}

	for _, pattern := range m.include {
		if ok, _ := Match(pattern, name); ok {
			return true
		}
	}

	return false
}

// Glob returns a source reading the regular files of fsys matching patterns, in lexical order.
// Every range over the stream walks fsys again. base is recorded in the files read.
func Glob(fsys fs.FS, base string, patterns ...string) pipeline.Stream[*File] {
	return func(yield func(*File, error) bool) {
		m, err := newMatcher(patterns)
		if err != nil {
			yield(nil, err)

			return
		}

		stopped := false

		err = fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !entry.Type().IsRegular() || !m.match(name) {
				return nil
			}

			info, err := entry.Info()
			if err != nil {
				return errors.Wrapf(err, "unable to stat %s", name)
			}

			contents, err := fs.ReadFile(fsys, name)
			if err != nil {
				return errors.Wrapf(err, "unable to read %s", name)
			}

			file := &File{
				Path:     name,
				Base:     base,
				Contents: contents,
				Mode:     info.Mode().Perm(),
				ModTime:  info.ModTime(),
			}

			if !yield(file, nil) {
				stopped = true

				return fs.SkipAll
			}

			return nil
		})
		if err != nil && !stopped {
			yield(nil, errors.Wrap(err, "unable to walk files"))
		}
	}
}
