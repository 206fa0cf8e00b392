package artifact

import (
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

const defaultMode fs.FileMode = 0o644

// File is a build artifact. Path is slash separated and relative to Base.
type File struct {
	Path     string
	Base     string
	Contents []byte
	Mode     fs.FileMode
	ModTime  time.Time
}

// Clone returns a deep copy of f. Steps clone the files they change so artifacts shared by
// several runs stay untouched.
func (f *File) Clone() *File {
	c := *f
	c.Contents = slices.Clone(f.Contents)

	return &c
}

func (f *File) Ext() string {
	return path.Ext(f.Path)
}

// WithExt returns a copy of f whose extension is replaced by ext. ext includes the dot.
func (f *File) WithExt(ext string) *File {
	c := f.Clone()
	c.Path = strings.TrimSuffix(f.Path, f.Ext()) + ext

	return c
}

// WithContents returns a copy of f holding contents.
func (f *File) WithContents(contents []byte) *File {
	c := *f
	c.Contents = contents

	return &c
}

func (f *File) String() string {
	return f.Path
}
