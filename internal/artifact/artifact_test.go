package artifact_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-warlock/internal/artifact"
	"github.com/askiada/go-warlock/pkg/pipeline"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		pattern  string
		name     string
		expected bool
	}{
		"exact":              {pattern: "src/app.js", name: "src/app.js", expected: true},
		"star":               {pattern: "src/*.js", name: "src/app.js", expected: true},
		"star no nesting":    {pattern: "src/*.js", name: "src/lib/app.js", expected: false},
		"double star":        {pattern: "src/**/*.js", name: "src/lib/deep/app.js", expected: true},
		"double star direct": {pattern: "src/**/*.js", name: "src/app.js", expected: true},
		"double star end":    {pattern: "src/**", name: "src/lib/app.js", expected: true},
		"leading":            {pattern: "**/*.md", name: "docs/index.md", expected: true},
		"other ext":          {pattern: "**/*.md", name: "docs/index.html", expected: false},
		"shorter name":       {pattern: "src/lib/*.js", name: "src", expected: false},
		"double star self":   {pattern: "src/**", name: "src", expected: true},
		"double star only":   {pattern: "**", name: "a/b/c", expected: true},
		"leading exact":      {pattern: "**/app.js", name: "app.js", expected: true},
		"interior zero":      {pattern: "src/**/app.js", name: "src/app.js", expected: true},
		"interior two":       {pattern: "src/**/app.js", name: "src/a/b/app.js", expected: true},
		"interior other":     {pattern: "src/**/app.js", name: "src/a/main.js", expected: false},
		"empty segment":      {pattern: "src/**/app.js", name: "src//app.js", expected: false},
		"partial prefix":     {pattern: "src/**", name: "srcx/app.js", expected: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := artifact.Match(tc.pattern, tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestMatchErrors(t *testing.T) {
	t.Parallel()

	_, err := artifact.Match("", "a")
	require.ErrorIs(t, err, artifact.ErrEmptyPattern)

	_, err = artifact.Match("[", "[")
	require.Error(t, err)
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"src/app.js":           {Data: []byte("app"), Mode: 0o644},
		"src/lib/util.js":      {Data: []byte("util"), Mode: 0o600},
		"src/lib/util.test.js": {Data: []byte("test"), Mode: 0o644},
		"docs/index.md":        {Data: []byte("# docs")},
	}
}

func paths(files []*artifact.File) []string {
	res := make([]string, 0, len(files))
	for _, file := range files {
		res = append(res, file.Path)
	}

	return res
}

func TestGlob(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		patterns []string
		expected []string
	}{
		"all js": {
			patterns: []string{"src/**/*.js"},
			expected: []string{"src/app.js", "src/lib/util.js", "src/lib/util.test.js"},
		},
		"negated": {
			patterns: []string{"src/**/*.js", "!**/*.test.js"},
			expected: []string{"src/app.js", "src/lib/util.js"},
		},
		"several": {
			patterns: []string{"docs/*.md", "src/*.js"},
			expected: []string{"docs/index.md", "src/app.js"},
		},
		"none": {
			patterns: []string{"*.css"},
			expected: []string{},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			files, err := pipeline.Collect(context.Background(), artifact.Glob(testFS(), "root", tc.patterns...))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, paths(files))
		})
	}
}

func TestGlobFileDetails(t *testing.T) {
	t.Parallel()

	source := artifact.Glob(testFS(), "root", "src/lib/util.js")

	files, err := pipeline.Collect(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "root", files[0].Base)
	assert.Equal(t, []byte("util"), files[0].Contents)
	assert.Equal(t, os.FileMode(0o600), files[0].Mode)

	// the source is read again on every range
	again, err := pipeline.Collect(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, files, again)
}

func TestGlobInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := pipeline.Collect(context.Background(), artifact.Glob(testFS(), "", "src/[.js"))
	require.Error(t, err)

	_, err = pipeline.Collect(context.Background(), artifact.Glob(testFS(), "", "!"))
	require.ErrorIs(t, err, artifact.ErrEmptyPattern)
}

func TestGlobStops(t *testing.T) {
	t.Parallel()

	count := 0
	for _, err := range artifact.Glob(testFS(), "", "**") {
		require.NoError(t, err)

		count++
		if count == 2 {
			break
		}
	}

	assert.Equal(t, 2, count)
}

func TestFile(t *testing.T) {
	t.Parallel()

	file := &artifact.File{Path: "docs/index.md", Contents: []byte("# docs")}
	assert.Equal(t, ".md", file.Ext())
	assert.Equal(t, "docs/index.md", file.String())

	html := file.WithExt(".html")
	assert.Equal(t, "docs/index.html", html.Path)
	assert.Equal(t, "docs/index.md", file.Path)

	clone := file.Clone()
	clone.Contents[0] = '!'
	assert.Equal(t, []byte("# docs"), file.Contents)

	replaced := file.WithContents([]byte("new"))
	assert.Equal(t, []byte("new"), replaced.Contents)
	assert.Equal(t, []byte("# docs"), file.Contents)
}

func TestDest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pipe, err := pipeline.New("scripts",
		pipeline.WithSource(artifact.Glob(testFS(), "", "src/**/*.js")),
		pipeline.WithDestination(artifact.Dest(filepath.Join(dir, "build"))),
	)
	require.NoError(t, err)

	files, err := pipe.Run(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	content, err := os.ReadFile(filepath.Join(dir, "build", "src", "lib", "util.js"))
	require.NoError(t, err)
	assert.Equal(t, "util", string(content))
}

func TestDestErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		dir  string
		file *artifact.File
	}{
		"empty dir": {dir: "", file: &artifact.File{Path: "a.js"}},
		"escaping":  {dir: t.TempDir(), file: &artifact.File{Path: "../a.js"}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pipe, err := pipeline.New("p1",
				pipeline.WithSource(pipeline.FromSlice([]*artifact.File{tc.file})),
				pipeline.WithDestination(artifact.Dest(tc.dir)),
			)
			require.NoError(t, err)

			_, err = pipe.Run(context.Background(), "")
			require.ErrorIs(t, err, pipeline.ErrInvalidDestination)
		})
	}
}
