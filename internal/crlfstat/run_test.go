package crlfstat_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/crlfstat/internal/crlfstat"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}

func sampleTree(t *testing.T) string {
	t.Helper()

	return writeTree(t, map[string]string{
		"empty.md":          "",
		"zero.bin":          "\x00",
		"lf.txt":            "hello\n",
		"mixed.txt":         "line1\r\nline2\n\r\n\n",
		"bom.txt":           "\xEF\xBB\xBFabc\n",
		"sub/indent.go":     "\tfoo\n bar\n",
		"sub/deeper/crlf.c": "int x;\r\n    y;\r\n",
		"sub/deeper/tab.py": "a\n\tb\n",
	})
}

func run(t *testing.T, opt crlfstat.Options, hooks crlfstat.Hooks) *crlfstat.Stats {
	t.Helper()

	stats, err := crlfstat.Run(context.Background(), opt, hooks)
	require.NoError(t, err)

	return stats
}

func TestRun(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)

	var (
		mu    sync.Mutex
		mixed []string
	)

	stats := run(t, crlfstat.Options{Path: root}, crlfstat.Hooks{
		MixedEOL: func(path string) {
			mu.Lock()
			defer mu.Unlock()

			mixed = append(mixed, filepath.Base(path))
		},
	})

	assert.Equal(t, int64(8), stats.TotalFiles)
	assert.Equal(t, int64(1), stats.BinaryFiles)
	assert.Equal(t, []string{".bin"}, stats.BinaryExtensions)
	assert.Equal(t, int64(4), stats.LFOnlyFiles)
	assert.Equal(t, int64(1), stats.CRLFOnlyFiles)
	assert.Equal(t, int64(1), stats.MixedEOLFiles)
	assert.Equal(t, []string{".txt"}, stats.MixedEOLExtensions)
	assert.Equal(t, int64(1), stats.SpaceOnlyFiles)
	assert.Equal(t, int64(1), stats.TabOnlyFiles)
	assert.Equal(t, int64(1), stats.MixedIndentFiles)
	assert.Equal(t, []string{".go"}, stats.MixedIndentExtensions)
	assert.Zero(t, stats.ErrorCount)
	assert.Equal(t, []string{"mixed.txt"}, mixed)
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)

	first := run(t, crlfstat.Options{Path: root}, crlfstat.Hooks{})
	second := run(t, crlfstat.Options{Path: root}, crlfstat.Hooks{})

	first.Elapsed, second.Elapsed = 0, 0

	assert.Equal(t, first, second)
}

func TestRunBufferSizeIndependence(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)

	want := run(t, crlfstat.Options{Path: root}, crlfstat.Hooks{})
	want.Elapsed = 0

	for _, size := range []int{3, 4, 7, 64} {
		got := run(t, crlfstat.Options{Path: root, BufferSize: size, Jobs: 1}, crlfstat.Hooks{})
		got.Elapsed = 0

		assert.Equal(t, want, got, "buffer size %d", size)
	}
}

func TestRunInvalidRoot(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)

	_, err := crlfstat.Run(context.Background(), crlfstat.Options{Path: filepath.Join(root, "missing")}, crlfstat.Hooks{})
	require.ErrorIs(t, err, crlfstat.ErrInvalidPath)

	_, err = crlfstat.Run(context.Background(), crlfstat.Options{Path: filepath.Join(root, "lf.txt")}, crlfstat.Hooks{})
	require.ErrorIs(t, err, crlfstat.ErrInvalidPath)
}

func TestRunInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := crlfstat.Run(context.Background(), crlfstat.Options{Path: t.TempDir(), Excludes: []string{"("}}, crlfstat.Hooks{})
	require.ErrorIs(t, err, crlfstat.ErrInvalidPattern)
}

func TestRunFilters(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)

	tests := []struct {
		name  string
		opt   crlfstat.Options
		total int64
	}{
		{name: "depth", opt: crlfstat.Options{Depth: 1}, total: 5},
		{name: "include extension", opt: crlfstat.Options{Extensions: []string{".txt"}}, total: 3},
		{name: "exclude extension", opt: crlfstat.Options{Extensions: []string{"!.txt"}}, total: 5},
		{name: "exclude regex", opt: crlfstat.Options{Excludes: []string{`sub/deeper`}}, total: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opt := tt.opt
			opt.Path = root

			assert.Equal(t, tt.total, run(t, opt, crlfstat.Hooks{}).TotalFiles)
		})
	}
}

func TestRunGitignore(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		".gitignore": "*.log\n",
		"app.log":    "x\r\n",
		"main.go":    "x\n",
	})

	stats := run(t, crlfstat.Options{Path: root}, crlfstat.Hooks{})
	assert.Equal(t, int64(2), stats.TotalFiles)
	assert.Zero(t, stats.CRLFOnlyFiles)

	stats = run(t, crlfstat.Options{Path: root, NoIgnore: true}, crlfstat.Hooks{})
	assert.Equal(t, int64(3), stats.TotalFiles)
	assert.Equal(t, int64(1), stats.CRLFOnlyFiles)
}

func TestRunSkipVendor(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"main.go":            "x\n",
		"vendor/lib/lib.go":  "x\r\n",
		"node_modules/a.js":  "x\r\n",
		"internal/vendor.go": "x\n",
	})

	stats := run(t, crlfstat.Options{Path: root, SkipVendor: true}, crlfstat.Hooks{})
	assert.Equal(t, int64(2), stats.TotalFiles)
	assert.Zero(t, stats.CRLFOnlyFiles)

	stats = run(t, crlfstat.Options{Path: root}, crlfstat.Hooks{})
	assert.Equal(t, int64(4), stats.TotalFiles)
}

func TestRunSymlinks(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)

	require.NoError(t, os.Symlink(filepath.Join(root, "lf.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "sub", "loop")))

	stats := run(t, crlfstat.Options{Path: root}, crlfstat.Hooks{})
	assert.Equal(t, int64(8), stats.TotalFiles, "links are skipped by default")

	stats = run(t, crlfstat.Options{Path: root, Follow: true}, crlfstat.Hooks{})
	assert.Equal(t, int64(9), stats.TotalFiles, "file link counted once, directory cycle not entered")
	assert.Equal(t, int64(5), stats.LFOnlyFiles)
}

func TestRunUnreadableFileIsReportedAndSkipped(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)

	require.NoError(t, os.Symlink(filepath.Join(root, "missing.txt"), filepath.Join(root, "dangling.txt")))

	var (
		mu     sync.Mutex
		failed []string
	)

	stats := run(t, crlfstat.Options{Path: root, Follow: true}, crlfstat.Hooks{
		FileError: func(path string, err error) {
			mu.Lock()
			defer mu.Unlock()

			assert.Error(t, err)

			failed = append(failed, filepath.Base(path))
		},
	})

	assert.Equal(t, int64(8), stats.TotalFiles)
	assert.Equal(t, int64(1), stats.ErrorCount)
	assert.Equal(t, []string{"dangling.txt"}, failed)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	root := sampleTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := crlfstat.Run(ctx, crlfstat.Options{Path: root}, crlfstat.Hooks{})
	require.ErrorIs(t, err, context.Canceled)
}
