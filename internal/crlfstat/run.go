package crlfstat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charlievieth/fastwalk"
	gitignore "github.com/monochromegane/go-gitignore"
	"github.com/src-d/enry/v2"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

var (
	// ErrInvalidPath is returned when the root does not exist or is not a directory.
	ErrInvalidPath = errors.New("invalid root path")
	// ErrInvalidPattern is returned when an exclusion pattern does not compile.
	ErrInvalidPattern = errors.New("invalid exclusion pattern")
)

// Options configures a walk.
type Options struct {
	// Path is the directory to analyze.
	Path string
	// Extensions to include (empty = all). A '!' prefix excludes instead.
	Extensions []string
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// Depth is the maximum traversal depth (0=unlimited).
	Depth int
	// Jobs is the number of walker goroutines (0=fastwalk default).
	Jobs int
	// BufferSize is the read chunk size per file (0=DefaultBufferSize).
	BufferSize int
	// Follow makes the walk follow symbolic links. Directory cycles are broken by fastwalk.
	Follow bool
	// NoIgnore disables the root .gitignore.
	NoIgnore bool
	// SkipVendor skips paths that look vendored (node_modules, vendor, third_party, ...).
	SkipVendor bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives debug diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Hooks are optional callbacks fired during the walk. They may be called
// from several goroutines at once.
type Hooks struct {
	// Progress receives (files, bytes) on each tick.
	Progress func(files, bytes int64)
	// MixedEOL receives the display path of each file found to mix line endings,
	// as soon as it is classified.
	MixedEOL func(path string)
	// FileError receives files that could not be opened or read. They are not counted.
	FileError func(path string, err error)
}

// calculateDepth returns the depth of a path relative to the root.
func calculateDepth(path, root string) int {
	relPath := strings.TrimPrefix(path, root)

	relPath = strings.TrimPrefix(relPath, string(filepath.Separator))
	if relPath == "" {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// shouldExcludeByPattern checks if path matches any exclusion regex.
func shouldExcludeByPattern(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// shouldIncludeByExtension checks if file should be included based on extension filters.
func shouldIncludeByExtension(path string, include, exclude map[string]struct{}) bool {
	for ext := range exclude {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	if len(include) == 0 {
		return true
	}

	for ext := range include {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	return false
}

// extension returns the suffix of the file name, dot included.
// Dot files such as ".gitignore" have no extension.
func extension(path string) string {
	base := filepath.Base(path)

	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}

	return ext
}

// classifyFile opens path and classifies its contents.
// The file is closed on every return path.
func classifyFile(path string, bufSize int) (Verdict, error) {
	file, err := os.Open(path)
	if err != nil {
		return Verdict{}, err
	}
	defer file.Close()

	return Classify(file, bufSize, extension(path))
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, agg *Aggregator, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(agg.Progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// loadGitignore returns the matcher for root/.gitignore, or nil when absent.
func loadGitignore(root string, log *slog.Logger) gitignore.IgnoreMatcher {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	matcher, err := gitignore.NewGitIgnore(path)
	if err != nil {
		log.Warn("could not parse .gitignore", "path", path, "error", err)

		return nil
	}

	log.Debug("using .gitignore", "path", path)

	return matcher
}

// displayer maps walk paths to what the user sees: relative to the working
// directory when the root is inside it, absolute otherwise.
type displayer struct {
	cwd        string
	outsideCwd bool
}

func newDisplayer(root string) (displayer, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return displayer{}, fmt.Errorf("getting current directory: %w", err)
	}

	absTargetPath, err := filepath.Abs(root)
	if err != nil {
		return displayer{}, fmt.Errorf("resolving absolute path: %w", err)
	}

	relToTarget, err := filepath.Rel(cwd, absTargetPath)

	return displayer{
		cwd:        cwd,
		outsideCwd: err != nil || strings.HasPrefix(relToTarget, ".."),
	}, nil
}

func (d displayer) path(path string) string {
	if d.outsideCwd {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}

		return path
	}

	if rel, err := filepath.Rel(d.cwd, path); err == nil {
		return rel
	}

	return path
}

// Run walks the directory tree at opt.Path and classifies every regular file
// that passes the filters, returning the aggregated statistics.
//
// A root that is missing or not a directory fails with ErrInvalidPath before
// anything is read. Files that cannot be opened or read are passed to
// hooks.FileError and otherwise ignored; the walk carries on.
//
// The walk can be cancelled via ctx.
//
//nolint:gocognit,funlen,gocyclo,cyclop // Walk callback holds the filter chain.
func Run(ctx context.Context, opt Options, hooks Hooks) (*Stats, error) {
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if opt.Path == "" {
		opt.Path = "."
	}

	opt.Path = filepath.Clean(opt.Path)

	if statInfo, err := os.Stat(opt.Path); err != nil {
		return nil, fmt.Errorf("%w: accessing path %q: %w", ErrInvalidPath, opt.Path, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", ErrInvalidPath, opt.Path)
	}

	display, err := newDisplayer(opt.Path)
	if err != nil {
		return nil, err
	}

	extInclude := make(map[string]struct{}, len(opt.Extensions))
	extExclude := make(map[string]struct{}, len(opt.Extensions))

	for _, e := range opt.Extensions { //nolint:varnamelen // e is standard for element in range
		e = strings.Trim(e, "'\"")

		if strings.HasPrefix(e, "!") {
			extExclude[strings.TrimPrefix(e, "!")] = struct{}{}
		} else {
			extInclude[e] = struct{}{}
		}
	}

	excludeRegexes := make([]*regexp.Regexp, 0, len(opt.Excludes))

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, p, err)
		}

		excludeRegexes = append(excludeRegexes, re)
	}

	var ignore gitignore.IgnoreMatcher
	if !opt.NoIgnore {
		ignore = loadGitignore(opt.Path, log)
	}

	log.Debug("walk configured",
		"path", opt.Path,
		"include", opt.Extensions,
		"exclude", opt.Excludes,
		"depth", opt.Depth,
		"follow", opt.Follow,
		"buffer_size", opt.BufferSize,
	)

	agg := NewAggregator()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(ctx, agg, hooks.Progress, opt.ProgressInterval)

	reportError := func(path string, err error) {
		agg.AddError()

		if hooks.FileError != nil {
			hooks.FileError(display.path(path), err)
		}
	}

	start := time.Now()

	conf := &fastwalk.Config{
		Follow:     opt.Follow,
		NumWorkers: opt.Jobs,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, opt.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			reportError(path, err)

			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path == opt.Path {
			return nil
		}

		currentDepth := calculateDepth(path, opt.Path)
		if opt.Depth > 0 && currentDepth > opt.Depth {
			log.Debug("skipping (beyond depth)", "depth", opt.Depth, "path", path)

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if matchedPattern := shouldExcludeByPattern(path, excludeRegexes); matchedPattern != nil {
			log.Debug("excluding", "path", filepath.ToSlash(path), "regex", matchedPattern.String())

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if ignore != nil && ignore.Match(path, d.IsDir()) {
			log.Debug("excluding (.gitignore)", "path", filepath.ToSlash(path))

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if opt.SkipVendor {
			rel, relErr := filepath.Rel(opt.Path, path)
			if relErr == nil {
				rel = filepath.ToSlash(rel)
				if d.IsDir() {
					rel += "/"
				}

				if enry.IsVendor(rel) {
					log.Debug("excluding (vendored)", "path", rel)

					if d.IsDir() {
						return filepath.SkipDir
					}

					return nil
				}
			}
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !opt.Follow {
				log.Debug("skipping symbolic link", "path", path)

				return nil
			}

			target, statErr := os.Stat(path)
			if statErr != nil {
				reportError(path, statErr)

				return nil
			}

			// Directory links are descended into by fastwalk itself.
			if !target.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			log.Debug("skipping non-regular file", "path", path, "type", d.Type().String())

			return nil
		}

		if !shouldIncludeByExtension(path, extInclude, extExclude) {
			log.Debug("excluding (extension filter)", "path", path)

			return nil
		}

		verdict, err := classifyFile(path, opt.BufferSize)
		if err != nil {
			reportError(path, err)

			return nil
		}

		agg.Add(verdict)

		if !verdict.Binary && verdict.EOL() == EOLMixed && hooks.MixedEOL != nil {
			hooks.MixedEOL(display.path(path))
		}

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	stats := agg.Snapshot()

	stats.Elapsed = time.Since(start)

	return stats, nil
}
