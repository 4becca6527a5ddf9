package crlfstat

import (
	"slices"
	"sync"
	"time"
)

// Stats holds aggregate statistics for a directory walk.
type Stats struct {
	// TotalFiles is the number of files that were opened and read to a verdict.
	TotalFiles int64 `json:"total_files"`
	// BinaryFiles is the number of files classified as binary.
	BinaryFiles int64 `json:"binary_files"`
	// LFOnlyFiles is the number of text files with only bare LF line breaks.
	LFOnlyFiles int64 `json:"lf_only_files"`
	// CRLFOnlyFiles is the number of text files with only CRLF line breaks.
	CRLFOnlyFiles int64 `json:"crlf_only_files"`
	// MixedEOLFiles is the number of text files with both kinds of line break.
	MixedEOLFiles int64 `json:"mixed_eol_files"`
	// SpaceOnlyFiles is the number of text files indented with spaces only.
	SpaceOnlyFiles int64 `json:"space_only_files"`
	// TabOnlyFiles is the number of text files indented with tabs only.
	TabOnlyFiles int64 `json:"tab_only_files"`
	// MixedIndentFiles is the number of text files indented with both.
	MixedIndentFiles int64 `json:"mixed_indent_files"`
	// BinaryExtensions lists the distinct extensions of binary files, sorted.
	BinaryExtensions []string `json:"binary_extensions"`
	// MixedEOLExtensions lists the distinct extensions of mixed-EOL files, sorted.
	MixedEOLExtensions []string `json:"mixed_eol_extensions"`
	// MixedIndentExtensions lists the distinct extensions of mixed-indent files, sorted.
	MixedIndentExtensions []string `json:"mixed_indent_extensions"`
	// TotalBytes is the number of bytes read across all classified files.
	TotalBytes int64 `json:"total_bytes"`
	// ErrorCount is the number of files that could not be opened or read.
	ErrorCount int64 `json:"error_count"`
	// Elapsed is the total time taken for analysis.
	Elapsed time.Duration `json:"elapsed"`
}

// HasMixed reports whether any file mixed line endings or indentation.
func (s *Stats) HasMixed() bool {
	return s.MixedEOLFiles > 0 || s.MixedIndentFiles > 0
}

// Aggregator folds verdicts into running totals.
// It is safe for concurrent use, since fastwalk calls back from several goroutines.
type Aggregator struct {
	mu sync.Mutex

	totalFiles       int64
	binaryFiles      int64
	lfOnlyFiles      int64
	crlfOnlyFiles    int64
	mixedEOLFiles    int64
	spaceOnlyFiles   int64
	tabOnlyFiles     int64
	mixedIndentFiles int64
	totalBytes       int64
	errorCount       int64

	binaryExts      map[string]struct{}
	mixedEOLExts    map[string]struct{}
	mixedIndentExts map[string]struct{}
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		binaryExts:      make(map[string]struct{}),
		mixedEOLExts:    make(map[string]struct{}),
		mixedIndentExts: make(map[string]struct{}),
	}
}

// Add folds one verdict in.
// Binary files only touch the binary tallies. Text files bump at most one
// line-ending counter and at most one indentation counter.
func (a *Aggregator) Add(v Verdict) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalFiles++
	a.totalBytes += v.Bytes

	if v.Binary {
		a.binaryFiles++
		a.binaryExts[v.Ext] = struct{}{}

		return
	}

	switch v.EOL() {
	case EOLMixed:
		a.mixedEOLFiles++
		a.mixedEOLExts[v.Ext] = struct{}{}
	case EOLCRLF:
		a.crlfOnlyFiles++
	case EOLLF:
		a.lfOnlyFiles++
	case EOLNone:
	}

	switch v.Indent() {
	case IndentMixed:
		a.mixedIndentFiles++
		a.mixedIndentExts[v.Ext] = struct{}{}
	case IndentSpace:
		a.spaceOnlyFiles++
	case IndentTab:
		a.tabOnlyFiles++
	case IndentNone:
	}
}

// AddError records a file that could not be classified.
func (a *Aggregator) AddError() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.errorCount++
}

// Progress returns the number of files and bytes seen so far.
func (a *Aggregator) Progress() (int64, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.totalFiles, a.totalBytes
}

// Snapshot produces Stats from the current totals, with extension sets sorted.
func (a *Aggregator) Snapshot() *Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &Stats{
		TotalFiles:            a.totalFiles,
		BinaryFiles:           a.binaryFiles,
		LFOnlyFiles:           a.lfOnlyFiles,
		CRLFOnlyFiles:         a.crlfOnlyFiles,
		MixedEOLFiles:         a.mixedEOLFiles,
		SpaceOnlyFiles:        a.spaceOnlyFiles,
		TabOnlyFiles:          a.tabOnlyFiles,
		MixedIndentFiles:      a.mixedIndentFiles,
		BinaryExtensions:      sortedKeys(a.binaryExts),
		MixedEOLExtensions:    sortedKeys(a.mixedEOLExts),
		MixedIndentExtensions: sortedKeys(a.mixedIndentExts),
		TotalBytes:            a.totalBytes,
		ErrorCount:            a.errorCount,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
