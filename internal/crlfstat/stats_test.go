package crlfstat_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idelchi/crlfstat/internal/crlfstat"
)

func TestAggregatorAdd(t *testing.T) {
	t.Parallel()

	agg := crlfstat.NewAggregator()

	agg.Add(crlfstat.Verdict{Ext: ".txt"})
	agg.Add(crlfstat.Verdict{Binary: true, Ext: ".png", Bytes: 10})
	agg.Add(crlfstat.Verdict{Binary: true, Ext: ".png", LF: true, TabIndent: true})
	agg.Add(crlfstat.Verdict{Binary: true, Ext: ""})
	agg.Add(crlfstat.Verdict{LF: true, SpaceIndent: true, Ext: ".go", Bytes: 5})
	agg.Add(crlfstat.Verdict{CRLF: true, TabIndent: true, Ext: ".c"})
	agg.Add(crlfstat.Verdict{LF: true, CRLF: true, SpaceIndent: true, TabIndent: true, Ext: ".h"})
	agg.Add(crlfstat.Verdict{LF: true, CRLF: true, Ext: ".h"})
	agg.AddError()

	stats := agg.Snapshot()

	assert.Equal(t, &crlfstat.Stats{
		TotalFiles:            8,
		BinaryFiles:           3,
		LFOnlyFiles:           1,
		CRLFOnlyFiles:         1,
		MixedEOLFiles:         2,
		SpaceOnlyFiles:        1,
		TabOnlyFiles:          1,
		MixedIndentFiles:      1,
		BinaryExtensions:      []string{"", ".png"},
		MixedEOLExtensions:    []string{".h"},
		MixedIndentExtensions: []string{".h"},
		TotalBytes:            15,
		ErrorCount:            1,
	}, stats)
	assert.True(t, stats.HasMixed())
}

func TestAggregatorEmptyFileCountsOnlyTotal(t *testing.T) {
	t.Parallel()

	agg := crlfstat.NewAggregator()
	agg.Add(crlfstat.Verdict{Ext: ".md"})

	stats := agg.Snapshot()

	assert.Equal(t, int64(1), stats.TotalFiles)
	assert.Zero(t, stats.LFOnlyFiles+stats.CRLFOnlyFiles+stats.MixedEOLFiles)
	assert.Zero(t, stats.SpaceOnlyFiles+stats.TabOnlyFiles+stats.MixedIndentFiles)
	assert.False(t, stats.HasMixed())
	assert.Empty(t, stats.BinaryExtensions)
}

func TestAggregatorConcurrentAdd(t *testing.T) {
	t.Parallel()

	agg := crlfstat.NewAggregator()

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				agg.Add(crlfstat.Verdict{LF: true, CRLF: true, Ext: ".txt", Bytes: 1})
			}
		}()
	}

	wg.Wait()

	stats := agg.Snapshot()
	files, bytes := agg.Progress()

	assert.Equal(t, int64(800), stats.TotalFiles)
	assert.Equal(t, int64(800), stats.MixedEOLFiles)
	assert.Equal(t, []string{".txt"}, stats.MixedEOLExtensions)
	assert.Equal(t, int64(800), files)
	assert.Equal(t, int64(800), bytes)
}

func TestVerdictClassLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "MIX", crlfstat.EOLMixed.String())
	assert.Equal(t, "CRLF", crlfstat.EOLCRLF.String())
	assert.Equal(t, "NONE", crlfstat.IndentNone.String())
	assert.Equal(t, "TAB", crlfstat.IndentTab.String())
}
