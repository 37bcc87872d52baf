// Package provider implements the line provider abstraction: a uniform
// pull interface {Kind, FileName, TotalLines, Tail, Range, Dispose}
// with two closed concrete variants, selected by file size against
// LargeFileThreshold.
package provider

import (
	"fmt"
	"os"

	"github.com/alienxp03/logbench/internal/classify"
	"github.com/alienxp03/logbench/internal/linestore"
	"github.com/alienxp03/logbench/internal/offsetindex"
)

// LargeFileThreshold is the byte-size cutoff above which a file is
// served index-only rather than mirrored into the persisted store.
const LargeFileThreshold = 50 * 1024 * 1024

// smallFileImportBatch is the chunk size used to enumerate a small
// file's lines while populating the persisted store.
const smallFileImportBatch = 20000

// Kind tags which concrete variant a Provider is.
type Kind int

const (
	Small Kind = iota
	Large
)

func (k Kind) String() string {
	if k == Small {
		return "small"
	}
	return "large"
}

// LogLine is a single decoded line as handed to callers by Tail/Range.
type LogLine struct {
	ID         string
	FileName   string
	LineNumber int
	Content    string
	Level      classify.Severity
}

// Provider is the uniform pull interface both variants implement.
type Provider interface {
	Kind() Kind
	FileName() string
	TotalLines() int
	Tail(n int) ([]LogLine, error)
	Range(from, to int) ([]LogLine, error)
	Dispose() error
}

// Options configures New.
type Options struct {
	ChunkSize          int64 // offset-index build chunk size; 0 = default
	LargeFileThreshold int64 // 0 = LargeFileThreshold
	Store              *linestore.Store // required for small files
}

// New builds the offset index (always) and selects small- or
// large-file behavior by comparing the file's byte size against the
// configured threshold.
func New(path string, opts Options) (Provider, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("provider: stat %s: %w", path, err)
	}

	threshold := opts.LargeFileThreshold
	if threshold <= 0 {
		threshold = LargeFileThreshold
	}

	ix, err := offsetindex.Build(path, offsetindex.Options{ChunkSize: opts.ChunkSize})
	if err != nil {
		return nil, err
	}

	if info.Size() > threshold || opts.Store == nil {
		return &largeFileProvider{index: ix}, nil
	}

	sp := &smallFileProvider{index: ix, store: opts.Store, fileName: ix.FileName()}
	if err := sp.populate(); err != nil {
		// Storage failures degrade the file to the large-file path
		// rather than aborting the import.
		return &largeFileProvider{index: ix}, nil
	}
	return sp, nil
}
