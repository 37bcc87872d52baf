package provider

import (
	"fmt"

	"github.com/alienxp03/logbench/internal/classify"
	"github.com/alienxp03/logbench/internal/offsetindex"
)

// largeFileProvider keeps only the offset index in memory; Tail/Range
// call ReadLines and classify severity on the fly, never persisting
// anything.
type largeFileProvider struct {
	index *offsetindex.Index
}

func (p *largeFileProvider) Kind() Kind         { return Large }
func (p *largeFileProvider) FileName() string   { return p.index.FileName() }
func (p *largeFileProvider) TotalLines() int    { return p.index.TotalLines() }

func (p *largeFileProvider) Tail(n int) ([]LogLine, error) {
	total := p.index.TotalLines()
	from := total - n + 1
	if from < 1 {
		from = 1
	}
	return p.Range(from, total)
}

func (p *largeFileProvider) Range(from, to int) ([]LogLine, error) {
	raw, err := p.index.ReadLines(from, to)
	if err != nil {
		return nil, fmt.Errorf("largeFileProvider.Range: %w", err)
	}
	lines := make([]LogLine, len(raw))
	// Clamp mirrors offsetindex.ReadLines' own clamping so the returned
	// line numbers line up with the content actually read.
	total := p.index.TotalLines()
	if from < 1 {
		from = 1
	}
	if to > total {
		to = total
	}
	for i, content := range raw {
		lineNo := from + i
		lines[i] = LogLine{
			ID:         fmt.Sprintf("%s:%d", p.index.FileName(), lineNo),
			FileName:   p.index.FileName(),
			LineNumber: lineNo,
			Content:    content,
			Level:      classify.Classify(content),
		}
	}
	return lines, nil
}

func (p *largeFileProvider) Dispose() error {
	return p.index.Dispose()
}
