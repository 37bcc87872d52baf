package provider

import (
	"fmt"

	"github.com/alienxp03/logbench/internal/classify"
	"github.com/alienxp03/logbench/internal/linestore"
	"github.com/alienxp03/logbench/internal/offsetindex"
)

// smallFileProvider persists every line into the durable store during
// import, then serves Tail/Range from there; the offset index used to
// build the import is released once population completes.
type smallFileProvider struct {
	index      *offsetindex.Index
	store      *linestore.Store
	fileName   string
	totalLines int
}

func (p *smallFileProvider) Kind() Kind       { return Small }
func (p *smallFileProvider) FileName() string { return p.fileName }
func (p *smallFileProvider) TotalLines() int  { return p.totalLines }

// populate enumerates the file in bounded chunks of smallFileImportBatch
// lines, classifies each, and appends the batch to the persisted store.
func (p *smallFileProvider) populate() error {
	total := p.index.TotalLines()
	for from := 1; from <= total; from += smallFileImportBatch {
		to := from + smallFileImportBatch - 1
		if to > total {
			to = total
		}
		raw, err := p.index.ReadLines(from, to)
		if err != nil {
			return err
		}
		batch := make([]linestore.Row, len(raw))
		for i, content := range raw {
			lineNo := from + i
			batch[i] = linestore.Row{
				FileName:   p.fileName,
				LineNumber: lineNo,
				Content:    content,
				Level:      classify.Classify(content).String(),
			}
		}
		if err := p.store.AppendLogs(batch); err != nil {
			return err
		}
	}
	if err := p.store.UpdateFileTotal(p.fileName, total); err != nil {
		return err
	}
	p.totalLines = total
	return p.index.Dispose()
}

func (p *smallFileProvider) Tail(n int) ([]LogLine, error) {
	total := p.totalLines
	from := total - n + 1
	if from < 1 {
		from = 1
	}
	return p.Range(from, total)
}

func (p *smallFileProvider) Range(from, to int) ([]LogLine, error) {
	if from < 1 {
		from = 1
	}
	if to > p.totalLines {
		to = p.totalLines
	}
	if from > to {
		return []LogLine{}, nil
	}
	rows, err := p.store.GetByRange(p.fileName, from, to)
	if err != nil {
		return nil, fmt.Errorf("smallFileProvider.Range: %w", err)
	}
	lines := make([]LogLine, len(rows))
	for i, row := range rows {
		lines[i] = LogLine{
			ID:         row.ID(),
			FileName:   row.FileName,
			LineNumber: row.LineNumber,
			Content:    row.Content,
			Level:      classify.ParseSeverity(row.Level),
		}
	}
	return lines, nil
}

// Dispose is a no-op beyond what populate already released: the offset
// index used to build the import is freed during populate, and the
// small-file provider otherwise holds no other in-memory state.
// Purging the persisted rows themselves is the session controller's
// job on an explicit close/clear, not the provider's.
func (p *smallFileProvider) Dispose() error {
	return nil
}
