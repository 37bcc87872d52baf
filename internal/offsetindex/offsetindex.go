// Package offsetindex builds a byte-offset line index for a file with a
// single streaming scan and serves arbitrary [from,to] line windows by
// random access, never holding the whole file in memory.
package offsetindex

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alienxp03/logbench/internal/errs"
)

// DefaultChunkSize is the default size of each streaming read during Build.
const DefaultChunkSize = 16 * 1024 * 1024

// widthThreshold is the file size above which offsets are stored as
// 64-bit rather than 32-bit values.
const widthThreshold = 1<<32 - 1

// Options configures Build.
type Options struct {
	// ChunkSize is the number of bytes read per scan step. Zero means
	// DefaultChunkSize.
	ChunkSize int64
}

// Index is the immutable result of a single streaming scan of a file:
// an ordered table of byte offsets marking the start of every line,
// plus the derived total line count.
type Index struct {
	fileName string
	path     string
	fileSize int64
	offsets  offsetTable
	file     *os.File
}

// FileName returns the base name the index was built for.
func (ix *Index) FileName() string { return ix.fileName }

// FileSize returns the file's byte size as observed at build time.
func (ix *Index) FileSize() int64 { return ix.fileSize }

// TotalLines returns the number of lines in the index.
func (ix *Index) TotalLines() int { return ix.offsets.length() }

// Build performs a single streaming pass over path, recording the byte
// offset of the start of every line. It never holds the decoded file in
// memory — only the offset table, sized 32- or 64-bit per widthThreshold.
func Build(path string, opts Options) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("offsetindex: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("offsetindex: stat %s: %w", path, err)
	}
	fileSize := info.Size()

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	table := newOffsetTable(fileSize)
	if fileSize == 0 {
		// An empty file has zero lines, not one empty line.
		return &Index{fileName: baseName(path), path: path, fileSize: 0, offsets: table, file: f}, nil
	}
	table.append(0) // offsets[0] = 0 is seeded before scanning

	scanner := newChunkLineScanner(f, chunkSize)
	var lastOffset int64
	var sawAny bool
	for {
		lineStart, ok, err := scanner.next()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %s: %v", errs.ErrIndexBuild, path, err)
		}
		if !ok {
			break
		}
		sawAny = true
		table.append(lineStart)
		lastOffset = lineStart
	}

	// If the file ends with a newline, the scan above recorded a
	// trailing offset equal to fileSize that denotes a zero-length
	// final line; that trailing empty line is suppressed.
	if sawAny && lastOffset == fileSize {
		table.truncateLast()
	}

	return &Index{
		fileName: baseName(path),
		path:     path,
		fileSize: fileSize,
		offsets:  table,
		file:     f,
	}, nil
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// chunkLineScanner is a pull-based iterator over line-start offsets. It
// reads non-overlapping byte chunks and carries any split-line residue
// (bytes read but not yet terminated by '\n') across reads in buf.
type chunkLineScanner struct {
	r         io.Reader
	chunkSize int64
	buf       []byte // raw chunk being scanned; residue carries across reads
	pos       int    // scan cursor within buf
	fileOff   int64  // absolute file offset of buf[0]
	done      bool
}

func newChunkLineScanner(r io.Reader, chunkSize int64) *chunkLineScanner {
	return &chunkLineScanner{r: bufio.NewReaderSize(r, int(chunkSize)), chunkSize: chunkSize}
}

// next pulls the absolute offset of the next line start, i.e. the byte
// immediately after the next '\n'. It returns ok=false once every '\n'
// in the stream has been consumed; any unterminated trailing bytes are
// left in the caller's hands (the prior emitted offset already marks
// where that trailing line begins).
func (s *chunkLineScanner) next() (offset int64, ok bool, err error) {
	for {
		if s.pos < len(s.buf) {
			idx := bytes.IndexByte(s.buf[s.pos:], '\n')
			if idx >= 0 {
				abs := s.fileOff + int64(s.pos) + int64(idx)
				s.pos += idx + 1
				return abs + 1, true, nil
			}
			// No newline left in this chunk; carry the unterminated
			// tail forward as the start of the next read.
			s.fileOff += int64(s.pos)
			s.buf = s.buf[s.pos:]
			s.pos = 0
		}
		if s.done {
			return 0, false, nil
		}

		chunk := make([]byte, s.chunkSize)
		n, rerr := io.ReadFull(s.r, chunk)
		if n > 0 {
			s.buf = append(s.buf, chunk[:n]...)
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			s.done = true
		} else if rerr != nil {
			return 0, false, rerr
		}
	}
}

// ReadLines returns exactly the lines in [from,to] (1-based, inclusive),
// clamped into [1,TotalLines()]. It reads a single contiguous byte
// range from disk; it never reads the whole file.
func (ix *Index) ReadLines(from, to int) ([]string, error) {
	total := ix.TotalLines()
	if total == 0 {
		return []string{}, nil
	}
	if from < 1 {
		from = 1
	}
	if to > total {
		to = total
	}
	if from > to {
		return []string{}, nil
	}

	start := ix.offsets.get(from - 1)
	var end int64
	if to < total {
		end = ix.offsets.get(to)
	} else {
		end = ix.fileSize
	}

	buf := make([]byte, end-start)
	if _, err := ix.file.ReadAt(buf, start); err != nil && err != io.EOF {
		return nil, fmt.Errorf("offsetindex: read %s [%d,%d): %w", ix.fileName, start, end, err)
	}

	lines := make([]string, 0, to-from+1)
	lineStart := 0
	for i := from; i <= to; i++ {
		var lineEnd int
		if i < total {
			lineEnd = int(ix.offsets.get(i) - start)
		} else {
			lineEnd = len(buf)
		}
		lines = append(lines, stripEOL(buf[lineStart:lineEnd]))
		lineStart = lineEnd
	}
	return lines, nil
}

// stripEOL removes a single trailing \r?\n from a raw line slice and
// decodes it as UTF-8 with replacement for invalid bytes.
func stripEOL(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
		if n := len(b); n > 0 && b[n-1] == '\r' {
			b = b[:n-1]
		}
	}
	return strings.ToValidUTF8(string(b), "�")
}

// Dispose releases the offset table and the open file handle. The
// Index must not be used afterward.
func (ix *Index) Dispose() error {
	ix.offsets = nil
	if ix.file != nil {
		return ix.file.Close()
	}
	return nil
}

// EstimatedMemoryBytes returns the approximate live size of the offset
// table, for diagnostics/status lines.
func (ix *Index) EstimatedMemoryBytes() int64 {
	return ix.offsets.memoryBytes()
}
