package provider

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alienxp03/logbench/internal/linestore"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func openStore(t *testing.T) *linestore.Store {
	t.Helper()
	s, err := linestore.Open(filepath.Join(t.TempDir(), "lines.db"))
	if err != nil {
		t.Fatalf("linestore.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func genLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		b.WriteString("L")
		b.WriteString(itoa(i))
		b.WriteByte('\n')
	}
	return b.String()
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func TestSmallFileProviderTail(t *testing.T) {
	path := writeTemp(t, "small.log", genLines(100))
	store := openStore(t)

	p, err := New(path, Options{Store: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Kind() != Small {
		t.Fatalf("got kind %v, want Small", p.Kind())
	}
	if p.TotalLines() != 100 {
		t.Fatalf("TotalLines = %d, want 100", p.TotalLines())
	}

	lines, err := p.Tail(10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	if lines[0].LineNumber != 91 || lines[9].LineNumber != 100 {
		t.Fatalf("got range [%d,%d], want [91,100]", lines[0].LineNumber, lines[9].LineNumber)
	}
	if lines[0].Content != "L91" {
		t.Fatalf("got content %q, want L91", lines[0].Content)
	}
}

func TestLargeFileProviderSelectedByThreshold(t *testing.T) {
	path := writeTemp(t, "big.log", genLines(10))
	store := openStore(t)

	p, err := New(path, Options{Store: store, LargeFileThreshold: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Kind() != Large {
		t.Fatalf("got kind %v, want Large", p.Kind())
	}
	lines, err := p.Range(1, 3)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(lines) != 3 || lines[0].Content != "L1" {
		t.Fatalf("got %+v", lines)
	}
}

func TestNoStoreForcesLargePath(t *testing.T) {
	path := writeTemp(t, "tiny.log", "a\nb\nc\n")
	p, err := New(path, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Kind() != Large {
		t.Fatalf("got kind %v, want Large when no store is configured", p.Kind())
	}
}

func TestProviderIDsAreStableAcrossKinds(t *testing.T) {
	content := genLines(5)
	smallPath := writeTemp(t, "x.log", content)
	store := openStore(t)
	small, err := New(smallPath, Options{Store: store})
	if err != nil {
		t.Fatalf("New small: %v", err)
	}
	large, err := New(smallPath, Options{LargeFileThreshold: 1})
	if err != nil {
		t.Fatalf("New large: %v", err)
	}

	sLines, _ := small.Range(2, 2)
	lLines, _ := large.Range(2, 2)
	if sLines[0].ID != lLines[0].ID {
		t.Fatalf("id mismatch: %q vs %q", sLines[0].ID, lLines[0].ID)
	}
	if sLines[0].ID != "x.log:2" {
		t.Fatalf("got id %q, want x.log:2", sLines[0].ID)
	}
}
