package ansi

import "testing"

func TestStripRemovesColorCodes(t *testing.T) {
	in := "\x1b[31merror:\x1b[0m something broke"
	want := "error: something broke"
	if got := Strip(in); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStripLeavesPlainTextUnchanged(t *testing.T) {
	in := "plain info line"
	if got := Strip(in); got != in {
		t.Fatalf("got %q, want unchanged %q", got, in)
	}
}
