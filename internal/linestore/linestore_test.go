package linestore

import (
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "lines.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func rowsFor(fileName string, from, to int) []Row {
	var rows []Row
	for i := from; i <= to; i++ {
		rows = append(rows, Row{FileName: fileName, LineNumber: i, Content: "line", Level: "INFO"})
	}
	return rows
}

func TestAppendAndGetByRange(t *testing.T) {
	s := openTemp(t)
	if err := s.AppendLogs(rowsFor("a.log", 1, 100)); err != nil {
		t.Fatalf("AppendLogs: %v", err)
	}
	rows, err := s.GetByRange("a.log", 10, 15)
	if err != nil {
		t.Fatalf("GetByRange: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	for i, r := range rows {
		if r.LineNumber != 10+i {
			t.Errorf("rows[%d].LineNumber = %d, want %d", i, r.LineNumber, 10+i)
		}
	}
}

func TestGetLastN(t *testing.T) {
	s := openTemp(t)
	if err := s.AppendLogs(rowsFor("b.log", 1, 50)); err != nil {
		t.Fatalf("AppendLogs: %v", err)
	}
	rows, err := s.GetLastN("b.log", 5)
	if err != nil {
		t.Fatalf("GetLastN: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}
	want := []int{46, 47, 48, 49, 50}
	for i, r := range rows {
		if r.LineNumber != want[i] {
			t.Errorf("rows[%d].LineNumber = %d, want %d", i, r.LineNumber, want[i])
		}
	}
}

func TestGetLastNMultipleFilesDoesNotLeak(t *testing.T) {
	s := openTemp(t)
	if err := s.AppendLogs(rowsFor("a.log", 1, 10)); err != nil {
		t.Fatalf("AppendLogs a: %v", err)
	}
	if err := s.AppendLogs(rowsFor("z.log", 1, 10)); err != nil {
		t.Fatalf("AppendLogs z: %v", err)
	}
	rows, err := s.GetLastN("a.log", 3)
	if err != nil {
		t.Fatalf("GetLastN: %v", err)
	}
	for _, r := range rows {
		if r.FileName != "a.log" {
			t.Fatalf("leaked row from file %s while querying a.log", r.FileName)
		}
	}
}

func TestUpdateFileTotalAndGetFilesMeta(t *testing.T) {
	s := openTemp(t)
	if err := s.UpdateFileTotal("a.log", 1234); err != nil {
		t.Fatalf("UpdateFileTotal: %v", err)
	}
	if err := s.UpdateFileTotal("b.log", 5678); err != nil {
		t.Fatalf("UpdateFileTotal: %v", err)
	}
	metas, err := s.GetFilesMeta()
	if err != nil {
		t.Fatalf("GetFilesMeta: %v", err)
	}
	byName := map[string]int{}
	for _, m := range metas {
		byName[m.FileName] = m.TotalLines
	}
	if byName["a.log"] != 1234 || byName["b.log"] != 5678 {
		t.Fatalf("got %v", byName)
	}
}

func TestDeleteFileRemovesRowsAndTotal(t *testing.T) {
	s := openTemp(t)
	if err := s.AppendLogs(rowsFor("a.log", 1, 10)); err != nil {
		t.Fatalf("AppendLogs: %v", err)
	}
	if err := s.UpdateFileTotal("a.log", 10); err != nil {
		t.Fatalf("UpdateFileTotal: %v", err)
	}
	if err := s.DeleteFile("a.log"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	rows, err := s.GetByRange("a.log", 1, 10)
	if err != nil {
		t.Fatalf("GetByRange: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows, want 0", len(rows))
	}
	metas, err := s.GetFilesMeta()
	if err != nil {
		t.Fatalf("GetFilesMeta: %v", err)
	}
	if len(metas) != 0 {
		t.Fatalf("got %v, want no files", metas)
	}
}

func TestPinnedStateRoundTrip(t *testing.T) {
	s := openTemp(t)
	state, err := s.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(state.PinnedIDs) != 0 || state.MaxLines != DefaultMaxLines {
		t.Fatalf("got %+v, want empty pinned + default maxLines", state)
	}

	if err := s.UpdatePinned([]string{"a.log:3", "a.log:7"}); err != nil {
		t.Fatalf("UpdatePinned: %v", err)
	}
	state, err = s.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(state.PinnedIDs) != 2 {
		t.Fatalf("got %v, want 2 ids", state.PinnedIDs)
	}
}

func TestSetMaxLinesPersists(t *testing.T) {
	s := openTemp(t)
	if err := s.SetMaxLines(12345); err != nil {
		t.Fatalf("SetMaxLines: %v", err)
	}
	state, err := s.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.MaxLines != 12345 {
		t.Fatalf("got MaxLines %d, want 12345", state.MaxLines)
	}
}

func TestClearAll(t *testing.T) {
	s := openTemp(t)
	if err := s.AppendLogs(rowsFor("a.log", 1, 5)); err != nil {
		t.Fatalf("AppendLogs: %v", err)
	}
	if err := s.UpdatePinned([]string{"a.log:1"}); err != nil {
		t.Fatalf("UpdatePinned: %v", err)
	}
	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	rows, _ := s.GetByRange("a.log", 1, 5)
	if len(rows) != 0 {
		t.Fatalf("got %v, want no rows after ClearAll", rows)
	}
	state, err := s.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(state.PinnedIDs) != 0 {
		t.Fatalf("got %v, want no pinned ids after ClearAll", state.PinnedIDs)
	}
}
