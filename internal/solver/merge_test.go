package solver

import (
	"path/filepath"
	"testing"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/store"
)

func writeTestTable(t *testing.T, path string, records []store.Record) {
	t.Helper()
	if err := store.WriteAll(path, records); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestMergeTakesNonZeroFields(t *testing.T) {
	dir := t.TempDir()
	xwin := filepath.Join(dir, "xwin.data")
	ywin := filepath.Join(dir, "ywin.data")
	out := filepath.Join(dir, "out.data")

	writeTestTable(t, xwin, []store.Record{
		{Code: 10, DP0: 1, DP1: 1, Depth0: 2, Depth1: 1},
		{Code: 15, DP0: 1, Depth0: 4},
	})
	writeTestTable(t, ywin, []store.Record{
		{Code: 15, DP1: -1, Depth1: 3},
		{Code: 20, DP0: -1, DP1: -1, Depth0: 2, Depth1: 2},
	})

	stats, err := MergeTables(xwin, ywin, out)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if stats.Written != 3 || stats.XOnly != 1 || stats.YOnly != 1 || stats.Both != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	merged, err := store.ReadAll(out)
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}
	want := []store.Record{
		{Code: 10, DP0: 1, DP1: 1, Depth0: 2, Depth1: 1},
		{Code: 15, DP0: 1, DP1: -1, Depth0: 4, Depth1: 3},
		{Code: 20, DP0: -1, DP1: -1, Depth0: 2, Depth1: 2},
	}
	if len(merged) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(merged))
	}
	for i, rec := range merged {
		if rec != want[i] {
			t.Fatalf("record %d: got %+v want %+v", i, rec, want[i])
		}
	}
}

func TestMergeDetectsLabelCollision(t *testing.T) {
	dir := t.TempDir()
	xwin := filepath.Join(dir, "xwin.data")
	ywin := filepath.Join(dir, "ywin.data")
	out := filepath.Join(dir, "out.data")

	// Both inputs claim state 10 on the same phase: ill-formed inputs
	// must be reported, not silently combined.
	writeTestTable(t, xwin, []store.Record{
		{Code: 10, DP0: 1, DP1: 1},
	})
	writeTestTable(t, ywin, []store.Record{
		{Code: 10, DP0: -1, Depth0: 5, Depth1: 3},
		{Code: 20, DP1: -1, Depth0: 2, Depth1: 2},
	})

	if _, err := MergeTables(xwin, ywin, out); err == nil {
		t.Fatalf("expected a label collision error")
	}
}

func TestMergeOneSidedInputs(t *testing.T) {
	dir := t.TempDir()
	xwin := filepath.Join(dir, "xwin.data")
	ywin := filepath.Join(dir, "ywin.data")
	out := filepath.Join(dir, "out.data")

	writeTestTable(t, xwin, []store.Record{
		{Code: 1, DP0: 1, Depth0: 1},
		{Code: 3, DP1: 1, Depth1: 2},
	})
	writeTestTable(t, ywin, nil)

	stats, err := MergeTables(xwin, ywin, out)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if stats.Written != 2 || stats.YOnly != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	merged, err := store.ReadAll(out)
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}
	if len(merged) != 2 || merged[0].Code != 1 || merged[1].Code != 3 {
		t.Fatalf("unexpected merged records %+v", merged)
	}
}
