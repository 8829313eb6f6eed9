package solver

import (
	"path/filepath"
	"testing"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
	"github.com/RogerXXH/limited-tic-tac-toe/internal/store"
)

// TestEdgelessMatchesExplicit cross-validates the two solving modes: the
// edgeless passes plus the merger must reproduce the explicit solver's
// labels and depths exactly on the (3,3) board.
func TestEdgelessMatchesExplicit(t *testing.T) {
	params := game.Params3x3()
	dir := t.TempDir()
	xwinPath := filepath.Join(dir, "xwin.data")
	ywinPath := filepath.Join(dir, "ywin.data")
	mergedPath := filepath.Join(dir, "merged.data")

	xpass := NewEdgelessSolver(params, game.PlayerX, 4)
	if err := xpass.Run(xwinPath); err != nil {
		t.Fatalf("xwin pass: %v", err)
	}
	ypass := NewEdgelessSolver(params, game.PlayerO, 4)
	if err := ypass.Run(ywinPath); err != nil {
		t.Fatalf("ywin pass: %v", err)
	}
	if _, err := MergeTables(xwinPath, ywinPath, mergedPath); err != nil {
		t.Fatalf("merge: %v", err)
	}

	explicit := solved3x3Solver(t)
	if xpass.StateCount() != explicit.StateCount() {
		t.Fatalf("state count mismatch: edgeless=%d explicit=%d",
			xpass.StateCount(), explicit.StateCount())
	}

	merged, err := store.ReadAll(mergedPath)
	if err != nil {
		t.Fatalf("read merged table: %v", err)
	}

	mergedByCode := make(map[uint64]store.Record, len(merged))
	var prev uint64
	for i, rec := range merged {
		if i > 0 && rec.Code <= prev {
			t.Fatalf("merged table not strictly sorted at record %d", i)
		}
		prev = rec.Code
		mergedByCode[rec.Code] = rec

		dp, depth, ok := explicit.StateInfo(rec.Code)
		if !ok {
			t.Fatalf("merged state %d unknown to the explicit solver", rec.Code)
		}
		if dp[0] != rec.DP0 || dp[1] != rec.DP1 {
			t.Fatalf("state %d label mismatch: edgeless=[%d,%d] explicit=%v",
				rec.Code, rec.DP0, rec.DP1, dp)
		}
		if depth[0] != rec.Depth0 || depth[1] != rec.Depth1 {
			t.Fatalf("state %d depth mismatch: edgeless=[%d,%d] explicit=%v",
				rec.Code, rec.Depth0, rec.Depth1, depth)
		}
	}

	// Every determined state in the explicit table must appear in the
	// merged output.
	for _, code := range explicit.Codes() {
		dp, _, _ := explicit.StateInfo(code)
		if dp[0] == 0 && dp[1] == 0 {
			continue
		}
		if _, ok := mergedByCode[code]; !ok {
			t.Fatalf("determined state %d missing from the merged table", code)
		}
	}
}

func TestEdgelessTerminalSeeds(t *testing.T) {
	params := game.Params3x3()
	dir := t.TempDir()
	xwinPath := filepath.Join(dir, "xwin.data")

	xpass := NewEdgelessSolver(params, game.PlayerX, 2)
	if err := xpass.Run(xwinPath); err != nil {
		t.Fatalf("xwin pass: %v", err)
	}

	// A terminal X win carries both labels at depth zero.
	codec := game.NewCodec(params)
	canon := game.NewCanon(codec, game.NewSymmetry(params.BoardSize))
	code := canon.Code([]int{0, 1, 2}, []int{3, 4, 7})
	dp, depth, ok := xpass.StateInfo(code)
	if !ok {
		t.Fatalf("terminal state missing")
	}
	if dp != [2]int8{1, 1} || depth != [2]uint16{0, 0} {
		t.Fatalf("terminal state: dp=%v depth=%v", dp, depth)
	}
}
