package solver

import (
	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
)

// ValidSideCodes lists every per-side code in [0, S) that decodes legally.
// With prune set, the list is additionally restricted to codes whose most
// significant digit names an orbit-representative cell: canonicalization
// maps every state to one whose newest X piece lies in that set, so the
// restricted list still covers every equivalence class. The prune is a
// speed optimization only.
func ValidSideCodes(codec game.Codec, sym *game.Symmetry, prune bool) []uint64 {
	var repDigits map[int]bool
	if prune {
		repDigits = make(map[int]bool)
		for _, cell := range sym.OrbitReps() {
			repDigits[cell+1] = true
		}
	}
	sep := codec.Separator()
	valid := []uint64{}
	buf := make([]int, 0, codec.Params().MaxMove)
	for code := uint64(0); code < sep; code++ {
		positions, ok := codec.Decode(code, buf[:0])
		if !ok {
			continue
		}
		if prune && len(positions) > 0 {
			highest := positions[len(positions)-1] + 1
			if !repDigits[highest] {
				continue
			}
		}
		valid = append(valid, code)
	}
	return valid
}

// overlaps reports whether the two sequences share a cell.
func overlaps(x, y []int) bool {
	var mask uint64
	for _, pos := range y {
		mask |= 1 << uint(pos)
	}
	for _, pos := range x {
		if mask&(1<<uint(pos)) != 0 {
			return true
		}
	}
	return false
}

// legalPair applies the state invariant |X| - |Y| ∈ {0, 1} plus
// disjointness.
func legalPair(x, y []int) bool {
	if len(x) != len(y) && len(x) != len(y)+1 {
		return false
	}
	return !overlaps(x, y)
}
