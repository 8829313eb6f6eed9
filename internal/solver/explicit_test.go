package solver

import (
	"sync"
	"testing"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
)

var (
	solved3x3Once sync.Once
	solved3x3     *GameTreeSolver
)

// solved3x3Solver solves the (3,3) board once and shares it across tests.
func solved3x3Solver(t *testing.T) *GameTreeSolver {
	t.Helper()
	solved3x3Once.Do(func() {
		s := NewGameTreeSolver(game.Params3x3(), false)
		s.Build()
		s.Solve()
		solved3x3 = s
	})
	return solved3x3
}

func TestExplicitInitialStateIsDraw(t *testing.T) {
	s := solved3x3Solver(t)
	dp, depth, ok := s.StateInfo(0)
	if !ok {
		t.Fatalf("empty board missing from the table")
	}
	if dp != [2]int8{0, 0} || depth != [2]uint16{0, 0} {
		t.Fatalf("expected a drawn initial state, got dp=%v depth=%v", dp, depth)
	}
}

func TestExplicitStateCount(t *testing.T) {
	s := solved3x3Solver(t)
	count := s.StateCount()
	if count < 4000 || count > 16000 {
		t.Fatalf("implausible canonical state count %d", count)
	}
	wins, losses := s.TerminalCounts()
	if wins == 0 || losses == 0 {
		t.Fatalf("expected terminal states on both sides, got win=%d lose=%d", wins, losses)
	}
}

func TestExplicitStatesAreCanonical(t *testing.T) {
	s := solved3x3Solver(t)
	params := game.Params3x3()
	codec := game.NewCodec(params)
	canon := game.NewCanon(codec, game.NewSymmetry(params.BoardSize))
	for _, code := range s.Codes() {
		x, y, ok := codec.DecodeState(code, nil, nil)
		if !ok {
			t.Fatalf("stored state %d fails decode", code)
		}
		if !legalPair(x, y) {
			t.Fatalf("stored state %d violates the pair invariant", code)
		}
		if min := canon.Code(x, y); min != code {
			t.Fatalf("stored state %d is not canonical (min %d)", code, min)
		}
	}
}

func TestExplicitTerminalConsistency(t *testing.T) {
	s := solved3x3Solver(t)
	params := game.Params3x3()
	codec := game.NewCodec(params)
	referee := game.NewReferee(params)
	for _, code := range s.Codes() {
		dp, depth, _ := s.StateInfo(code)
		if depth != [2]uint16{0, 0} || dp[0] == 0 {
			continue
		}
		// Depth-0 labelled states are exactly the terminals.
		x, y, _ := codec.DecodeState(code, nil, nil)
		want := int(dp[0])
		if dp != [2]int8{int8(want), int8(want)} {
			t.Fatalf("terminal %d should carry the label on both phases: %v", code, dp)
		}
		if got := referee.Winner(x, y); got != want {
			t.Fatalf("terminal %d: referee says %d, table says %d", code, got, want)
		}
	}
}

func TestExplicitWinSoundness(t *testing.T) {
	s := solved3x3Solver(t)
	checked := 0
	for _, code := range s.Codes() {
		dp, depth, _ := s.StateInfo(code)
		if dp[0] != 1 || depth[0] == 0 {
			continue
		}
		found := false
		for _, succ := range s.Successors(code, 0) {
			succDP, succDepth, ok := s.StateInfo(succ)
			if ok && succDP[1] == 1 && succDepth[1] == depth[0]-1 {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("state %d is X-winning at depth %d without a matching successor", code, depth[0])
		}
		checked++
	}
	if checked == 0 {
		t.Fatalf("no non-terminal X-winning states found")
	}
}

func TestExplicitLossSoundness(t *testing.T) {
	s := solved3x3Solver(t)
	checked := 0
	for _, code := range s.Codes() {
		dp, depth, _ := s.StateInfo(code)
		if dp[0] != -1 || depth[0] == 0 {
			continue
		}
		succs := s.Successors(code, 0)
		if len(succs) == 0 {
			t.Fatalf("losing state %d has no X moves", code)
		}
		for _, succ := range succs {
			succDP, succDepth, ok := s.StateInfo(succ)
			if !ok || succDP[1] != -1 {
				t.Fatalf("state %d is X-losing but move to %d escapes", code, succ)
			}
			if succDepth[1] >= depth[0] {
				t.Fatalf("state %d: successor %d does not shorten the loss (%d >= %d)",
					code, succ, succDepth[1], depth[0])
			}
		}
		checked++
	}
	if checked == 0 {
		t.Fatalf("no non-terminal X-losing states found")
	}
}

func TestExplicitDepthsHaveLabels(t *testing.T) {
	s := solved3x3Solver(t)
	for _, code := range s.Codes() {
		dp, depth, _ := s.StateInfo(code)
		// A labelled non-terminal winning mover always has a resolving
		// move one ply shallower, checked above; here make sure labels
		// and depths agree at the boundary.
		for idx := 0; idx < 2; idx++ {
			if dp[idx] == 0 && depth[idx] != 0 {
				t.Fatalf("state %d has depth without a label", code)
			}
		}
	}
}
