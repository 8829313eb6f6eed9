package server

import (
	"log"
	"sort"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
	"github.com/RogerXXH/limited-tic-tac-toe/internal/store"
)

type IPlayer interface {
	IsHuman() bool
	ChooseMove(state game.GameState) (int, bool)
}

type HumanPlayer struct {
	pending     bool
	pendingMove int
}

func NewHumanPlayer() *HumanPlayer {
	return &HumanPlayer{}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) ChooseMove(game.GameState) (int, bool) {
	return 0, false
}

func (h *HumanPlayer) SetPendingMove(pos int) {
	h.pendingMove = pos
	h.pending = true
}

func (h *HumanPlayer) HasPendingMove() bool {
	return h.pending
}

func (h *HumanPlayer) TakePendingMove() int {
	h.pending = false
	return h.pendingMove
}

// PerfectStrategy answers moves out of a solved table: canonicalize the
// live position, score every empty cell by the successor's label and
// depth, play the fastest win or, when every reply loses, the slowest
// loss. The only contract with the trainer is the table layout and the
// (N, M) pair.
//
// The canonicalization scratch is reused, so callers must serialize
// access (the game controller's lock does).
type PerfectStrategy struct {
	params game.Params
	codec  game.Codec
	sym    *game.Symmetry
	canon  *game.Canon
	table  *store.Table
	seq    []int
}

func NewPerfectStrategy(p game.Params, tablePath string) (*PerfectStrategy, error) {
	table, err := store.OpenTable(tablePath)
	if err != nil {
		return nil, err
	}
	codec := game.NewCodec(p)
	sym := game.NewSymmetry(p.BoardSize)
	log.Printf("[server] loaded table %s (%d records)", tablePath, table.Count())
	return &PerfectStrategy{
		params: p,
		codec:  codec,
		sym:    sym,
		canon:  game.NewCanon(codec, sym),
		table:  table,
		seq:    make([]int, 0, p.MaxMove+1),
	}, nil
}

func (s *PerfectStrategy) Close() error {
	return s.table.Close()
}

func (s *PerfectStrategy) IsHuman() bool {
	return false
}

type scoredMove struct {
	pos   int
	dp    int
	depth int
}

// ChooseMove scores every legal placement for the side to move. A
// successor unknown to the table counts as undetermined.
func (s *PerfectStrategy) ChooseMove(state game.GameState) (int, bool) {
	cr := s.canon.State(state.X, state.Y)
	moves := []scoredMove{}
	for pos := 0; pos < s.params.Cells(); pos++ {
		if state.Board.AtPos(pos) != game.CellEmpty {
			continue
		}
		canonPos := s.sym.Cell(cr.Trans, pos)
		var code uint64
		var dp, depth int
		if state.ToMove == game.PlayerX {
			s.seq = game.AppendMove(s.seq[:0], cr.X, canonPos, s.params.MaxMove)
			code = s.canon.Code(s.seq, cr.Y)
		} else {
			s.seq = game.AppendMove(s.seq[:0], cr.Y, canonPos, s.params.MaxMove)
			code = s.canon.Code(cr.X, s.seq)
		}
		rec, found, err := s.table.Lookup(code)
		if err != nil {
			log.Printf("[server] table lookup failed: %v", err)
			found = false
		}
		if found {
			if state.ToMove == game.PlayerX {
				dp = int(rec.DP1)
				depth = int(rec.Depth1)
			} else {
				dp = -int(rec.DP0)
				depth = int(rec.Depth0)
			}
		}
		moves = append(moves, scoredMove{pos: pos, dp: dp, depth: depth})
	}
	if len(moves) == 0 {
		return 0, false
	}
	// Prefer the highest label with the shortest line; when every move
	// loses, drag the loss out instead. Stable sorts keep ties
	// deterministic by scan order.
	sort.SliceStable(moves, func(i, j int) bool {
		if moves[i].dp != moves[j].dp {
			return moves[i].dp < moves[j].dp
		}
		return moves[i].depth > moves[j].depth
	})
	best := moves[len(moves)-1]
	if best.dp == -1 {
		sort.SliceStable(moves, func(i, j int) bool {
			if moves[i].dp != moves[j].dp {
				return moves[i].dp < moves[j].dp
			}
			return moves[i].depth < moves[j].depth
		})
		best = moves[len(moves)-1]
	}
	return best.pos, true
}
