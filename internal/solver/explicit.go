package solver

import (
	"log"
	"sort"
	"time"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
	"github.com/RogerXXH/limited-tic-tac-toe/internal/store"
)

type stateInfo struct {
	dp    [2]int8
	depth [2]uint16
}

// GameTreeSolver materializes the full game graph over canonical states
// and solves it by retrograde BFS. Edge lists for both players live in
// memory, so this mode is for parameterizations whose graphs fit (3x3).
type GameTreeSolver struct {
	params  game.Params
	codec   game.Codec
	sym     *game.Symmetry
	canon   *game.Canon
	referee *game.Referee
	prune   bool

	states map[uint64]*stateInfo
	edges  [2]map[uint64][]uint64
	wins   map[uint64]struct{}
	losses map[uint64]struct{}

	xdec, ydec []int
}

func NewGameTreeSolver(p game.Params, prune bool) *GameTreeSolver {
	codec := game.NewCodec(p)
	sym := game.NewSymmetry(p.BoardSize)
	return &GameTreeSolver{
		params:  p,
		codec:   codec,
		sym:     sym,
		canon:   game.NewCanon(codec, sym),
		referee: game.NewReferee(p),
		prune:   prune,
		states:  make(map[uint64]*stateInfo),
		edges:   [2]map[uint64][]uint64{make(map[uint64][]uint64), make(map[uint64][]uint64)},
		wins:    make(map[uint64]struct{}),
		losses:  make(map[uint64]struct{}),
		xdec:    make([]int, 0, p.MaxMove),
		ydec:    make([]int, 0, p.MaxMove),
	}
}

func (s *GameTreeSolver) addState(code uint64) *stateInfo {
	info, ok := s.states[code]
	if !ok {
		info = &stateInfo{}
		s.states[code] = info
	}
	return info
}

// addEdge records a forward edge after re-validating the target: moves
// whose canonical image decodes to an illegal pair are silently dropped,
// which is part of the enumeration contract.
func (s *GameTreeSolver) addEdge(from, to uint64, player int) {
	x, y, ok := s.codec.DecodeState(to, s.xdec[:0], s.ydec[:0])
	if !ok || !legalPair(x, y) {
		return
	}
	s.addState(from)
	s.addState(to)
	s.edges[player][from] = append(s.edges[player][from], to)
}

// Build enumerates every canonical state, classifies terminals, and
// records both players' forward edges for the non-terminals.
func (s *GameTreeSolver) Build() {
	xValid := ValidSideCodes(s.codec, s.sym, s.prune)
	yValid := ValidSideCodes(s.codec, s.sym, false)
	total := uint64(len(xValid)) * uint64(len(yValid))
	log.Printf("[train] valid codes: x=%d y=%d (%d pairs)", len(xValid), len(yValid), total)

	canons := make(map[uint64]struct{})
	board := make([]bool, s.params.Cells())
	xbuf := make([]int, 0, s.params.MaxMove)
	ybuf := make([]int, 0, s.params.MaxMove)
	newSeq := make([]int, 0, s.params.MaxMove+1)

	scanned := uint64(0)
	started := time.Now()
	const reportInterval = 5000000

	for _, xcode := range xValid {
		x, _ := s.codec.Decode(xcode, xbuf[:0])
		for _, ycode := range yValid {
			scanned++
			if scanned%reportInterval == 0 {
				elapsed := time.Since(started).Seconds()
				log.Printf("[train] scanned %.1f%%  canonical=%d  rate=%.0f/s",
					float64(scanned)/float64(total)*100, len(canons), float64(scanned)/elapsed)
			}
			y, _ := s.codec.Decode(ycode, ybuf[:0])
			if !legalPair(x, y) {
				continue
			}
			cr := s.canon.State(x, y)
			if _, seen := canons[cr.Code]; seen {
				continue
			}
			canons[cr.Code] = struct{}{}

			switch s.referee.Winner(cr.X, cr.Y) {
			case 1:
				s.wins[cr.Code] = struct{}{}
				s.addState(cr.Code).dp = [2]int8{1, 1}
				continue
			case -1:
				s.losses[cr.Code] = struct{}{}
				s.addState(cr.Code).dp = [2]int8{-1, -1}
				continue
			}

			for i := range board {
				board[i] = false
			}
			for _, pos := range cr.X {
				board[pos] = true
			}
			for _, pos := range cr.Y {
				board[pos] = true
			}
			for cell := 0; cell < len(board); cell++ {
				if board[cell] {
					continue
				}
				newSeq = game.AppendMove(newSeq[:0], cr.X, cell, s.params.MaxMove)
				s.addEdge(cr.Code, s.canon.Code(newSeq, cr.Y), 0)
				newSeq = game.AppendMove(newSeq[:0], cr.Y, cell, s.params.MaxMove)
				s.addEdge(cr.Code, s.canon.Code(cr.X, newSeq), 1)
			}
		}
	}

	log.Printf("[train] enumeration done: canonical=%d states=%d win=%d lose=%d",
		len(canons), len(s.states), len(s.wins), len(s.losses))
}

// Solve runs the two retrograde BFS passes: win propagation seeded from
// terminal X wins, then loss propagation seeded from terminal O wins.
// Each state is labelled at most once per phase, so the first wavefront
// that reaches it fixes its shortest depth.
func (s *GameTreeSolver) Solve() {
	reverse := [2]map[uint64][]uint64{make(map[uint64][]uint64), make(map[uint64][]uint64)}
	for player := 0; player < 2; player++ {
		for from, targets := range s.edges[player] {
			for _, to := range targets {
				reverse[player][to] = append(reverse[player][to], from)
			}
		}
	}
	need := make(map[uint64][2]int, len(s.states))
	for code := range s.states {
		need[code] = [2]int{len(s.edges[0][code]), len(s.edges[1][code])}
	}

	winUpdates := s.propagate(s.wins, reverse, need, 0, 1)
	loseUpdates := s.propagate(s.losses, reverse, need, 1, -1)
	log.Printf("[solve] win updates=%d lose updates=%d", winUpdates, loseUpdates)
}

// propagate runs one pass. moverIdx is the side-to-move index that the
// winning side's predecessors receive (0 for the win pass, 1 for the loss
// pass); label is the dp value written.
func (s *GameTreeSolver) propagate(seeds map[uint64]struct{}, reverse [2]map[uint64][]uint64, need map[uint64][2]int, moverIdx int, label int8) int {
	waitIdx := 1 - moverIdx
	updates := 0
	queue := make([]uint64, 0, len(seeds))
	for code := range seeds {
		queue = append(queue, code)
	}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		curInfo := s.states[cur]
		for _, pred := range reverse[moverIdx][cur] {
			info := s.states[pred]
			if info.dp[moverIdx] == label {
				continue
			}
			info.dp[moverIdx] = label
			info.depth[moverIdx] = curInfo.depth[waitIdx] + 1
			updates++
			for _, grand := range reverse[waitIdx][pred] {
				counters := need[grand]
				counters[waitIdx]--
				if counters[waitIdx] < 0 {
					panic("solver: need counter underflow")
				}
				need[grand] = counters
				if counters[waitIdx] == 0 {
					grandInfo := s.states[grand]
					grandInfo.dp[waitIdx] = label
					grandInfo.depth[waitIdx] = info.depth[moverIdx] + 1
					updates++
					queue = append(queue, grand)
				}
			}
		}
	}
	return updates
}

func (s *GameTreeSolver) StateCount() int {
	return len(s.states)
}

func (s *GameTreeSolver) TerminalCounts() (wins, losses int) {
	return len(s.wins), len(s.losses)
}

// StateInfo exposes one solved state.
func (s *GameTreeSolver) StateInfo(code uint64) (dp [2]int8, depth [2]uint16, ok bool) {
	info, ok := s.states[code]
	if !ok {
		return dp, depth, false
	}
	return info.dp, info.depth, true
}

// Successors returns the recorded forward edges of one player.
func (s *GameTreeSolver) Successors(code uint64, player int) []uint64 {
	return s.edges[player][code]
}

// Codes returns every stored canonical code in ascending order.
func (s *GameTreeSolver) Codes() []uint64 {
	codes := make([]uint64, 0, len(s.states))
	for code := range s.states {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Records renders the solved table sorted by state code.
func (s *GameTreeSolver) Records() []store.Record {
	codes := s.Codes()
	records := make([]store.Record, 0, len(codes))
	for _, code := range codes {
		info := s.states[code]
		records = append(records, store.Record{
			Code:   code,
			DP0:    info.dp[0],
			DP1:    info.dp[1],
			Depth0: info.depth[0],
			Depth1: info.depth[1],
		})
	}
	return records
}

// WriteTable saves the solved table.
func (s *GameTreeSolver) WriteTable(path string) error {
	w, err := store.NewWriter(path)
	if err != nil {
		return err
	}
	for _, rec := range s.Records() {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Close()
}
