package solver

import (
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
	"github.com/RogerXXH/limited-tic-tac-toe/internal/store"
)

// EdgelessSolver solves one side's forced wins without materializing any
// edges: states live in a sorted code array with per-state counters and
// flag bits, and predecessors are synthesized on the fly from the decoded
// state. Four parallel arrays keep the 72.8M-state 4x4 run near 1 GB.
//
// Flag bits follow the table layout: bit0 means the dp0 label is set,
// bit1 the dp1 label.
type EdgelessSolver struct {
	params  game.Params
	side    game.PlayerColor
	workers int

	codes     []uint64
	terminals []uint64
	need      []uint8
	flags     []uint8
	depth     [2][]uint16
	countA    uint64
	countB    uint64
}

func NewEdgelessSolver(p game.Params, side game.PlayerColor, workers int) *EdgelessSolver {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &EdgelessSolver{params: p, side: side, workers: workers}
}

// synth owns the per-goroutine scratch for decoding, canonicalization and
// predecessor/successor synthesis.
type synth struct {
	params  game.Params
	codec   game.Codec
	canon   *game.Canon
	referee *game.Referee
	xbuf    []int
	ybuf    []int
	seq     []int
	preds   []uint64
}

func newSynth(p game.Params, sym *game.Symmetry) *synth {
	codec := game.NewCodec(p)
	return &synth{
		params:  p,
		codec:   codec,
		canon:   game.NewCanon(codec, sym),
		referee: game.NewReferee(p),
		xbuf:    make([]int, 0, p.MaxMove),
		ybuf:    make([]int, 0, p.MaxMove),
		seq:     make([]int, 0, p.MaxMove+1),
		preds:   make([]uint64, 0, p.Cells()+1),
	}
}

func (w *synth) decodeState(code uint64) (x, y []int) {
	x, y, ok := w.codec.DecodeState(code, w.xbuf[:0], w.ybuf[:0])
	if !ok {
		panic(fmt.Sprintf("solver: stored state %d fails decode", code))
	}
	return x, y
}

func occupancy(x, y []int) uint64 {
	var mask uint64
	for _, pos := range x {
		mask |= 1 << uint(pos)
	}
	for _, pos := range y {
		mask |= 1 << uint(pos)
	}
	return mask
}

func appendUnique(out []uint64, code uint64) []uint64 {
	for _, seen := range out {
		if seen == code {
			return out
		}
	}
	return append(out, code)
}

// xPreds synthesizes the states from which an X move leads to (x, y).
// The no-overflow branch removes the newest X piece; the overflow branch
// re-seats an evicted piece on any free cell in front of the queue.
// Distinct evicted cells can collapse to one canonical predecessor, so
// the result is deduplicated.
func (w *synth) xPreds(x, y []int) []uint64 {
	w.preds = w.preds[:0]
	if len(x) == 0 {
		return w.preds
	}
	if len(x) > len(y) {
		w.preds = appendUnique(w.preds, w.canon.Code(x[:len(x)-1], y))
	}
	if len(x) == w.params.MaxMove {
		occ := occupancy(x, y)
		w.seq = append(w.seq[:0], 0)
		w.seq = append(w.seq, x[:len(x)-1]...)
		for f := 0; f < w.params.Cells(); f++ {
			if occ&(1<<uint(f)) != 0 {
				continue
			}
			w.seq[0] = f
			w.preds = appendUnique(w.preds, w.canon.Code(w.seq, y))
		}
	}
	return w.preds
}

// yPreds is the mirror for O moves.
func (w *synth) yPreds(x, y []int) []uint64 {
	w.preds = w.preds[:0]
	if len(y) == 0 {
		return w.preds
	}
	w.preds = appendUnique(w.preds, w.canon.Code(x, y[:len(y)-1]))
	if len(y) == w.params.MaxMove {
		occ := occupancy(x, y)
		w.seq = append(w.seq[:0], 0)
		w.seq = append(w.seq, y[:len(y)-1]...)
		for f := 0; f < w.params.Cells(); f++ {
			if occ&(1<<uint(f)) != 0 {
				continue
			}
			w.seq[0] = f
			w.preds = appendUnique(w.preds, w.canon.Code(x, w.seq))
		}
	}
	return w.preds
}

// ySuccCount counts the distinct canonical successors reachable by an O
// move; legality keeps |X| >= |Y'|.
func (w *synth) ySuccCount(x, y []int) int {
	w.preds = w.preds[:0]
	occ := occupancy(x, y)
	for pos := 0; pos < w.params.Cells(); pos++ {
		if occ&(1<<uint(pos)) != 0 {
			continue
		}
		w.seq = game.AppendMove(w.seq[:0], y, pos, w.params.MaxMove)
		if len(x) < len(w.seq) {
			continue
		}
		w.preds = appendUnique(w.preds, w.canon.Code(x, w.seq))
	}
	return len(w.preds)
}

// xSuccCount is the mirror for X moves; legality keeps |Y| >= |X'| - 1.
func (w *synth) xSuccCount(x, y []int) int {
	w.preds = w.preds[:0]
	occ := occupancy(x, y)
	for pos := 0; pos < w.params.Cells(); pos++ {
		if occ&(1<<uint(pos)) != 0 {
			continue
		}
		w.seq = game.AppendMove(w.seq[:0], x, pos, w.params.MaxMove)
		if len(y) < len(w.seq)-1 {
			continue
		}
		w.preds = appendUnique(w.preds, w.canon.Code(w.seq, y))
	}
	return len(w.preds)
}

// Enumerate discovers every canonical state and this pass's terminal
// seeds, sweeping disjoint slices of the X code list in parallel.
func (s *EdgelessSolver) Enumerate() error {
	sym := game.NewSymmetry(s.params.BoardSize)
	codec := game.NewCodec(s.params)
	xValid := ValidSideCodes(codec, sym, true)
	yValid := ValidSideCodes(codec, sym, false)
	total := uint64(len(xValid)) * uint64(len(yValid))
	log.Printf("[train] valid codes: x=%d y=%d (%d pairs, %d workers)",
		len(xValid), len(yValid), total, s.workers)

	wantTerminal := 1
	if s.side == game.PlayerO {
		wantTerminal = -1
	}

	started := time.Now()
	var scanned atomic.Uint64
	localCodes := make([][]uint64, s.workers)
	localTerminals := make([][]uint64, s.workers)

	var group errgroup.Group
	for worker := 0; worker < s.workers; worker++ {
		worker := worker
		group.Go(func() error {
			w := newSynth(s.params, sym)
			canons := make(map[uint64]struct{})
			terminals := []uint64{}
			for i := worker; i < len(xValid); i += s.workers {
				x, _ := w.codec.Decode(xValid[i], w.xbuf[:0])
				for _, ycode := range yValid {
					if n := scanned.Add(1); n%5000000 == 0 {
						elapsed := time.Since(started).Seconds()
						log.Printf("[train] scanned %.1f%%  rate=%.0f/s",
							float64(n)/float64(total)*100, float64(n)/elapsed)
					}
					y, _ := w.codec.Decode(ycode, w.ybuf[:0])
					if !legalPair(x, y) {
						continue
					}
					canonCode := w.canon.Code(x, y)
					if _, seen := canons[canonCode]; seen {
						continue
					}
					canons[canonCode] = struct{}{}
					if w.referee.Winner(x, y) == wantTerminal {
						terminals = append(terminals, canonCode)
					}
				}
			}
			codes := make([]uint64, 0, len(canons))
			for code := range canons {
				codes = append(codes, code)
			}
			localCodes[worker] = codes
			localTerminals[worker] = terminals
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	s.codes = sortedUnion(localCodes)
	s.terminals = sortedUnion(localTerminals)
	log.Printf("[train] enumeration done: canonical=%d terminal=%d (%.1fs)",
		len(s.codes), len(s.terminals), time.Since(started).Seconds())
	return nil
}

// sortedUnion merges per-worker code lists into one ascending list.
// Duplicates across workers are expected: symmetric images of one class
// can fall into different X shards.
func sortedUnion(parts [][]uint64) []uint64 {
	size := 0
	for _, part := range parts {
		size += len(part)
	}
	merged := make([]uint64, 0, size)
	for _, part := range parts {
		merged = append(merged, part...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	out := merged[:0]
	for i, code := range merged {
		if i == 0 || code != out[len(out)-1] {
			out = append(out, code)
		}
	}
	return out
}

func (s *EdgelessSolver) indexOf(code uint64) int {
	i := sort.Search(len(s.codes), func(i int) bool { return s.codes[i] >= code })
	if i < len(s.codes) && s.codes[i] == code {
		return i
	}
	return -1
}

// InitNeed allocates the per-state arrays, flags the terminal seeds, and
// counts the distinct waiting-side successors of every state that is not a
// seed (terminals of the other side included; Propagate clears theirs).
func (s *EdgelessSolver) InitNeed() error {
	n := len(s.codes)
	log.Printf("[train] allocating arrays for %d states (~%d MB)", n, n*6/(1024*1024))
	s.need = make([]uint8, n)
	s.flags = make([]uint8, n)
	s.depth[0] = make([]uint16, n)
	s.depth[1] = make([]uint16, n)

	for _, code := range s.terminals {
		i := s.indexOf(code)
		if i < 0 {
			return fmt.Errorf("terminal %d missing from code array", code)
		}
		s.flags[i] = 3
	}
	s.countB = uint64(len(s.terminals))

	started := time.Now()
	sym := game.NewSymmetry(s.params.BoardSize)
	var group errgroup.Group
	for worker := 0; worker < s.workers; worker++ {
		worker := worker
		group.Go(func() error {
			w := newSynth(s.params, sym)
			for i := worker; i < n; i += s.workers {
				if s.flags[i] != 0 {
					continue
				}
				x, y := w.decodeState(s.codes[i])
				var count int
				if s.side == game.PlayerX {
					count = w.ySuccCount(x, y)
				} else {
					count = w.xSuccCount(x, y)
				}
				s.need[i] = uint8(count)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	log.Printf("[train] need counters ready (%.1fs)", time.Since(started).Seconds())
	return nil
}

// Propagate runs the single-sided retrograde BFS. The queue holds states
// whose waiting-side label is set; their moving-side predecessors get the
// moving-side label, and each freshly labelled predecessor charges its
// own waiting-side predecessors' need counters. Terminal states have no
// moves, so a terminal of either side is never labelled as a predecessor;
// a terminal met as a need-counter owner has its counter cleared instead.
func (s *EdgelessSolver) Propagate() {
	moverIdx := 0
	if s.side == game.PlayerO {
		moverIdx = 1
	}
	waitIdx := 1 - moverIdx
	moverBit := uint8(1) << uint(moverIdx)
	waitBit := uint8(1) << uint(waitIdx)

	sym := game.NewSymmetry(s.params.BoardSize)
	w := newSynth(s.params, sym)
	predScratch := make([]uint64, 0, s.params.Cells()+1)

	queue := make([]int, 0, len(s.terminals))
	for _, code := range s.terminals {
		queue = append(queue, s.indexOf(code))
	}

	started := time.Now()
	iters := uint64(0)
	for head := 0; head < len(queue); head++ {
		i := queue[head]
		iters++
		if iters%1000000 == 0 {
			log.Printf("[solve] bfs: processed=%d typeA=%d typeB=%d queued=%d",
				iters, s.countA, s.countB, len(queue)-head)
		}

		x, y := w.decodeState(s.codes[i])
		if moverIdx == 0 {
			predScratch = append(predScratch[:0], w.xPreds(x, y)...)
		} else {
			predScratch = append(predScratch[:0], w.yPreds(x, y)...)
		}
		for _, pred := range predScratch {
			j := s.indexOf(pred)
			if j < 0 || s.flags[j]&moverBit != 0 {
				continue
			}
			xj, yj := w.decodeState(s.codes[j])
			if w.referee.Winner(xj, yj) != 0 {
				continue
			}
			s.flags[j] |= moverBit
			s.depth[moverIdx][j] = s.depth[waitIdx][i] + 1
			s.countA++

			var grands []uint64
			if waitIdx == 1 {
				grands = w.yPreds(xj, yj)
			} else {
				grands = w.xPreds(xj, yj)
			}
			for _, grand := range grands {
				k := s.indexOf(grand)
				if k < 0 || s.flags[k]&waitBit != 0 {
					continue
				}
				if s.need[k] == 0 {
					continue
				}
				if xk, yk := w.decodeState(s.codes[k]); w.referee.Winner(xk, yk) != 0 {
					s.need[k] = 0
					continue
				}
				s.need[k]--
				if s.need[k] == 0 {
					s.flags[k] |= waitBit
					s.depth[waitIdx][k] = s.depth[moverIdx][j] + 1
					s.countB++
					queue = append(queue, k)
				}
			}
		}
	}
	log.Printf("[solve] bfs done: typeA=%d typeB=%d (%.1fs)",
		s.countA, s.countB, time.Since(started).Seconds())
}

// WriteTable saves every flagged state. The X pass emits labels in
// {0, +1}, the O pass in {0, -1}, so two pass outputs merge without
// collisions.
func (s *EdgelessSolver) WriteTable(path string) error {
	label := int8(1)
	if s.side == game.PlayerO {
		label = -1
	}
	w, err := store.NewWriter(path)
	if err != nil {
		return err
	}
	for i, flags := range s.flags {
		if flags == 0 {
			continue
		}
		rec := store.Record{
			Code:   s.codes[i],
			Depth0: s.depth[0][i],
			Depth1: s.depth[1][i],
		}
		if flags&1 != 0 {
			rec.DP0 = label
		}
		if flags&2 != 0 {
			rec.DP1 = label
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	count := w.Count()
	if err := w.Close(); err != nil {
		return err
	}
	log.Printf("[train] wrote %d records to %s (%.1f MB)",
		count, path, float64(8+count*store.RecordSize)/1024/1024)
	return nil
}

// StateInfo exposes one solved state for verification.
func (s *EdgelessSolver) StateInfo(code uint64) (dp [2]int8, depth [2]uint16, ok bool) {
	i := s.indexOf(code)
	if i < 0 {
		return dp, depth, false
	}
	label := int8(1)
	if s.side == game.PlayerO {
		label = -1
	}
	if s.flags[i]&1 != 0 {
		dp[0] = label
	}
	if s.flags[i]&2 != 0 {
		dp[1] = label
	}
	return dp, [2]uint16{s.depth[0][i], s.depth[1][i]}, true
}

func (s *EdgelessSolver) StateCount() int {
	return len(s.codes)
}

// Run executes the whole pass and writes the single-sided table.
func (s *EdgelessSolver) Run(path string) error {
	if err := s.params.Validate(); err != nil {
		return err
	}
	if err := s.Enumerate(); err != nil {
		return err
	}
	if err := s.InitNeed(); err != nil {
		return err
	}
	s.Propagate()
	return s.WriteTable(path)
}
