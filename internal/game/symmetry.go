package game

// Symmetry holds the eight permutations of board cells generated by the
// square's rotation/reflection group, in a fixed order so transform ids
// are stable: identity, 90°, 180°, 270°, horizontal flip, vertical flip,
// main diagonal, anti diagonal.
type Symmetry struct {
	n          int
	transforms [8][]int
}

func NewSymmetry(n int) *Symmetry {
	s := &Symmetry{n: n}
	last := n - 1
	maps := [8]func(r, c int) (int, int){
		func(r, c int) (int, int) { return r, c },
		func(r, c int) (int, int) { return last - c, r },
		func(r, c int) (int, int) { return last - r, last - c },
		func(r, c int) (int, int) { return c, last - r },
		func(r, c int) (int, int) { return r, last - c },
		func(r, c int) (int, int) { return last - r, c },
		func(r, c int) (int, int) { return c, r },
		func(r, c int) (int, int) { return last - c, last - r },
	}
	for t, m := range maps {
		perm := make([]int, n*n)
		for p := range perm {
			r, c := m(p/n, p%n)
			perm[p] = r*n + c
		}
		s.transforms[t] = perm
	}
	return s
}

// Apply writes the transformed positions into out (insertion order is
// preserved) and returns it.
func (s *Symmetry) Apply(trans int, positions, out []int) []int {
	perm := s.transforms[trans]
	out = out[:0]
	for _, pos := range positions {
		out = append(out, perm[pos])
	}
	return out
}

func (s *Symmetry) Cell(trans, pos int) int {
	return s.transforms[trans][pos]
}

// OrbitReps returns the cells that are minimal within their symmetry
// orbit. On 4x4 these are {0, 1, 5}; the enumerator uses them to prune
// first-move-equivalent X codes.
func (s *Symmetry) OrbitReps() []int {
	reps := []int{}
	for p := 0; p < s.n*s.n; p++ {
		min := p
		for t := 1; t < 8; t++ {
			if img := s.transforms[t][p]; img < min {
				min = img
			}
		}
		if min == p {
			reps = append(reps, p)
		}
	}
	return reps
}

// Canonical is a state together with the transform that minimized it.
type Canonical struct {
	X, Y  []int
	Trans int
	Code  uint64
}

// Canon canonicalizes states against one Codec/Symmetry pair. It reuses
// internal scratch buffers, so each goroutine needs its own Canon.
type Canon struct {
	codec  Codec
	sym    *Symmetry
	xt, yt []int
}

func NewCanon(codec Codec, sym *Symmetry) *Canon {
	m := codec.Params().MaxMove
	return &Canon{
		codec: codec,
		sym:   sym,
		xt:    make([]int, 0, m),
		yt:    make([]int, 0, m),
	}
}

// Code returns the minimum state code over the eight transforms.
func (c *Canon) Code(x, y []int) uint64 {
	best := uint64(0)
	for t := 0; t < 8; t++ {
		c.xt = c.sym.Apply(t, x, c.xt)
		c.yt = c.sym.Apply(t, y, c.yt)
		code := c.codec.EncodeState(c.xt, c.yt)
		if t == 0 || code < best {
			best = code
		}
	}
	return best
}

// State returns the full canonical representative; the first transform
// reaching the minimum code wins, so the result is deterministic.
func (c *Canon) State(x, y []int) Canonical {
	out := Canonical{}
	for t := 0; t < 8; t++ {
		c.xt = c.sym.Apply(t, x, c.xt)
		c.yt = c.sym.Apply(t, y, c.yt)
		code := c.codec.EncodeState(c.xt, c.yt)
		if t == 0 || code < out.Code {
			out.Code = code
			out.Trans = t
			out.X = append(out.X[:0], c.xt...)
			out.Y = append(out.Y[:0], c.yt...)
		}
	}
	return out
}
