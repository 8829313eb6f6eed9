package game

import "testing"

func TestTransformTables3x3(t *testing.T) {
	want := [8][9]int{
		{0, 1, 2, 3, 4, 5, 6, 7, 8},
		{6, 3, 0, 7, 4, 1, 8, 5, 2},
		{8, 7, 6, 5, 4, 3, 2, 1, 0},
		{2, 5, 8, 1, 4, 7, 0, 3, 6},
		{2, 1, 0, 5, 4, 3, 8, 7, 6},
		{6, 7, 8, 3, 4, 5, 0, 1, 2},
		{0, 3, 6, 1, 4, 7, 2, 5, 8},
		{8, 5, 2, 7, 4, 1, 6, 3, 0},
	}
	sym := NewSymmetry(3)
	for trans := 0; trans < 8; trans++ {
		for pos := 0; pos < 9; pos++ {
			if got := sym.Cell(trans, pos); got != want[trans][pos] {
				t.Errorf("transform %d cell %d: got %d want %d", trans, pos, got, want[trans][pos])
			}
		}
	}
}

func TestTransformsArePermutations(t *testing.T) {
	for _, n := range []int{3, 4, 5} {
		sym := NewSymmetry(n)
		for trans := 0; trans < 8; trans++ {
			seen := make([]bool, n*n)
			for pos := 0; pos < n*n; pos++ {
				img := sym.Cell(trans, pos)
				if seen[img] {
					t.Fatalf("n=%d transform %d maps two cells to %d", n, trans, img)
				}
				seen[img] = true
			}
		}
	}
}

func TestOrbitReps(t *testing.T) {
	got3 := NewSymmetry(3).OrbitReps()
	if !equalInts(got3, []int{0, 1, 4}) {
		t.Fatalf("3x3 orbit reps: got %v", got3)
	}
	got4 := NewSymmetry(4).OrbitReps()
	if !equalInts(got4, []int{0, 1, 5}) {
		t.Fatalf("4x4 orbit reps: got %v", got4)
	}
}

func TestCanonicalCornerOrbit(t *testing.T) {
	params := Params3x3()
	codec := NewCodec(params)
	canon := NewCanon(codec, NewSymmetry(params.BoardSize))

	corner := canon.Code([]int{0}, nil)
	other := canon.Code([]int{2}, nil)
	if corner != other {
		t.Fatalf("corners should share a canonical code: %d vs %d", corner, other)
	}
	if want := codec.EncodeState([]int{0}, nil); corner != want {
		t.Fatalf("canonical corner code: got %d want %d", corner, want)
	}
}

func TestCanonicalizeIsIdempotentAndMinimal(t *testing.T) {
	params := Params3x3()
	codec := NewCodec(params)
	sym := NewSymmetry(params.BoardSize)
	canon := NewCanon(codec, sym)

	states := [][2][]int{
		{{0, 4, 8}, {1, 3}},
		{{5, 2}, {7, 6}},
		{{8}, {0}},
		{{3, 1, 7}, {2, 6, 4}},
	}
	xbuf := make([]int, 0, 3)
	ybuf := make([]int, 0, 3)
	for _, state := range states {
		cr := canon.State(state[0], state[1])
		if cr.Code != canon.Code(state[0], state[1]) {
			t.Fatalf("State and Code disagree for %v", state)
		}
		again := canon.State(cr.X, cr.Y)
		if again.Code != cr.Code || again.Trans != 0 {
			t.Fatalf("canonical state should be fixed by the identity: %v -> trans %d", state, again.Trans)
		}
		for trans := 0; trans < 8; trans++ {
			xbuf = sym.Apply(trans, state[0], xbuf)
			ybuf = sym.Apply(trans, state[1], ybuf)
			if image := codec.EncodeState(xbuf, ybuf); image < cr.Code {
				t.Fatalf("transform %d of %v beats the canonical code", trans, state)
			}
		}
	}
}
