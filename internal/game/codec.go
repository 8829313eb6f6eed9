package game

// Codec maps ordered position sequences to base-B integer codes and back.
// Digit zero is reserved: code 0 is the empty sequence and no mid-sequence
// digit may be zero, so encode is a bijection on legal sequences.
type Codec struct {
	params Params
	sep    uint64
}

func NewCodec(p Params) Codec {
	return Codec{params: p, sep: p.Separator()}
}

func (c Codec) Params() Params {
	return c.params
}

func (c Codec) Separator() uint64 {
	return c.sep
}

// Encode packs a sequence oldest-first: position i contributes
// (pos+1)*Base^i, so the most recently placed piece owns the most
// significant digit.
func (c Codec) Encode(positions []int) uint64 {
	code := uint64(0)
	mult := uint64(1)
	for _, pos := range positions {
		code += uint64(pos+1) * mult
		mult *= uint64(c.params.Base)
	}
	return code
}

func (c Codec) EncodeState(x, y []int) uint64 {
	return c.Encode(x)*c.sep + c.Encode(y)
}

// Decode appends the decoded positions to out (usually out[:0] of a reused
// buffer) and reports whether the code is legal: no mid-digit zero, every
// position on the board, no duplicates.
func (c Codec) Decode(code uint64, out []int) ([]int, bool) {
	base := uint64(c.params.Base)
	cells := c.params.Cells()
	var seen uint64
	for code > 0 {
		digit := int(code % base)
		if digit == 0 {
			return out, false
		}
		pos := digit - 1
		if pos >= cells {
			return out, false
		}
		if seen&(1<<uint(pos)) != 0 {
			return out, false
		}
		seen |= 1 << uint(pos)
		out = append(out, pos)
		code /= base
	}
	return out, true
}

func (c Codec) DecodeState(code uint64, xout, yout []int) (x, y []int, ok bool) {
	x, ok = c.Decode(code/c.sep, xout)
	if !ok {
		return x, yout, false
	}
	y, ok = c.Decode(code%c.sep, yout)
	return x, y, ok
}
