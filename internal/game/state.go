package game

// Cell values match the solver's board convention: X pieces are +1, O
// pieces are -1, empty cells 0.
type Cell int8

const (
	CellEmpty Cell = 0
	CellX     Cell = 1
	CellO     Cell = -1
)

type PlayerColor int

const (
	PlayerX PlayerColor = iota
	PlayerO
)

func CellFromPlayer(player PlayerColor) Cell {
	if player == PlayerX {
		return CellX
	}
	return CellO
}

func OtherPlayer(player PlayerColor) PlayerColor {
	if player == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Board is the materialized view of the two piece queues, addressed by
// row-major cell index. The queues are authoritative; the board exists
// for occupancy checks and line scans.
type Board struct {
	size  int
	cells []Cell
}

func NewBoard(size int) Board {
	return Board{size: size, cells: make([]Cell, size*size)}
}

func (b Board) AtPos(pos int) Cell {
	return b.cells[pos]
}

func (b *Board) SetPos(pos int, value Cell) {
	b.cells[pos] = value
}

func (b Board) Size() int {
	return b.size
}

func (b Board) Clone() Board {
	clone := Board{size: b.size, cells: make([]Cell, len(b.cells))}
	copy(clone.cells, b.cells)
	return clone
}

// AppendMove applies the FIFO placement rule to a sequence copy: append
// the new cell to dst and drop the oldest piece once the budget is
// exceeded.
func AppendMove(dst, seq []int, cell, maxMove int) []int {
	dst = append(dst, seq...)
	dst = append(dst, cell)
	if len(dst) > maxMove {
		copy(dst, dst[1:])
		dst = dst[:len(dst)-1]
	}
	return dst
}

type GameStatus int

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusXWon
	StatusOWon
)

// GameState is a live position: the board plus the two FIFO piece queues,
// oldest first. Placing an (M+1)-th piece evicts the side's oldest one.
type GameState struct {
	Params      Params
	Board       Board
	X           []int
	Y           []int
	History     []int
	Status      GameStatus
	ToMove      PlayerColor
	HasLastMove bool
	LastMove    int
	LastMessage string
	WinningLine []int
}

func DefaultGameState(p Params) GameState {
	state := GameState{}
	state.Reset(p)
	return state
}

func (s *GameState) Reset(p Params) {
	s.Params = p
	s.Board = NewBoard(p.BoardSize)
	s.X = s.X[:0]
	s.Y = s.Y[:0]
	s.History = s.History[:0]
	s.Status = StatusNotStarted
	s.ToMove = PlayerX
	s.HasLastMove = false
	s.LastMove = -1
	s.LastMessage = ""
	s.WinningLine = nil
}

func (s GameState) Clone() GameState {
	clone := s
	clone.Board = s.Board.Clone()
	clone.X = append([]int(nil), s.X...)
	clone.Y = append([]int(nil), s.Y...)
	clone.History = append([]int(nil), s.History...)
	clone.WinningLine = append([]int(nil), s.WinningLine...)
	return clone
}

// Apply places the current player's piece at pos, evicting the oldest
// piece when the side exceeds its budget, and resolves the win check from
// the placed cell. It reports whether the move was legal.
func (s *GameState) Apply(rules Rules, pos int) (bool, string) {
	if pos < 0 || pos >= s.Params.Cells() {
		return false, "out of bounds"
	}
	if s.Board.AtPos(pos) != CellEmpty {
		return false, "occupied"
	}
	mover := s.ToMove
	cell := CellFromPlayer(mover)
	s.Board.SetPos(pos, cell)
	if mover == PlayerX {
		s.X = append(s.X, pos)
		if len(s.X) > s.Params.MaxMove {
			s.Board.SetPos(s.X[0], CellEmpty)
			s.X = append(s.X[:0], s.X[1:]...)
		}
	} else {
		s.Y = append(s.Y, pos)
		if len(s.Y) > s.Params.MaxMove {
			s.Board.SetPos(s.Y[0], CellEmpty)
			s.Y = append(s.Y[:0], s.Y[1:]...)
		}
	}
	s.History = append(s.History, pos)
	s.LastMove = pos
	s.HasLastMove = true
	s.LastMessage = ""

	if rules.IsWinAt(s.Board, pos) {
		if line, ok := rules.FindAlignmentLine(s.Board, pos); ok {
			s.WinningLine = line
		}
		if mover == PlayerX {
			s.Status = StatusXWon
		} else {
			s.Status = StatusOWon
		}
		return true, ""
	}
	s.ToMove = OtherPlayer(mover)
	return true, ""
}
