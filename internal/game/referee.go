package game

// Referee is the solver-side terminal predicate. A side can only have
// completed a line once it has at least MaxMove-1 pieces on the board,
// and when it has, the line necessarily runs through its oldest piece, so
// a single scan from that cell decides the state. X is checked first.
//
// The scratch board is reused across calls; a Referee is not safe for
// concurrent use.
type Referee struct {
	params Params
	rules  Rules
	board  Board
}

func NewReferee(p Params) *Referee {
	return &Referee{
		params: p,
		rules:  NewRules(p),
		board:  NewBoard(p.BoardSize),
	}
}

// Winner returns +1 when X has just completed a line, -1 when O has, and
// 0 otherwise.
func (r *Referee) Winner(x, y []int) int {
	for _, pos := range x {
		r.board.SetPos(pos, CellX)
	}
	for _, pos := range y {
		r.board.SetPos(pos, CellO)
	}
	result := 0
	guard := r.params.MaxMove - 1
	if guard < 1 {
		guard = 1
	}
	if len(x) >= guard && r.rules.IsWinAt(r.board, x[0]) {
		result = 1
	} else if len(y) >= guard && r.rules.IsWinAt(r.board, y[0]) {
		result = -1
	}
	for _, pos := range x {
		r.board.SetPos(pos, CellEmpty)
	}
	for _, pos := range y {
		r.board.SetPos(pos, CellEmpty)
	}
	return result
}
