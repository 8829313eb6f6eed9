package server

import (
	"log"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
)

type HistoryEntry struct {
	Pos    int
	Player game.PlayerColor
	IsAi   bool
}

// Game drives one live match: the board state, the two seats, and the
// shared perfect strategy used by any AI seat.
type Game struct {
	settings GameSettings
	rules    game.Rules
	state    game.GameState
	history  []HistoryEntry
	xPlayer  IPlayer
	oPlayer  IPlayer
	strategy *PerfectStrategy
}

func NewGame(settings GameSettings, strategy *PerfectStrategy) Game {
	g := Game{strategy: strategy}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	g.settings = settings
	g.rules = game.NewRules(settings.Params)
	g.state.Reset(settings.Params)
	g.history = nil
	g.createPlayers()
}

func (g *Game) Start() {
	if g.state.Status == game.StatusNotStarted {
		g.state.Status = game.StatusRunning
	}
}

func (g *Game) State() game.GameState {
	return g.state.Clone()
}

// History returns a snapshot of the applied moves.
func (g *Game) History() []HistoryEntry {
	return append([]HistoryEntry(nil), g.history...)
}

func (g *Game) LastEntry() (HistoryEntry, bool) {
	if len(g.history) == 0 {
		return HistoryEntry{}, false
	}
	return g.history[len(g.history)-1], true
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) TryApplyMove(pos int) (bool, string) {
	if g.state.Status != game.StatusRunning {
		return false, "game not running"
	}
	player := g.currentPlayer()
	isAiMove := player != nil && !player.IsHuman()
	mover := g.state.ToMove
	ok, reason := g.state.Apply(g.rules, pos)
	if !ok {
		g.state.LastMessage = "Illegal move: " + reason
		return false, g.state.LastMessage
	}
	g.history = append(g.history, HistoryEntry{Pos: pos, Player: mover, IsAi: isAiMove})
	if g.state.Status == game.StatusXWon || g.state.Status == game.StatusOWon {
		log.Printf("[game] %s wins after %d plies", playerName(mover), len(g.history))
	}
	return true, ""
}

// Tick advances the match by at most one move: a pending human move, or
// the AI seat's table answer.
func (g *Game) Tick() bool {
	if g.state.Status != game.StatusRunning {
		return false
	}
	player := g.currentPlayer()
	if player == nil {
		return false
	}
	if player.IsHuman() {
		human, ok := player.(*HumanPlayer)
		if ok && human.HasPendingMove() {
			applied, _ := g.TryApplyMove(human.TakePendingMove())
			return applied
		}
		return false
	}
	pos, ok := player.ChooseMove(g.state)
	if !ok {
		return false
	}
	applied, _ := g.TryApplyMove(pos)
	return applied
}

func (g *Game) SubmitHumanMove(pos int) bool {
	player := g.currentPlayer()
	if player == nil || !player.IsHuman() {
		return false
	}
	human, ok := player.(*HumanPlayer)
	if !ok {
		return false
	}
	human.SetPendingMove(pos)
	return true
}

func (g *Game) CurrentPlayerIsHuman() bool {
	player := g.currentPlayer()
	return player != nil && player.IsHuman()
}

// Hint asks the strategy for the side to move regardless of the seat.
func (g *Game) Hint() (int, bool) {
	if g.state.Status != game.StatusRunning || g.strategy == nil {
		return 0, false
	}
	return g.strategy.ChooseMove(g.state)
}

func (g *Game) currentPlayer() IPlayer {
	if g.state.ToMove == game.PlayerX {
		return g.xPlayer
	}
	return g.oPlayer
}

func (g *Game) createPlayers() {
	if g.settings.XType == PlayerHuman {
		g.xPlayer = NewHumanPlayer()
	} else {
		g.xPlayer = g.strategy
	}
	if g.settings.OType == PlayerHuman {
		g.oPlayer = NewHumanPlayer()
	} else {
		g.oPlayer = g.strategy
	}
}

func playerName(player game.PlayerColor) string {
	if player == game.PlayerX {
		return "X"
	}
	return "O"
}
