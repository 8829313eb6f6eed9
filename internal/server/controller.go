package server

import (
	"sync"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
)

type GameController struct {
	mu   sync.Mutex
	game Game
}

func NewGameController(settings GameSettings, strategy *PerfectStrategy) *GameController {
	return &GameController{game: NewGame(settings, strategy)}
}

func (gc *GameController) ApplyHumanMove(pos int) (bool, string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.game.CurrentPlayerIsHuman() {
		return false, "not human turn"
	}
	return gc.game.TryApplyMove(pos)
}

func (gc *GameController) Tick() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Tick()
}

func (gc *GameController) State() game.GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.State()
}

func (gc *GameController) Settings() GameSettings {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Settings()
}

func (gc *GameController) History() []HistoryEntry {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History()
}

func (gc *GameController) LatestHistoryEntry() (HistoryEntry, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.LastEntry()
}

func (gc *GameController) Hint() (int, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Hint()
}

func (gc *GameController) Reset(settings GameSettings) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Reset(settings)
}

func (gc *GameController) StartGame(settings GameSettings) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.Reset(settings)
	gc.game.Start()
}
