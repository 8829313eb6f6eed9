package server

import (
	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

type GameSettings struct {
	Params game.Params
	XType  PlayerType
	OType  PlayerType
}

func DefaultGameSettings(p game.Params) GameSettings {
	return GameSettings{
		Params: p,
		XType:  PlayerAI,
		OType:  PlayerHuman,
	}
}

type Config struct {
	Addr      string `json:"-"`
	TablePath string `json:"-"`

	Params game.Params `json:"params"`
}
