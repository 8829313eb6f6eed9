package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/RogerXXH/limited-tic-tac-toe/internal/game"
)

type StatusResponse struct {
	Settings    GameSettingsDTO   `json:"settings"`
	Board       [][]int           `json:"board"`
	NextPlayer  int               `json:"next_player"`
	Winner      int               `json:"winner"`
	BoardSize   int               `json:"board_size"`
	MaxMove     int               `json:"max_move"`
	Status      string            `json:"status"`
	History     []historyEntryDTO `json:"history"`
	WinningLine []int             `json:"winning_line"`
}

type GameSettingsDTO struct {
	Mode        string `json:"mode"`
	HumanPlayer int    `json:"human_player"`
}

type apiMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type historyEntryDTO struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Player int  `json:"player"`
	IsAi   bool `json:"is_ai"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

type resetPayload struct {
	History     []historyEntryDTO `json:"history"`
	NextPlayer  int               `json:"next_player"`
	Winner      int               `json:"winner"`
	Status      string            `json:"status"`
	BoardSize   int               `json:"board_size"`
	WinningLine []int             `json:"winning_line"`
}

type hintResponse struct {
	X  int  `json:"x"`
	Y  int  `json:"y"`
	Ok bool `json:"ok"`
}

// Server ties the controller, the broadcast hub and the HTTP surface
// together.
type Server struct {
	config     Config
	controller *GameController
	hub        *Hub
}

func New(config Config, controller *GameController, hub *Hub) *Server {
	return &Server{config: config, controller: controller, hub: hub}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(s.controller))
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings GameSettingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		settings := settingsFromDTO(payload.Settings, DefaultGameSettings(s.config.Params))
		s.controller.StartGame(settings)
		writeJSON(w, http.StatusOK, controllerStatus(s.controller))
		s.hub.broadcastReset <- resetFromController(s.controller)
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		settings := s.controller.Settings()
		s.controller.Reset(settings)
		writeJSON(w, http.StatusOK, controllerStatus(s.controller))
		s.hub.broadcastReset <- resetFromController(s.controller)
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		size := s.config.Params.BoardSize
		if payload.X < 0 || payload.Y < 0 || payload.X >= size || payload.Y >= size {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "out of bounds"})
			return
		}
		applied, errMsg := s.controller.ApplyHumanMove(payload.Y*size + payload.X)
		if !applied {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
			return
		}
		if entry, ok := s.controller.LatestHistoryEntry(); ok {
			s.hub.broadcastHistory <- historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry, size)}}
		}
		s.hub.broadcastStatus <- controllerStatus(s.controller)
		writeJSON(w, http.StatusOK, controllerStatus(s.controller))
	})

	r.Get("/api/hint", func(w http.ResponseWriter, r *http.Request) {
		pos, ok := s.controller.Hint()
		size := s.config.Params.BoardSize
		writeJSON(w, http.StatusOK, hintResponse{X: pos % size, Y: pos / size, Ok: ok})
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(s.hub, s.controller, w, r)
	})

	return r
}

// BroadcastTickUpdate pushes the AI's reply to connected clients after a
// successful Tick.
func (s *Server) BroadcastTickUpdate() {
	size := s.config.Params.BoardSize
	if entry, ok := s.controller.LatestHistoryEntry(); ok {
		s.hub.broadcastHistory <- historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry, size)}}
	}
	s.hub.broadcastStatus <- controllerStatus(s.controller)
}

func controllerStatus(controller *GameController) StatusResponse {
	state := controller.State()
	settings := controller.Settings()
	size := state.Board.Size()
	return StatusResponse{
		Settings:    settingsToDTO(settings),
		Board:       boardToSlice(state.Board),
		NextPlayer:  playerToInt(state.ToMove),
		Winner:      winnerFromStatus(state.Status),
		BoardSize:   size,
		MaxMove:     settings.Params.MaxMove,
		Status:      statusToString(state.Status),
		History:     historyToDTO(controller.History(), size),
		WinningLine: append([]int(nil), state.WinningLine...),
	}
}

func settingsFromDTO(dto GameSettingsDTO, base GameSettings) GameSettings {
	settings := base
	switch dto.Mode {
	case "ai_vs_ai":
		settings.XType = PlayerAI
		settings.OType = PlayerAI
	case "human_vs_human":
		settings.XType = PlayerHuman
		settings.OType = PlayerHuman
	case "ai_vs_human":
		if dto.HumanPlayer == 1 {
			settings.XType = PlayerHuman
			settings.OType = PlayerAI
		} else {
			settings.XType = PlayerAI
			settings.OType = PlayerHuman
		}
	}
	return settings
}

func settingsToDTO(settings GameSettings) GameSettingsDTO {
	mode := "ai_vs_human"
	humanPlayer := 0
	switch {
	case settings.XType == PlayerAI && settings.OType == PlayerAI:
		mode = "ai_vs_ai"
	case settings.XType == PlayerHuman && settings.OType == PlayerHuman:
		mode = "human_vs_human"
		humanPlayer = 1
	case settings.XType == PlayerHuman:
		humanPlayer = 1
	default:
		humanPlayer = 2
	}
	return GameSettingsDTO{Mode: mode, HumanPlayer: humanPlayer}
}

func resetFromController(controller *GameController) resetPayload {
	state := controller.State()
	size := state.Board.Size()
	return resetPayload{
		History:     historyToDTO(controller.History(), size),
		NextPlayer:  playerToInt(state.ToMove),
		Winner:      winnerFromStatus(state.Status),
		Status:      statusToString(state.Status),
		BoardSize:   size,
		WinningLine: append([]int(nil), state.WinningLine...),
	}
}

func boardToSlice(board game.Board) [][]int {
	size := board.Size()
	rows := make([][]int, size)
	for y := 0; y < size; y++ {
		rows[y] = make([]int, size)
		for x := 0; x < size; x++ {
			rows[y][x] = cellToInt(board.AtPos(y*size + x))
		}
	}
	return rows
}

func cellToInt(cell game.Cell) int {
	switch cell {
	case game.CellX:
		return 1
	case game.CellO:
		return 2
	default:
		return 0
	}
}

func playerToInt(player game.PlayerColor) int {
	if player == game.PlayerX {
		return 1
	}
	return 2
}

func winnerFromStatus(status game.GameStatus) int {
	switch status {
	case game.StatusXWon:
		return 1
	case game.StatusOWon:
		return 2
	default:
		return 0
	}
}

func statusToString(status game.GameStatus) string {
	switch status {
	case game.StatusNotStarted:
		return "not_started"
	case game.StatusXWon:
		return "x_won"
	case game.StatusOWon:
		return "o_won"
	default:
		return "running"
	}
}

func historyToDTO(entries []HistoryEntry, size int) []historyEntryDTO {
	result := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		result = append(result, historyEntryToDTO(entry, size))
	}
	return result
}

func historyEntryToDTO(entry HistoryEntry, size int) historyEntryDTO {
	return historyEntryDTO{
		X:      entry.Pos % size,
		Y:      entry.Pos / size,
		Player: playerToInt(entry.Player),
		IsAi:   entry.IsAi,
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
