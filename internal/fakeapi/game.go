package fakeapi

import (
	"net/http"

	"github.com/dmitrijs2005/tictac/internal/client/models"
	"github.com/google/uuid"
)

const boardSize = 3

var winLines = [][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}}, {{1, 0}, {1, 1}, {1, 2}}, {{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}}, {{0, 1}, {1, 1}, {2, 1}}, {{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}}, {{0, 2}, {1, 1}, {2, 0}},
}

func newBoard() [][]string {
	b := make([][]string, boardSize)
	for i := range b {
		b[i] = make([]string, boardSize)
	}
	return b
}

func other(mark string) string {
	if mark == models.PlayerX {
		return models.PlayerO
	}
	return models.PlayerX
}

// settle updates the game state after a move by mark.
func settle(g *models.GameSession, mark string) {
	for _, line := range winLines {
		a, b, c := line[0], line[1], line[2]
		if v := g.Board[a[0]][a[1]]; v != "" && v == g.Board[b[0]][b[1]] && v == g.Board[c[0]][c[1]] {
			winner := v
			g.GameState.IsOver = true
			g.GameState.Winner = &winner
			return
		}
	}
	for _, row := range g.Board {
		for _, v := range row {
			if v == "" {
				g.CurrentPlayer = other(mark)
				return
			}
		}
	}
	g.GameState.IsOver = true
	g.GameState.IsDraw = true
}

// computerMove plays the first free cell.
func computerMove(g *models.GameSession) {
	mark := other(g.UserMark())
	for r := range g.Board {
		for c := range g.Board[r] {
			if g.Board[r][c] == "" {
				g.Board[r][c] = mark
				settle(g, mark)
				return
			}
		}
	}
}

// record adds a finished game to the user's stats; the caller holds s.mu.
func (s *Server) record(userID string, g *models.GameSession) {
	st, ok := s.stats[userID]
	if !ok {
		st = &models.GameStats{ID: uuid.NewString()}
		s.stats[userID] = st
	}
	switch {
	case g.GameState.IsDraw:
		st.Draws++
	case g.GameState.Winner != nil && *g.GameState.Winner == g.UserMark():
		st.Wins++
	default:
		st.Losses++
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request, userID string) {
	var in models.StartGameRequest
	if !decode(r, &in) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g := &models.GameSession{
		ID:              uuid.NewString(),
		Board:           newBoard(),
		CurrentPlayer:   models.PlayerX,
		GameState:       models.GameState{ID: uuid.NewString()},
		IsComputerFirst: in.IsComputerFirst,
	}
	if in.IsComputerFirst {
		computerMove(g)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[userID] = g
	writeJSON(w, http.StatusCreated, models.GameResponse{GameSession: *g})
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[userID]
	if !ok {
		writeError(w, http.StatusNotFound, "No active game session")
		return
	}
	writeJSON(w, http.StatusOK, models.GameResponse{GameSession: *g})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, userID string) {
	var in models.MoveRequest
	if !decode(r, &in) || in.Row < 0 || in.Row >= boardSize || in.Col < 0 || in.Col >= boardSize {
		writeError(w, http.StatusBadRequest, "Invalid move coordinates")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[userID]
	switch {
	case !ok:
		writeError(w, http.StatusNotFound, "No active game session")
		return
	case g.GameState.IsOver:
		writeError(w, http.StatusBadRequest, "Game is already over")
		return
	case g.CurrentPlayer != g.UserMark():
		writeError(w, http.StatusBadRequest, "Not your turn")
		return
	case g.Board[in.Row][in.Col] != "":
		writeError(w, http.StatusBadRequest, "Cell is already occupied")
		return
	}

	g.Board[in.Row][in.Col] = g.UserMark()
	settle(g, g.UserMark())
	if !g.GameState.IsOver {
		computerMove(g)
	}
	if g.GameState.IsOver {
		s.record(userID, g)
	}
	writeJSON(w, http.StatusOK, models.GameResponse{GameSession: *g})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := models.GameStats{}
	if cur, ok := s.stats[userID]; ok {
		st = *cur
	}
	writeJSON(w, http.StatusOK, models.GameStatsResponse{Stats: st})
}
