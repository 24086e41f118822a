package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/tictac/internal/client/client"
	"github.com/dmitrijs2005/tictac/internal/client/models"
)

// Game endpoint paths, relative to the API base URL.
const (
	PathGameStart   = "/game/start"
	PathGameCurrent = "/game/current"
	PathGameMove    = "/game/move"
	PathGameStats   = "/game/stats"
)

// Fallback texts shown when the server does not explain a failure.
const (
	MsgStartGameFailed   = "Failed to start game"
	MsgCurrentGameFailed = "Failed to get current game"
	MsgInvalidMove       = "Invalid move"
	MsgStatsFailed       = "Failed to get user stats"
)

const noActiveGameText = "No active game session"

// ErrNoActiveGame is returned by CurrentGame and MakeMove when the user has no game.
var ErrNoActiveGame = errors.New("no active game session")

// Doer sends an authenticated JSON call. *client.Caller satisfies it.
type Doer interface {
	Do(ctx context.Context, method, path string, in, out any) error
}

// GameService is the game API used by the CLI. All calls require an
// authenticated session.
type GameService interface {
	StartGame(ctx context.Context, computerFirst bool) (models.GameSession, error)
	CurrentGame(ctx context.Context) (models.GameSession, error)
	MakeMove(ctx context.Context, row, col int) (models.GameSession, error)
	Stats(ctx context.Context) (models.GameStats, error)
}

type GameClient struct {
	api Doer
}

func NewGameClient(api Doer) *GameClient {
	return &GameClient{api: api}
}

func (g *GameClient) StartGame(ctx context.Context, computerFirst bool) (models.GameSession, error) {
	var out models.GameResponse
	if err := g.api.Do(ctx, http.MethodPost, PathGameStart, models.StartGameRequest{IsComputerFirst: computerFirst}, &out); err != nil {
		return models.GameSession{}, fmt.Errorf("start game: %w", err)
	}
	return out.GameSession, nil
}

func (g *GameClient) CurrentGame(ctx context.Context) (models.GameSession, error) {
	var out models.GameResponse
	if err := g.api.Do(ctx, http.MethodGet, PathGameCurrent, nil, &out); err != nil {
		return models.GameSession{}, fmt.Errorf("current game: %w", noActiveGame(err))
	}
	return out.GameSession, nil
}

// MakeMove places the user's mark at row, col (0..2).
func (g *GameClient) MakeMove(ctx context.Context, row, col int) (models.GameSession, error) {
	if row < 0 || row > 2 || col < 0 || col > 2 {
		return models.GameSession{}, fmt.Errorf("%w: row and col must be between 0 and 2", client.ErrValidation)
	}
	var out models.GameResponse
	if err := g.api.Do(ctx, http.MethodPost, PathGameMove, models.MoveRequest{Row: row, Col: col}, &out); err != nil {
		return models.GameSession{}, fmt.Errorf("make move: %w", noActiveGame(err))
	}
	return out.GameSession, nil
}

func (g *GameClient) Stats(ctx context.Context) (models.GameStats, error) {
	var out models.GameStatsResponse
	if err := g.api.Do(ctx, http.MethodGet, PathGameStats, nil, &out); err != nil {
		return models.GameStats{}, fmt.Errorf("stats: %w", err)
	}
	return out.Stats, nil
}

func noActiveGame(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, noActiveGameText) {
		return fmt.Errorf("%w: %w", ErrNoActiveGame, err)
	}
	return err
}
