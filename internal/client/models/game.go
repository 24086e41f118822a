package models

// Player marks used on the board.
const (
	PlayerX = "X"
	PlayerO = "O"
)

// GameState is the server's verdict on a game.
type GameState struct {
	IsOver bool    `json:"isOver"`
	Winner *string `json:"winner"`
	IsDraw bool    `json:"isDraw"`
	ID     string  `json:"_id,omitempty"`
}

// GameSession is a game in progress as reported by /game/current.
type GameSession struct {
	ID              string     `json:"id"`
	Board           [][]string `json:"board"`
	CurrentPlayer   string     `json:"currentPlayer"`
	GameState       GameState  `json:"gameState"`
	IsComputerFirst bool       `json:"isComputerFirst"`
}

// UserMark is the mark the human plays: "O" when the computer opens, "X" otherwise.
func (g GameSession) UserMark() string {
	if g.IsComputerFirst {
		return PlayerO
	}
	return PlayerX
}

// IsUserTurn reports whether the server expects the user's move.
func (g GameSession) IsUserTurn() bool {
	return !g.GameState.IsOver && g.CurrentPlayer == g.UserMark()
}

type GameResponse struct {
	GameSession GameSession `json:"gameSession"`
}

type StartGameRequest struct {
	IsComputerFirst bool `json:"isComputerFirst"`
}

type MoveRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type GameStats struct {
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Draws  int    `json:"draws"`
	ID     string `json:"_id,omitempty"`
}

type GameStatsResponse struct {
	Stats GameStats `json:"stats"`
}
