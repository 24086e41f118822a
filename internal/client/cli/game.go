package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tictac/internal/client/client"
	"github.com/dmitrijs2005/tictac/internal/client/models"
	"github.com/dmitrijs2005/tictac/internal/client/nav"
	"github.com/dmitrijs2005/tictac/internal/client/services"
)

const msgSessionExpired = "Session expired. Please log in again."

var (
	errNotLoggedIn = errors.New("not logged in")
	errNotYourTurn = errors.New("not your turn")
	errUsage       = errors.New("usage")
)

// requireView navigates to a protected view, refusing when logged out.
func (a *App) requireView(v nav.View) error {
	if !a.authenticated() {
		printlnFn("Please log in first.")
		a.navigate(nav.PublicHome)
		return errNotLoggedIn
	}
	a.navigate(v)
	return nil
}

func (a *App) StartGame(ctx context.Context, computerFirst bool) error {
	if err := a.requireView(nav.ViewGame); err != nil {
		return err
	}
	g, err := a.game.StartGame(ctx, computerFirst)
	if err != nil {
		a.reportFailure(err, services.MsgStartGameFailed)
		return err
	}
	a.rememberGame(g)
	printlnFn(renderGame(g))
	return nil
}

func (a *App) CurrentGame(ctx context.Context) error {
	if err := a.requireView(nav.ViewGame); err != nil {
		return err
	}
	g, err := a.game.CurrentGame(ctx)
	if errors.Is(err, services.ErrNoActiveGame) {
		printlnFn("No active game. Type 'start' to begin.")
		return err
	}
	if err != nil {
		a.reportFailure(err, services.MsgCurrentGameFailed)
		return err
	}
	a.rememberGame(g)
	printlnFn(renderGame(g))
	return nil
}

// Move handles "move <row> <col>" with 0-based coordinates.
func (a *App) Move(ctx context.Context, args []string) error {
	if err := a.requireView(nav.ViewGame); err != nil {
		return err
	}
	if len(args) != 2 {
		printlnFn("Usage: move <row> <col>")
		return errUsage
	}
	row, rerr := strconv.Atoi(args[0])
	col, cerr := strconv.Atoi(args[1])
	if rerr != nil || cerr != nil {
		printlnFn("Usage: move <row> <col>")
		return errUsage
	}
	if g, ok := a.cachedGame(); ok && !g.IsUserTurn() {
		printlnFn("Not your turn")
		return errNotYourTurn
	}

	g, err := a.game.MakeMove(ctx, row, col)
	if err != nil {
		a.reportFailure(err, services.MsgInvalidMove)
		return err
	}
	a.rememberGame(g)
	printlnFn(renderGame(g))
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	if err := a.requireView(nav.ViewStats); err != nil {
		return err
	}
	st, err := a.game.Stats(ctx)
	if err != nil {
		a.reportFailure(err, services.MsgStatsFailed)
		return err
	}
	printlnFn(fmt.Sprintf("Wins: %d  Losses: %d  Draws: %d", st.Wins, st.Losses, st.Draws))
	return nil
}

// reportFailure prints the server's message for err, or fallback. Rejected
// credentials get a fixed prompt to log in again; the guard has already
// left the protected view by then.
func (a *App) reportFailure(err error, fallback string) {
	if services.IsAuthFailure(err) {
		printlnFn(msgSessionExpired)
		return
	}
	printlnFn(client.UserMessage(err, fallback))
}

// renderGame draws the board followed by the game status line.
func renderGame(g models.GameSession) string {
	var b strings.Builder
	b.WriteString("    0   1   2\n")
	for r, row := range g.Board {
		fmt.Fprintf(&b, "%d ", r)
		for c, cell := range row {
			if cell == "" {
				cell = " "
			}
			fmt.Fprintf(&b, " %s ", cell)
			if c < len(row)-1 {
				b.WriteString("|")
			}
		}
		b.WriteString("\n")
		if r < len(g.Board)-1 {
			b.WriteString("  ---+---+---\n")
		}
	}
	b.WriteString(gameStatus(g))
	return b.String()
}

func gameStatus(g models.GameSession) string {
	gs := g.GameState
	switch {
	case gs.IsDraw:
		return "It's a draw!"
	case gs.IsOver && gs.Winner != nil && *gs.Winner == g.UserMark():
		return "You won!"
	case gs.IsOver:
		return "Computer won."
	case g.IsUserTurn():
		return fmt.Sprintf("Your turn (%s)", g.UserMark())
	default:
		return "Computer's turn"
	}
}
