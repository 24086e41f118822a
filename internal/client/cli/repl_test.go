package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
}

func (f *fakeExec) authenticated() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Status(ctx context.Context) error { f.calls = append(f.calls, "status"); return nil }
func (f *fakeExec) StartGame(ctx context.Context, computerFirst bool) error {
	if computerFirst {
		f.calls = append(f.calls, "start computer")
	} else {
		f.calls = append(f.calls, "start")
	}
	return nil
}
func (f *fakeExec) CurrentGame(ctx context.Context) error {
	f.calls = append(f.calls, "current")
	return nil
}
func (f *fakeExec) Move(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "move")
	f.args = args
	return nil
}
func (f *fakeExec) Stats(ctx context.Context) error { f.calls = append(f.calls, "stats"); return nil }

// captured collects printlnFn output; the guard prints from its own goroutine.
type captured struct {
	mu    sync.Mutex
	lines []string
}

func (c *captured) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func (c *captured) joined() string {
	return strings.Join(c.all(), "\n")
}

func silence(t *testing.T) *captured {
	t.Helper()
	c := &captured{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.lines = append(c.lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return c
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := silence(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"start",
		"start computer",
		"current",
		"move 1 2",
		"stats",
		"status",
		"logout",
		"foobar",
		"exit",
		"login",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(input))

	assert.Equal(t, []string{"login", "start", "start computer", "current", "move", "stats", "status", "logout"}, exec.calls)
	assert.Equal(t, []string{"1", "2"}, exec.args)
	assert.Contains(t, out.all(), "Available commands: register, login, status, exit")
	assert.Contains(t, out.all(), "Unknown command: foobar")
	assert.Contains(t, out.all(), "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	silence(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("register")))
	assert.Equal(t, []string{"register"}, exec.calls)
}

func TestRunREPL_StopsOnCancel(t *testing.T) {
	silence(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("login\n")))
	assert.Empty(t, exec.calls)
}
