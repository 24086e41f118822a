package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"

	"github.com/dmitrijs2005/tictac/internal/client/client"
	"github.com/dmitrijs2005/tictac/internal/client/config"
	"github.com/dmitrijs2005/tictac/internal/client/credstore"
	"github.com/dmitrijs2005/tictac/internal/client/metrics"
	"github.com/dmitrijs2005/tictac/internal/client/models"
	"github.com/dmitrijs2005/tictac/internal/client/nav"
	"github.com/dmitrijs2005/tictac/internal/client/services"
	"github.com/dmitrijs2005/tictac/internal/client/session"
	"github.com/dmitrijs2005/tictac/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	store   *credstore.Store
	session *session.Reconciler
	auth    services.AuthService
	game    services.GameService
	metrics *metrics.Collectors
	reader  *bufio.Reader
	out     io.Writer

	mu       sync.Mutex
	view     nav.View
	lastGame *models.GameSession
}

// NewApp wires the client. reg may be nil when metrics are not exported.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger, reg prometheus.Registerer) (*App, error) {
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server base URL %q", c.ServerBaseURL)
	}
	if log == nil {
		log = logging.Nop()
	}

	m := metrics.New(reg)
	store := credstore.Open(ctx, c.CredentialDBPath, log)
	m.SetDurable(store.Durability() == credstore.DurabilityPersistent)

	transport := client.NewHTTPTransport(c.ServerBaseURL, c.RequestTimeout, log)
	rec := session.NewReconciler(log, m)
	auth := services.NewTokenManager(client.NewAuthAPI(transport.Send), store, rec,
		services.WithLogger(log),
		services.WithRefreshObserver(m),
		services.WithRefreshTimeout(c.RequestTimeout),
	)
	send := client.WithAuthRetry(transport.Send, auth.AccessToken, auth.RefreshStale,
		client.WithRetryLogger(log),
		client.WithRetryObserver(m),
	)

	return &App{
		config:  c,
		log:     log,
		store:   store,
		session: rec,
		auth:    auth,
		game:    services.NewGameClient(client.NewCaller(send)),
		metrics: m,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		view:    nav.PublicHome,
	}, nil
}

// Run validates the stored session, starts the navigation guard and blocks in
// the REPL until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	printlnFn("Welcome to tictac CLI (type 'help' for commands)")
	a.auth.CheckAuthStatus(ctx)
	go nav.Guard(ctx, a.session, a)

	runREPL(ctx, a, a.prompt, a.reader)
}

func (a *App) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn(context.Background(), "closing credential store", "error", err)
	}
}

func (a *App) authenticated() bool {
	return a.session.Current().Authenticated()
}

// Current implements nav.Router.
func (a *App) Current() nav.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

// Replace implements nav.Router.
func (a *App) Replace(v nav.View) {
	a.mu.Lock()
	prev := a.view
	a.view = v
	if !v.Protected() {
		a.lastGame = nil
	}
	a.mu.Unlock()

	if prev != v {
		a.log.Debug(context.Background(), "view changed", "from", string(prev), "to", string(v))
		printlnFn(fmt.Sprintf("Switched to %s view", v))
	}
}

// navigate moves to v unless the session forbids it, in which case the
// guard's redirect target is used instead.
func (a *App) navigate(v nav.View) nav.View {
	if target, redirect := nav.Resolve(a.session.Current(), v); redirect {
		v = target
	}
	a.Replace(v)
	return v
}

func (a *App) prompt() string {
	st := a.session.Current()
	s := string(a.Current())
	if st.Authenticated() && st.User != nil {
		s = st.User.Email + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) rememberGame(g models.GameSession) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastGame = &g
}

func (a *App) cachedGame() (models.GameSession, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastGame == nil {
		return models.GameSession{}, false
	}
	return *a.lastGame, true
}
