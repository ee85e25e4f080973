package guard

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/event"
	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/core/user"
	"github.com/dmitrymomot/stormpath/pkg/async"
)

// Outcome is the result of evaluating a navigation.
type Outcome int

const (
	// Proceed lets the navigation reach its target.
	Proceed Outcome = iota
	// Redirect sends the navigation to Decision.Route instead.
	Redirect
	// Unauthenticated denies the navigation for lack of a session.
	Unauthenticated
	// Unauthorized denies the navigation for lack of group membership.
	Unauthorized
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case Redirect:
		return "redirect"
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Decision is what the guard does with a navigation.
type Decision struct {
	Outcome Outcome
	// Route and Params are the redirect destination for Redirect.
	Route  string
	Params Params
	// Err is the session fetch failure behind Unauthenticated.
	Err error
}

// Guard enforces route access rules.
type Guard struct {
	users  *user.Service
	routes *Registry
	cfg    Config
	bus    *event.Bus
	names  event.Names
	logger *slog.Logger

	mu      sync.Mutex
	router  Router
	pending *Target
	// bypass lets the next transition to an already decided route through.
	bypass  *Target
	stops   []func()
	started bool
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger.Default(l)
	}
}

// New creates a guard over the session cache. Events are emitted on the
// cache's bus with its names.
func New(users *user.Service, routes *Registry, cfg Config, opts ...Option) *Guard {
	if routes == nil {
		routes = NewRegistry()
	}
	g := &Guard{
		users:  users,
		routes: routes,
		cfg:    cfg.withDefaults(),
		bus:    users.Bus(),
		names:  users.Names(),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Routes returns the route registry.
func (g *Guard) Routes() *Registry {
	return g.routes
}

// Start attaches the guard to router and to the Authenticated event.
// Calling Start again before Stop is a no-op.
func (g *Guard) Start(router Router) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started {
		return
	}
	g.started = true
	g.router = router
	g.stops = append(g.stops,
		router.OnTransitionStart(g.onTransition),
		g.bus.Subscribe(g.names.Authenticated, g.onAuthenticated),
	)
}

// Stop detaches the guard. It may be started again afterwards.
func (g *Guard) Stop() {
	g.mu.Lock()
	stops := g.stops
	g.stops = nil
	g.started = false
	g.router = nil
	g.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

// Pending returns the remembered post-login destination, if any.
func (g *Guard) Pending() (Target, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return Target{}, false
	}
	return *g.pending, true
}

// Decide evaluates a navigation to route, fetching the current user when the
// rules need it. It blocks for at most Config.FetchTimeout and has no side
// effects besides the fetch.
func (g *Guard) Decide(ctx context.Context, route Route, params Params) Decision {
	if route.Name != "" && route.Name == g.cfg.LoginRoute {
		return g.decideLogin(ctx)
	}

	access := route.Access
	if access.RequiresAuthentication() {
		u, err := g.currentUser(ctx)
		if err != nil {
			return Decision{Outcome: Unauthenticated, Err: err}
		}
		if access.Authorize != nil && !g.authorized(ctx, route, u) {
			return Decision{Outcome: Unauthorized}
		}
		return Decision{Outcome: Proceed}
	}

	if access.WaitForUser && g.users.State() == user.StateUnknown {
		// Outcome is irrelevant: the wait is only for the state to settle
		_, _ = g.currentUser(ctx)
	}
	return Decision{Outcome: Proceed}
}

func (g *Guard) decideLogin(ctx context.Context) Decision {
	if g.users.State() == user.StateUnauthenticated {
		return Decision{Outcome: Proceed}
	}
	if _, err := g.currentUser(ctx); err != nil {
		return Decision{Outcome: Proceed}
	}
	if g.cfg.DefaultPostLoginRoute == "" || g.cfg.DefaultPostLoginRoute == g.cfg.LoginRoute {
		return Decision{Outcome: Proceed}
	}
	return Decision{Outcome: Redirect, Route: g.cfg.DefaultPostLoginRoute}
}

// needsFetch reports whether deciding route requires a network round trip.
func (g *Guard) needsFetch(route Route) bool {
	st := g.users.State()
	if st == user.StateAuthenticated {
		return false
	}
	if route.Name != "" && route.Name == g.cfg.LoginRoute {
		return st == user.StateUnknown
	}
	if route.Access.RequiresAuthentication() {
		return true
	}
	return route.Access.WaitForUser && st == user.StateUnknown
}

func (g *Guard) currentUser(ctx context.Context) (*user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.FetchTimeout)
	defer cancel()
	return g.users.Get(ctx).AwaitContext(ctx)
}

// authorized applies the group rule. Rules without a group deny access.
func (g *Guard) authorized(ctx context.Context, route Route, u *user.User) bool {
	authz := route.Access.Authorize
	if authz == nil || authz.Group == "" {
		g.logger.ErrorContext(ctx, "unsupported authorize rule, denying access",
			logger.Component("guard"),
			logger.Route(route.Name),
		)
		return false
	}
	return u != nil && u.InGroup(authz.Group)
}

func (g *Guard) onTransition(ctx context.Context, t *Transition) {
	g.mu.Lock()
	decided := g.bypass != nil && g.bypass.Route == t.To && maps.Equal(g.bypass.Params, t.Params)
	if decided {
		g.bypass = nil
	}
	g.mu.Unlock()
	if decided {
		return
	}

	route, _ := g.routes.Lookup(t.To)
	params := t.Params.Clone()

	if !g.needsFetch(route) {
		d := g.Decide(ctx, route, params)
		if d.Outcome == Proceed {
			return
		}
		t.Prevent()
		g.apply(ctx, route, params, d, false)
		return
	}

	t.Prevent()
	g.logger.DebugContext(ctx, "navigation deferred until session is known",
		logger.Component("guard"),
		logger.Route(route.Name),
	)
	// The deferred navigation outlives the transition that triggered it
	async.Exec(context.WithoutCancel(ctx), route, func(ctx context.Context, route Route) error {
		g.apply(ctx, route, params, g.Decide(ctx, route, params), true)
		return nil
	})
}

// apply carries out a decision. deferred is set when the original transition
// was prevented while waiting for the session, so Proceed must re-navigate.
func (g *Guard) apply(ctx context.Context, route Route, params Params, d Decision, deferred bool) {
	switch d.Outcome {
	case Proceed:
		if deferred {
			g.navigateDecided(ctx, route.Name, params)
		}

	case Redirect:
		g.navigate(ctx, d.Route, d.Params)

	case Unauthenticated:
		g.mu.Lock()
		g.pending = &Target{Route: route.Name, Params: params}
		g.mu.Unlock()

		level := slog.LevelWarn
		if client.IsUnauthorized(d.Err) {
			level = slog.LevelDebug
		}
		g.logger.Log(ctx, level, "navigation requires a session",
			logger.Component("guard"),
			logger.Route(route.Name),
			logger.Error(d.Err),
		)
		g.bus.Emit(ctx, g.names.StateChangeUnauthenticated, Denial{Route: route.Name, Params: params, Err: d.Err})
		if g.cfg.LoginRoute != "" && g.cfg.LoginRoute != route.Name {
			g.navigateDecided(ctx, g.cfg.LoginRoute, nil)
		}

	case Unauthorized:
		g.logger.InfoContext(ctx, "navigation not authorized",
			logger.Component("guard"),
			logger.Route(route.Name),
		)
		g.bus.Emit(ctx, g.names.StateChangeUnauthorized, Denial{Route: route.Name, Params: params})
		if g.cfg.ForbiddenRoute != "" && g.cfg.ForbiddenRoute != route.Name {
			g.navigate(ctx, g.cfg.ForbiddenRoute, nil)
		}
	}
}

func (g *Guard) onAuthenticated(ctx context.Context, _ event.Event) {
	g.mu.Lock()
	pending := g.pending
	g.pending = nil
	g.mu.Unlock()

	if g.cfg.DisableAutoRedirect {
		return
	}
	if pending != nil {
		g.navigate(ctx, pending.Route, pending.Params)
		return
	}
	if g.cfg.DefaultPostLoginRoute != "" {
		g.navigate(ctx, g.cfg.DefaultPostLoginRoute, nil)
	}
}

// navigateDecided navigates without re-evaluating the destination, so a
// session fetch that is still running cannot defer it a second time.
func (g *Guard) navigateDecided(ctx context.Context, route string, params Params) {
	target := &Target{Route: route, Params: params}
	g.mu.Lock()
	g.bypass = target
	g.mu.Unlock()

	if !g.navigate(ctx, route, params) {
		g.mu.Lock()
		if g.bypass == target {
			g.bypass = nil
		}
		g.mu.Unlock()
	}
}

// navigate reports whether the router accepted the navigation.
func (g *Guard) navigate(ctx context.Context, route string, params Params) bool {
	g.mu.Lock()
	router := g.router
	g.mu.Unlock()

	if router == nil {
		return false
	}
	if err := router.Go(ctx, route, params); err != nil {
		g.logger.WarnContext(ctx, "navigation failed",
			logger.Component("guard"),
			logger.Route(route),
			logger.Error(err),
		)
		return false
	}
	return true
}
