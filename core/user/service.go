package user

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/stormpath/client"
	"github.com/dmitrymomot/stormpath/core/event"
	"github.com/dmitrymomot/stormpath/core/logger"
	"github.com/dmitrymomot/stormpath/pkg/async"
)

// fetchKey prefixes single-flight keys. There is one current user, so the
// key only varies with the fetch generation.
const fetchKey = "current-user"

func flightKey(gen uint64) string {
	return fetchKey + ":" + strconv.FormatUint(gen, 10)
}

// DefaultFetchTimeout bounds a single current-user request.
const DefaultFetchTimeout = 10 * time.Second

// Fetcher retrieves the current account from the identity API.
type Fetcher interface {
	CurrentUser(ctx context.Context, opts ...client.RequestOption) (client.Account, error)
}

// Service is the session cache.
type Service struct {
	fetcher Fetcher
	bus     *event.Bus
	names   event.Names
	timeout time.Duration
	logger  *slog.Logger

	flight singleflight.Group

	mu      sync.RWMutex
	state   State
	current *User
	// gen increments on Refresh and EndSession; only a fetch of the current
	// generation may update the state.
	gen uint64
	// epoch increments on EndSession only.
	epoch uint64

	unsubscribe event.Unsubscribe
}

// Option configures a Service.
type Option func(*Service)

// WithBus sets the event bus. Default: a private bus.
func WithBus(b *event.Bus) Option {
	return func(s *Service) {
		if b != nil {
			s.bus = b
		}
	}
}

// WithEventNames overrides the emitted event names.
func WithEventNames(n event.Names) Option {
	return func(s *Service) {
		s.names = n.WithDefaults()
	}
}

// WithFetchTimeout bounds each network fetch. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger.Default(l)
	}
}

// NewService creates a session cache in StateUnknown and subscribes it to
// the SessionEnd event.
func NewService(fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		names:   event.DefaultNames(),
		timeout: DefaultFetchTimeout,
		logger:  logger.Discard(),
		state:   StateUnknown,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = event.NewBus(event.WithLogger(s.logger))
	}

	s.unsubscribe = s.bus.Subscribe(s.names.SessionEnd, func(context.Context, event.Event) {
		s.EndSession()
	})
	return s
}

// Close detaches the service from the bus.
func (s *Service) Close() {
	s.unsubscribe()
}

// Bus returns the bus the service emits on.
func (s *Service) Bus() *event.Bus {
	return s.bus
}

// Names returns the event names the service emits.
func (s *Service) Names() event.Names {
	return s.names
}

// State returns the current cache state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Current returns the cached user (nil unless authenticated) and the state.
func (s *Service) Current() (*User, State) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.state
}

// Get returns the current user. An authenticated cache answers immediately;
// otherwise the API is queried, sharing any fetch of the current generation
// already in flight.
func (s *Service) Get(ctx context.Context) *async.Future[*User] {
	s.mu.RLock()
	u, st, gen, epoch := s.current, s.state, s.gen, s.epoch
	s.mu.RUnlock()

	if st == StateAuthenticated {
		return async.Resolved(u)
	}
	return s.join(ctx, gen, epoch)
}

// Refresh starts a new fetch regardless of the cached state. Fetches already
// in flight can no longer update the state; their callers receive the answer
// of the newer fetch.
func (s *Service) Refresh(ctx context.Context) *async.Future[*User] {
	s.mu.Lock()
	s.gen++
	gen, epoch := s.gen, s.epoch
	s.mu.Unlock()

	return s.join(ctx, gen, epoch)
}

// EndSession forces StateUnauthenticated without a network call. Fetches in
// flight are rejected with ErrSessionEnded.
func (s *Service) EndSession() {
	s.mu.Lock()
	s.state = StateUnauthenticated
	s.current = nil
	s.gen++
	s.epoch++
	s.mu.Unlock()
}

func (s *Service) join(ctx context.Context, gen, epoch uint64) *async.Future[*User] {
	// The shared fetch must outlive any single caller's cancellation
	fetchCtx := context.WithoutCancel(ctx)

	ch := s.flight.DoChan(flightKey(gen), func() (any, error) {
		return s.fetch(fetchCtx, gen, epoch)
	})
	return async.FromChan(ch, func(r singleflight.Result) (*User, error) {
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*User), nil
	})
}

func (s *Service) fetch(ctx context.Context, gen, epoch uint64) (*User, error) {
	fctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	acct, err := s.fetcher.CurrentUser(fctx)

	var u *User
	if err == nil {
		u = New(acct)
	}

	s.mu.Lock()
	latest := s.gen == gen
	ended := s.epoch != epoch
	if latest {
		if err == nil {
			s.state = StateAuthenticated
			s.current = u
		} else {
			s.state = StateUnauthenticated
			s.current = nil
		}
	}
	s.mu.Unlock()

	// Listeners calling Get must start a fresh fetch, not join this one
	s.flight.Forget(flightKey(gen))

	if ended {
		s.logger.DebugContext(ctx, "discarding fetch started before session end", logger.Component("user"))
		return nil, ErrSessionEnded
	}
	if !latest {
		return s.Get(ctx).AwaitContext(ctx)
	}

	if err != nil {
		if client.IsUnauthorized(err) {
			s.logger.DebugContext(ctx, "no current user", logger.Component("user"))
			s.bus.Emit(ctx, s.names.NotLoggedIn, err)
		} else {
			s.logger.WarnContext(ctx, "current user fetch failed",
				logger.Component("user"),
				logger.Error(err),
			)
		}
		return nil, err
	}

	s.logger.DebugContext(ctx, "current user loaded",
		logger.Component("user"),
		logger.UserHref(u.Href()),
	)
	s.bus.Emit(ctx, s.names.CurrentUser, u)
	return u, nil
}
