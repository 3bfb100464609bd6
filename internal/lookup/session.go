package lookup

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Looker runs a single lookup.
type Looker interface {
	Lookup(ctx context.Context, place string) *Result
}

// View is the display state of one browser session.
type View struct {
	// Place is the query of the most recently started lookup.
	Place string

	// Result is the latest applied lookup result, nil while none has completed.
	Result *Result

	// ShowForecast selects the five-day view instead of current conditions.
	ShowForecast bool

	// Pending is true while the latest lookup is still running.
	Pending bool
}

// Session holds the display state for one browser. Lookups started on a
// session are numbered; only the result of the most recently started lookup
// is ever applied, and starting a lookup cancels the one before it.
type Session struct {
	id string

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	view     View
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{id: id, lastSeen: now}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run starts a lookup for place on svc. The session's view is reset before
// the lookup starts. It returns the lookup result and whether it was applied
// to the view; a result overtaken by a newer lookup is discarded.
func (s *Session) Run(ctx context.Context, svc Looker, place string) (*Result, bool) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.view = View{Place: place, Pending: true}
	s.lastSeen = time.Now()
	s.mu.Unlock()

	res := svc.Lookup(ctx, place)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()

	if seq != s.seq {
		return res, false
	}
	s.cancel = nil
	s.view.Result = res
	s.view.Pending = false
	return res, true
}

// View returns a copy of the current display state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return s.view
}

// SetShowForecast switches between the current and five-day views.
// It has no effect until current conditions are available.
func (s *Session) SetShowForecast(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Result == nil || s.view.Result.Current == nil {
		return
	}
	s.view.ShowForecast = show
}

// Close cancels any in-flight lookup.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen, s.view.Pending
}

// SessionStore keeps sessions in memory, keyed by ID.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idleTTL  time.Duration
	logger   zerolog.Logger

	scheduler *gocron.Scheduler
}

// SessionStoreConfig holds configuration for the session store.
type SessionStoreConfig struct {
	// IdleTTL is how long an untouched session is kept. Default: 30 minutes.
	IdleTTL time.Duration

	// SweepInterval is how often idle sessions are evicted. Default: 1 minute.
	SweepInterval time.Duration

	Logger zerolog.Logger
}

// NewSessionStore creates an empty store. Call Start to begin evicting idle
// sessions.
func NewSessionStore(cfg SessionStoreConfig) *SessionStore {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	st := &SessionStore{
		sessions: make(map[string]*Session),
		idleTTL:  cfg.IdleTTL,
		logger:   cfg.Logger,
	}
	st.scheduler = gocron.NewScheduler(time.UTC)
	_, err := st.scheduler.Every(cfg.SweepInterval).Do(func() {
		if n := st.Sweep(time.Now()); n > 0 {
			st.logger.Debug().Int("evicted", n).Msg("idle sessions evicted")
		}
	})
	if err != nil {
		cfg.Logger.Error().Err(err).Msg("failed to schedule session sweeper")
	}
	return st
}

// Start runs the idle-session sweeper in the background.
func (st *SessionStore) Start() {
	st.scheduler.StartAsync()
}

// Stop stops the sweeper and cancels every in-flight lookup.
func (st *SessionStore) Stop() {
	st.scheduler.Stop()

	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		s.Close()
		delete(st.sessions, id)
	}
}

// Get returns the session for id, if any.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating a fresh one with a new ID
// when id is unknown. created reports whether a new session was made.
func (st *SessionStore) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}

	s = newSession(uuid.NewString(), time.Now())

	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()

	return s, true
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle for longer than the TTL as of now. Sessions with
// a lookup in flight are kept. It returns the number evicted.
func (st *SessionStore) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	evicted := 0
	for id, s := range st.sessions {
		lastSeen, pending := s.idleSince()
		if pending || now.Sub(lastSeen) <= st.idleTTL {
			continue
		}
		s.Close()
		delete(st.sessions, id)
		evicted++
	}
	return evicted
}
