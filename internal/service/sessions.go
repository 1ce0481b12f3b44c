package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"cbrne_dashboard/internal/filter"
	"cbrne_dashboard/internal/logger"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("filter session not found")

// SessionInfo describes an open filter session.
type SessionInfo struct {
	ID         string            `json:"id"`
	View       string            `json:"view"`
	OpenedAt   time.Time         `json:"opened_at"`
	Visibility filter.Visibility `json:"visibility"`
	Snapshot   filter.Snapshot   `json:"snapshot"`
}

// DateRangeParams carries date input edits. A nil bound keeps its current value.
type DateRangeParams struct {
	Start *filter.Date
	End   *filter.Date
}

// session owns one view's store. mu serialises mutations so subscribers see
// snapshots in the order operations were applied.
type session struct {
	mu       sync.Mutex
	id       string
	view     string
	openedAt time.Time
	lastUsed time.Time
	streams  int
	closed   chan struct{}
	store    *filter.Store
}

func (s *session) info() SessionInfo {
	return SessionInfo{
		ID:         s.id,
		View:       s.view,
		OpenedAt:   s.openedAt,
		Visibility: s.store.Visibility(),
		Snapshot:   s.store.Snapshot(),
	}
}

func (s *session) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Subscription is a live feed of one session's snapshots.
type Subscription struct {
	// Initial is the snapshot at the moment the subscriber was registered.
	// Every later change reaches the subscriber's callback, in order.
	Initial filter.Snapshot
	// Closed is closed once the session is closed or expires.
	Closed <-chan struct{}

	cancel func()
}

// Cancel stops delivery. It is safe to call more than once.
func (s Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// SessionSettings are shared by every session the service opens.
type SessionSettings struct {
	Visibility filter.Visibility
	Location   *time.Location
	Now        func() time.Time
	// IdleTTL expires sessions with no open subscription and no use for this
	// long. Zero keeps sessions until Close.
	IdleTTL time.Duration
}

// SessionService keeps one independent filter store per open dashboard view.
// Nothing is shared between sessions and nothing is persisted.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*session
	settings SessionSettings
	log      *logger.Logger
}

func NewSessionService(settings SessionSettings, log *logger.Logger) *SessionService {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SessionService{
		sessions: make(map[string]*session),
		settings: settings,
		log:      log,
	}
}

// Open starts a session with an empty snapshot for the named view.
func (s *SessionService) Open(view string) SessionInfo {
	view = strings.TrimSpace(view)
	id := uuid.NewString()
	log := s.log

	sess := &session{
		id:       id,
		view:     view,
		openedAt: s.settings.Now().UTC(),
		closed:   make(chan struct{}),
	}
	sess.lastUsed = sess.openedAt
	sess.store = filter.NewStore(
		filter.WithClock(s.settings.Now),
		filter.WithLocation(s.settings.Location),
		filter.WithVisibility(s.settings.Visibility),
		filter.WithOnChange(func(snap filter.Snapshot) {
			filterNotificationsTotal.Inc()
			log.Debugw("filter_changed", "session", id, "active_filters", snap.ActiveFilterCount(),
				"quick_range", snap.ActiveQuickRange)
		}),
	)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	filterSessionsOpen.Inc()

	s.log.Infow("filter_session_opened", "session", id, "view", view)
	return sess.info()
}

// Close discards a session and its state. Open subscriptions see Closed.
func (s *SessionService) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.discard(sess)
	s.log.Infow("filter_session_closed", "session", id)
	return nil
}

// Reap closes sessions that have no subscription and were last used more
// than IdleTTL before now. It returns how many were closed.
func (s *SessionService) Reap(now time.Time) int {
	if s.settings.IdleTTL <= 0 {
		return 0
	}
	cutoff := now.UTC().Add(-s.settings.IdleTTL)

	var expired []*session
	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.streams == 0 && sess.lastUsed.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			expired = append(expired, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		s.discard(sess)
		s.log.Infow("filter_session_expired", "session", sess.id, "view", sess.view)
	}
	filterSessionsExpiredTotal.Add(float64(len(expired)))
	return len(expired)
}

// RunReaper calls Reap every interval until ctx is done.
func (s *SessionService) RunReaper(ctx context.Context, interval time.Duration) {
	if s.settings.IdleTTL <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Reap(s.settings.Now())
		}
	}
}

// discard marks a session removed from the map as closed.
func (s *SessionService) discard(sess *session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.isClosed() {
		return
	}
	close(sess.closed)
	filterSessionsOpen.Dec()
}

func (s *SessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionService) Get(id string) (SessionInfo, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return SessionInfo{}, err
	}
	defer sess.mu.Unlock()
	return sess.info(), nil
}

func (s *SessionService) Snapshot(id string) (filter.Snapshot, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return filter.Snapshot{}, err
	}
	defer sess.mu.Unlock()
	return sess.store.Snapshot(), nil
}

func (s *SessionService) Toggle(id string, facet filter.Facet, value string) (filter.Snapshot, error) {
	return s.mutate(id, opToggle, func(st *filter.Store) filter.Snapshot {
		return st.Toggle(facet, value)
	})
}

// SetDateRange applies date input edits and marks the range as custom.
func (s *SessionService) SetDateRange(id string, p DateRangeParams) (filter.Snapshot, error) {
	return s.mutate(id, opDateRange, func(st *filter.Store) filter.Snapshot {
		switch {
		case p.Start != nil && p.End != nil:
			return st.SetDateRange(*p.Start, *p.End)
		case p.Start != nil:
			return st.SetStartDate(*p.Start)
		case p.End != nil:
			return st.SetEndDate(*p.End)
		default:
			cur := st.Snapshot().DateRange
			return st.SetDateRange(cur.Start, cur.End)
		}
	})
}

func (s *SessionService) SelectQuickRange(id string, token filter.QuickRange) (filter.Snapshot, error) {
	return s.mutate(id, opQuickRange, func(st *filter.Store) filter.Snapshot {
		return st.SelectQuickRange(token)
	})
}

func (s *SessionService) ClearAll(id string) (filter.Snapshot, error) {
	return s.mutate(id, opClearAll, func(st *filter.Store) filter.Snapshot {
		return st.ClearAll()
	})
}

// Subscribe registers fn for every later snapshot of the session. The
// current snapshot is read under the same lock, so Initial followed by the
// callbacks is exactly the sequence of states. fn runs while the session is
// locked and must not block or call back into it. A subscribed session does
// not expire.
func (s *SessionService) Subscribe(id string, fn filter.ChangeFunc) (Subscription, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return Subscription{}, err
	}
	unsub := sess.store.Subscribe(fn)
	sess.streams++
	initial := sess.store.Snapshot()
	sess.mu.Unlock()

	var once sync.Once
	return Subscription{
		Initial: initial,
		Closed:  sess.closed,
		cancel: func() {
			once.Do(func() {
				sess.mu.Lock()
				defer sess.mu.Unlock()
				unsub()
				sess.streams--
				sess.lastUsed = s.settings.Now().UTC()
			})
		},
	}, nil
}

func (s *SessionService) mutate(id, op string, apply func(*filter.Store) filter.Snapshot) (filter.Snapshot, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return filter.Snapshot{}, err
	}
	defer sess.mu.Unlock()

	filterMutationsTotal.WithLabelValues(op).Inc()
	return apply(sess.store), nil
}

// acquire returns the open session locked and marked as used. The caller
// must unlock it.
func (s *SessionService) acquire(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	if sess.isClosed() {
		sess.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	sess.lastUsed = s.settings.Now().UTC()
	return sess, nil
}
