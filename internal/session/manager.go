package session

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/student-portal/internal/model"
)

// DefaultTimeout is the idle window. Expiry is measured from the most
// recent detected activity, not from login time.
const DefaultTimeout = 30 * time.Minute

// ErrNotAuthenticated is returned by Guard when no valid session exists,
// whether because nobody logged in, the session was logged out, or the idle
// window elapsed.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// State is the guard's two-state machine.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Manager holds the current session with an explicit lifecycle: Login
// stores the profile and arms the idle timer, Touch reschedules it on
// activity, Logout or expiry clears everything. State lives in the injected
// Store, not in package globals, so the owner controls initialization and
// teardown.
//
// CONCURRENCY:
// Activity events can race the expiry timer (and each other) in a
// multi-threaded shell, so every transition holds mu. Touch swaps the timer
// under the same lock, which makes cancellation-and-reschedule atomic: an
// activity event can never observe a half-replaced timer.
type Manager struct {
	mu        sync.Mutex
	store     Store
	timeout   time.Duration
	timer     *time.Timer
	sessionID string // xid, fresh per login; labels log lines, never sent anywhere

	// OnExpire, if set, fires (on the timer goroutine) after the idle
	// window lapses. The session is already cleared when it runs.
	OnExpire func()
}

// NewManager creates a Manager over the given store. A non-positive timeout
// falls back to DefaultTimeout.
func NewManager(store Store, timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{store: store, timeout: timeout}
}

// Login transitions to Authenticated: stores the profile and a fresh
// activity timestamp, assigns a new session ID, and arms the idle timer.
func (m *Manager) Login(user *model.User) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Set(userKey, string(encoded))
	m.store.Set(loginTimeKey, strconv.FormatInt(time.Now().UnixMilli(), 10))
	m.sessionID = xid.New().String()
	m.armTimerLocked()
	return nil
}

// Logout transitions to Unauthenticated: clears both storage entries and
// stops the timer. Safe to call when already logged out.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

// Touch records user activity, deferring expiry. The idle window restarts
// from now. A Touch on an expired or absent session is a no-op.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stateLocked() != Authenticated {
		return
	}
	m.store.Set(loginTimeKey, strconv.FormatInt(time.Now().UnixMilli(), 10))
	m.armTimerLocked()
}

// State reports the current session state, expiring a stale session as a
// side effect. Absent or corrupt storage entries read as Unauthenticated.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// CurrentUser returns the stored profile, or nil when Unauthenticated.
func (m *Manager) CurrentUser() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stateLocked() != Authenticated {
		return nil
	}
	raw, _ := m.store.Get(userKey)
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// Corrupt entry: treat as no session.
		m.clearLocked()
		return nil
	}
	return &user
}

// SessionID returns the identifier of the current session, or "" when
// Unauthenticated.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stateLocked() != Authenticated {
		return ""
	}
	return m.sessionID
}

// Guard is consulted before entering a protected view. It returns nil when
// Authenticated and ErrNotAuthenticated otherwise; the caller blocks
// navigation and redirects to login on error.
func (m *Manager) Guard() error {
	if m.State() != Authenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// stateLocked computes the state and clears a lapsed session. Callers hold mu.
func (m *Manager) stateLocked() State {
	raw, ok := m.store.Get(loginTimeKey)
	if !ok {
		return Unauthenticated
	}
	if _, ok := m.store.Get(userKey); !ok {
		return Unauthenticated
	}

	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		m.clearLocked()
		return Unauthenticated
	}

	idle := time.Since(time.UnixMilli(millis))
	if idle > m.timeout {
		m.clearLocked()
		return Unauthenticated
	}
	return Authenticated
}

// armTimerLocked (re)schedules the expiry check. Stopping the previous
// timer and starting the next happens under mu, so concurrent Touch calls
// cannot leave two timers running. Callers hold mu.
func (m *Manager) armTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.timeout, m.expire)
}

// expire runs on the timer goroutine when the idle window lapses.
func (m *Manager) expire() {
	m.mu.Lock()
	// A Logout may have won the race between the timer firing and this
	// goroutine taking the lock; there is nothing left to expire then.
	if m.sessionID == "" {
		m.mu.Unlock()
		return
	}
	// A Touch may likewise have rescheduled just as the old timer fired;
	// re-derive the state from storage and only expire a genuinely stale
	// session (stateLocked clears it as a side effect).
	if m.stateLocked() == Authenticated {
		m.mu.Unlock()
		return
	}
	onExpire := m.OnExpire
	m.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}

// clearLocked wipes storage and stops the timer. Callers hold mu.
func (m *Manager) clearLocked() {
	m.store.Delete(userKey)
	m.store.Delete(loginTimeKey)
	m.sessionID = ""
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
