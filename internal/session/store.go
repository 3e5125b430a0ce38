// Package session implements the client-side session guard: a small state
// machine holding the authenticated student's profile and an activity-based
// idle timeout. The server issues no token; the client alone decides when
// its session has lapsed, as a UX convenience rather than a security
// boundary.
package session

// Storage keys. Two entries: the serialized profile and the epoch-millis
// timestamp of the most recent activity.
const (
	userKey      = "student_portal_user"
	loginTimeKey = "student_portal_login_time"
)

// Store is the key/value backing for session state. In a browser shell this
// maps onto session storage; the CLI and tests use MemoryStore. Get reports
// ok=false for a missing key.
type Store interface {
	Get(key string) (value string, ok bool)
	Set(key, value string)
	Delete(key string)
}

// MemoryStore is an in-process Store. Not safe for concurrent use on its
// own; the Manager serializes access behind its mutex.
type MemoryStore struct {
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) {
	m.values[key] = value
}

func (m *MemoryStore) Delete(key string) {
	delete(m.values, key)
}
