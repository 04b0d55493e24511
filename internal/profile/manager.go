package profile

import (
	"sync/atomic"
	"time"

	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// Manager holds the active snapshot.
type Manager struct {
	active atomic.Pointer[Snapshot]
}

func NewManager() *Manager { return &Manager{} }

// Set publishes s. The profile is deep copied so later changes by the caller
// do not leak into the live snapshot.
func (m *Manager) Set(s Snapshot) {
	cp := new(Snapshot)
	*cp = s
	cp.Profile = s.Profile.Clone()
	if cp.LoadedAt.IsZero() {
		cp.LoadedAt = time.Now().UTC()
	}
	m.active.Store(cp)
}

// Get returns the active snapshot. Callers must treat it as read-only.
func (m *Manager) Get() (*Snapshot, bool) {
	s := m.active.Load()
	return s, s != nil && s.Profile != nil
}

// ContentVersion returns the active profile version for response headers.
func (m *Manager) ContentVersion() string {
	if s := m.active.Load(); s != nil {
		return s.Meta.Version
	}
	return ""
}

// ContentHash returns the active profile hash for response headers.
func (m *Manager) ContentHash() string {
	if s := m.active.Load(); s != nil {
		return s.Meta.SHA256
	}
	return ""
}

// Source returns the source of the active profile, or SourceUnknown.
func (m *Manager) Source() Source {
	if s := m.active.Load(); s != nil {
		return s.Meta.Source
	}
	return SourceUnknown
}

// LoadedAt returns when the active profile was loaded, or zero.
func (m *Manager) LoadedAt() time.Time {
	if s := m.active.Load(); s != nil {
		return s.LoadedAt
	}
	return time.Time{}
}

// ReadyErr returns an error if there is no active snapshot.
func (m *Manager) ReadyErr() error {
	if _, ok := m.Get(); !ok {
		return xerrors.New("profile: no active snapshot")
	}
	return nil
}
