package profile

import (
	"testing"
	"time"
)

// manager.go

func TestManager_Empty(t *testing.T) {
	m := NewManager()
	if _, ok := m.Get(); ok {
		t.Fatal("empty manager reports a snapshot")
	}
	if m.ReadyErr() == nil {
		t.Fatal("ReadyErr() = nil on empty manager")
	}
	if m.ContentVersion() != "" || m.ContentHash() != "" || m.Source() != SourceUnknown || !m.LoadedAt().IsZero() {
		t.Fatal("empty manager returned metadata")
	}
}

func TestManager_SetGet(t *testing.T) {
	m := NewManager()
	m.Set(Snapshot{
		Profile: validProfile(),
		Meta:    Meta{Version: "abc", SHA256: "abcdef", Source: SourceFile},
	})

	s, ok := m.Get()
	if !ok {
		t.Fatal("Get() not ok after Set")
	}
	if s.Profile.Name != "Ada" {
		t.Errorf("Name = %q", s.Profile.Name)
	}
	if m.ContentVersion() != "abc" || m.ContentHash() != "abcdef" || m.Source() != SourceFile {
		t.Error("metadata not exposed")
	}
	if m.LoadedAt().IsZero() {
		t.Error("LoadedAt not defaulted")
	}
	if m.ReadyErr() != nil {
		t.Error("ReadyErr() != nil after Set")
	}
}

func TestManager_SetKeepsLoadedAt(t *testing.T) {
	m := NewManager()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.Set(Snapshot{Profile: validProfile(), LoadedAt: at})
	if !m.LoadedAt().Equal(at) {
		t.Fatalf("LoadedAt = %v, want %v", m.LoadedAt(), at)
	}
}

func TestManager_SnapshotIsolatedFromCaller(t *testing.T) {
	m := NewManager()
	p := validProfile()
	m.Set(Snapshot{Profile: p})

	p.Name = "Mallory"
	p.Skills[0].Items[0].Name = "<script>"
	p.Projects[0].Tags = append(p.Projects[0].Tags, "x")

	s, _ := m.Get()
	if s.Profile.Name != "Ada" || s.Profile.Skills[0].Items[0].Name != "Go" || len(s.Profile.Projects[0].Tags) != 0 {
		t.Fatal("caller mutation leaked into live snapshot")
	}
}

func TestManager_NilProfileNotReady(t *testing.T) {
	m := NewManager()
	m.Set(Snapshot{})
	if _, ok := m.Get(); ok {
		t.Fatal("snapshot without profile reported ready")
	}
}

func TestClone_Nil(t *testing.T) {
	var p *Profile
	if p.Clone() != nil {
		t.Fatal("Clone of nil is not nil")
	}
}
