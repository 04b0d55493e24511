package profile

import "time"

// Source records where a snapshot came from.
type Source string

const (
	SourceUnknown Source = "unknown"
	SourceSeed    Source = "seed"
	SourceFile    Source = "file"
	SourceS3      Source = "s3"
)

// Meta describes a loaded profile document.
type Meta struct {
	Version    string    `json:"version,omitempty"`
	SHA256     string    `json:"sha256,omitempty"`
	Source     Source    `json:"source,omitempty"`
	Location   string    `json:"location,omitempty"`
	VerifiedAt time.Time `json:"verified_at,omitempty"`

	// Signed is true when a detached signature was checked.
	Signed bool `json:"signed"`
}

// Snapshot is an immutable loaded profile.
type Snapshot struct {
	Profile  *Profile
	Meta     Meta
	LoadedAt time.Time
}
