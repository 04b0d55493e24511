package profile

import (
	"context"
	"os"
	"time"

	"github.com/pranavnadakkal/portfolio/internal/cryptoutil"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// FromBytes parses and validates data and wraps it in a snapshot.
func FromBytes(data []byte, src Source, location string, opts ValidationOptions) (*Snapshot, error) {
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(p, opts); err != nil {
		return nil, err
	}
	sum := cryptoutil.SHA256Hex(data)
	return &Snapshot{
		Profile: p,
		Meta: Meta{
			Version:    shortHash(sum),
			SHA256:     sum,
			Source:     src,
			Location:   location,
			VerifiedAt: time.Now().UTC(),
		},
		LoadedAt: time.Now().UTC(),
	}, nil
}

// LoadSeed loads the profile compiled into the binary.
func LoadSeed(data []byte) (*Snapshot, error) {
	snap, err := FromBytes(data, SourceSeed, "embedded", ValidationOptions{StrictLinks: true})
	if err != nil {
		return nil, xerrors.Wrap(err, "load seed profile")
	}
	return snap, nil
}

// FileSource loads a profile from the local filesystem.
type FileSource struct {
	Path       string
	Validation ValidationOptions
}

func (f FileSource) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		return nil, xerrors.Wrapf(err, "stat profile %s", f.Path)
	}
	if info.Size() > MaxDocumentBytes {
		return nil, xerrors.Newf("profile %s is %d bytes, limit is %d", f.Path, info.Size(), MaxDocumentBytes)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, xerrors.Wrapf(err, "read profile %s", f.Path)
	}
	snap, err := FromBytes(data, SourceFile, f.Path, f.Validation)
	if err != nil {
		return nil, xerrors.Wrapf(err, "load profile %s", f.Path)
	}
	return snap, nil
}

// shortHash returns the first 12 characters of a hash for logging and
// version strings.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
