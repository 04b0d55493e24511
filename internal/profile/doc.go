// Package profile manages the portfolio content shown on the site.
//
// A profile is a YAML document: name, tagline, biography, quick facts,
// skills with proficiency percentages, project cards and contact links.
//
// The core components are:
//   - [Parse] and [Validate]: strict decoding and structural checks
//   - [Manager]: holds the active [Snapshot] behind an atomic.Pointer for lock-free reads
//   - [S3Loader]: fetches a profile by hash from S3, using an SSM parameter as the release pointer
//   - [Watcher]: polls the release pointer and hot-swaps new profiles into the Manager
//   - [FileWatcher]: reloads a local profile file on change, for development
//
// Snapshots are immutable once published. Manager.Set stores a deep copy so
// no caller keeps a mutable alias into the live profile.
package profile
