// Package siteapi serves the active profile as JSON.
package siteapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/profile"
	"github.com/pranavnadakkal/portfolio/internal/version"
)

// SnapshotProvider returns the active profile snapshot.
type SnapshotProvider interface {
	Get() (*profile.Snapshot, bool)
}

// API implements the profile endpoints
type API struct {
	profiles SnapshotProvider
	logger   log.Logger
	base     *url.URL
}

// NewAPI creates a profile API handler. A nil base uses profile.DefaultBaseURL.
func NewAPI(profiles SnapshotProvider, base *url.URL, logger log.Logger) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if base == nil {
		base = profile.DefaultBaseURL
	}
	return &API{profiles: profiles, logger: logger, base: base}
}

func (api *API) RegisterRoutes(r chi.Router) {
	r.Get("/api/profile", api.HandleProfile)
	r.Get("/api/profile/summary", api.HandleSummary)
}

// ProfileResponse wraps the sanitized profile with its origin.
type ProfileResponse struct {
	Profile *profile.Profile `json:"profile,omitempty"`
	Runtime RuntimeInfo      `json:"runtime"`
	Error   string           `json:"error,omitempty"`
}

type RuntimeInfo struct {
	LoadedAt   time.Time      `json:"loaded_at"`
	ServerTime time.Time      `json:"server_time"`
	Source     profile.Source `json:"source,omitempty"`
	Hash       string         `json:"hash,omitempty"`
	Version    string         `json:"version,omitempty"`
}

// SummaryResponse is a lightweight description of what is being served
type SummaryResponse struct {
	Version     string    `json:"version"`
	ContentHash string    `json:"content_hash"`
	Source      string    `json:"source"`
	Signed      bool      `json:"signed"`
	VerifiedAt  time.Time `json:"verified_at,omitzero"`
	LoadedAt    time.Time `json:"loaded_at"`
	Server      string    `json:"server_version"`
}

// HandleProfile serves the active profile with text escaped and unsafe links removed.
func (api *API) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC().Truncate(time.Second)

	snap, ok := api.profiles.Get()
	if !ok {
		api.writeJSON(ctx, w, http.StatusServiceUnavailable, ProfileResponse{
			Runtime: RuntimeInfo{ServerTime: now},
			Error:   "no profile loaded",
		})
		return
	}

	api.writeJSON(ctx, w, http.StatusOK, ProfileResponse{
		Profile: Sanitize(snap.Profile, api.base),
		Runtime: RuntimeInfo{
			LoadedAt:   snap.LoadedAt.Truncate(time.Second),
			ServerTime: now,
			Source:     snap.Meta.Source,
			Hash:       snap.Meta.SHA256,
			Version:    snap.Meta.Version,
		},
	})
}

func (api *API) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, ok := api.profiles.Get()
	if !ok {
		api.writeJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "no profile loaded"})
		return
	}

	resp := SummaryResponse{
		Version:     snap.Meta.Version,
		ContentHash: snap.Meta.SHA256,
		Source:      string(snap.Meta.Source),
		Signed:      snap.Meta.Signed,
		VerifiedAt:  snap.Meta.VerifiedAt,
		LoadedAt:    snap.LoadedAt.Truncate(time.Second),
		Server:      version.Get().Version,
	}

	api.logger.Debug(ctx, "served profile summary", "version", resp.Version)

	api.writeJSON(ctx, w, http.StatusOK, resp)
}

func (api *API) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		api.logger.Warn(ctx, "failed to encode JSON response", "error", err)
	}
}
