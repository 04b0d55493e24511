package site

import (
	"bytes"
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/profile"
	"github.com/pranavnadakkal/portfolio/internal/xerrors"
)

// ErrNoProfile is returned when no profile snapshot is active.
var ErrNoProfile = xerrors.New("site: no active profile")

// SnapshotProvider returns the active profile snapshot.
type SnapshotProvider interface {
	Get() (*profile.Snapshot, bool)
}

// Page is a rendered portfolio page.
type Page struct {
	Hash     string
	Body     []byte
	ETag     string
	LoadedAt time.Time

	anchors map[string]bool
}

// HasAnchor reports whether the page carries the section anchor id.
func (p *Page) HasAnchor(id string) bool {
	return p != nil && p.anchors[id]
}

type RendererOptions struct {
	Logger   log.Logger
	Profiles SnapshotProvider
	Events   *guard.Events

	// BaseURL resolves relative profile links. Defaults to profile.DefaultBaseURL.
	BaseURL *url.URL
}

// Renderer renders the active profile, caching one page per profile hash.
type Renderer struct {
	logger   log.Logger
	profiles SnapshotProvider
	events   *guard.Events
	base     *url.URL

	mu     sync.Mutex
	cached *Page
}

func NewRenderer(opts RendererOptions) (*Renderer, error) {
	if opts.Profiles == nil {
		return nil, xerrors.New("site: Profiles is nil")
	}
	L := opts.Logger
	if L == nil {
		L = log.Nop()
	}
	base := opts.BaseURL
	if base == nil {
		base = profile.DefaultBaseURL
	}
	return &Renderer{logger: L, profiles: opts.Profiles, events: opts.Events, base: base}, nil
}

// Render returns the page for the active snapshot, rendering it on first use.
func (r *Renderer) Render(ctx context.Context) (*Page, error) {
	snap, ok := r.profiles.Get()
	if !ok {
		return nil, ErrNoProfile
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil && r.cached.Hash != "" && r.cached.Hash == snap.Meta.SHA256 {
		return r.cached, nil
	}

	start := time.Now()
	page, err := r.render(ctx, snap)
	if err != nil {
		return nil, err
	}
	r.cached = page
	r.logger.Debug(ctx, "page rendered",
		"profile_version", snap.Meta.Version,
		"bytes", len(page.Body),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return page, nil
}

func (r *Renderer) render(ctx context.Context, snap *profile.Snapshot) (*Page, error) {
	v := buildView(ctx, snap.Profile, r.base, r.events)

	var body bytes.Buffer
	if err := pageBody(v).Render(ctx, &body); err != nil {
		return nil, xerrors.Wrap(err, "site: render body")
	}

	doc, err := guard.ParseDocument(bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, xerrors.Wrap(err, "site: parse rendered body")
	}

	anchors := make(map[string]bool, len(Sections))
	var nav []string
	for _, id := range Sections {
		if guard.SafeElementByID(doc, id) != nil {
			anchors[id] = true
			nav = append(nav, id)
			continue
		}
		if v.hasSection(id) {
			r.events.Record(ctx, guard.EventDetachedElement, map[string]any{"id": id})
		}
	}

	var out bytes.Buffer
	if err := pageShell(v, nav, body.String()).Render(ctx, &out); err != nil {
		return nil, xerrors.Wrap(err, "site: render page")
	}

	etag := snap.Meta.SHA256
	if len(etag) > 16 {
		etag = etag[:16]
	}
	return &Page{
		Hash:     snap.Meta.SHA256,
		Body:     out.Bytes(),
		ETag:     `"` + etag + `"`,
		LoadedAt: snap.LoadedAt,
		anchors:  anchors,
	}, nil
}
