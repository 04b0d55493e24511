package cursorws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/pranavnadakkal/portfolio/internal/guard"
	"github.com/pranavnadakkal/portfolio/internal/log"
	"github.com/pranavnadakkal/portfolio/internal/pointer"
)

const (
	defaultMaxMessageBytes = 512
	defaultWriteTimeout    = 5 * time.Second
	defaultIdleTimeout     = 2 * time.Minute
	defaultMessageLimit    = 120
	defaultMessageInterval = time.Second
	defaultMaxSessions     = 256
)

// Options configures the cursor websocket handler.
type Options struct {
	Logger log.Logger
	Events *guard.Events

	// OriginPatterns lists hosts allowed to open a session in addition to
	// the request's own host. See websocket.AcceptOptions.
	OriginPatterns []string

	FrameInterval time.Duration
	MaxX, MaxY    float64

	// MessageLimit inbound messages are accepted per MessageInterval.
	MessageLimit    int
	MessageInterval time.Duration

	MaxMessageBytes int64
	WriteTimeout    time.Duration

	// IdleTimeout closes sessions that send nothing for this long.
	IdleTimeout time.Duration

	// MaxSessions caps concurrent sessions, extra upgrades get 503.
	MaxSessions int

	// OnOpen and OnClose observe session lifetimes, used for metrics.
	OnOpen  func()
	OnClose func(d time.Duration)
}

// Handler upgrades requests to cursor sessions.
type Handler struct {
	opts   Options
	logger log.Logger
	active atomic.Int64

	// newScheduler is swapped in tests
	newScheduler func() pointer.Scheduler
}

// NewHandler returns a Handler with defaults filled in.
func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = pointer.DefaultFrameInterval
	}
	if opts.MaxX <= 0 {
		opts.MaxX = guard.DefaultMaxCoordinate
	}
	if opts.MaxY <= 0 {
		opts.MaxY = guard.DefaultMaxCoordinate
	}
	if opts.MessageLimit <= 0 {
		opts.MessageLimit = defaultMessageLimit
	}
	if opts.MessageInterval <= 0 {
		opts.MessageInterval = defaultMessageInterval
	}
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = defaultMaxMessageBytes
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	interval := opts.FrameInterval
	return &Handler{
		opts:         opts,
		logger:       opts.Logger,
		newScheduler: func() pointer.Scheduler { return pointer.NewTimerScheduler(interval) },
	}
}

// Active returns the number of open sessions.
func (h *Handler) Active() int64 { return h.active.Load() }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.active.Add(1) > int64(h.opts.MaxSessions) {
		h.active.Add(-1)
		http.Error(w, "too many cursor sessions", http.StatusServiceUnavailable)
		return
	}
	defer h.active.Add(-1)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.opts.OriginPatterns,
	})
	if err != nil {
		// Accept has already written the response
		h.logger.Warn(r.Context(), "cursor websocket upgrade failed", "err", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(h.opts.MaxMessageBytes)

	started := time.Now()
	if h.opts.OnOpen != nil {
		h.opts.OnOpen()
	}
	defer func() {
		if h.opts.OnClose != nil {
			h.opts.OnClose(time.Since(started))
		}
	}()

	s := &session{h: h, conn: conn, frames: make(chan pointer.Frame, 1)}
	err = s.run(r.Context())
	switch {
	case err == nil:
		conn.Close(websocket.StatusNormalClosure, "")
	case isClientGone(err):
		h.logger.Debug(r.Context(), "cursor session closed", "reason", err.Error())
	default:
		h.logger.Warn(r.Context(), "cursor session ended", "err", err)
		conn.Close(websocket.StatusInternalError, "")
	}
}

// session is one websocket connection and its tracker.
type session struct {
	h      *Handler
	conn   *websocket.Conn
	frames chan pointer.Frame
}

func (s *session) run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	bus := pointer.NewBus()
	tracker := pointer.New(pointer.Options{
		MaxX:      s.h.opts.MaxX,
		MaxY:      s.h.opts.MaxY,
		Surface:   bus,
		Scheduler: s.h.newScheduler(),
		OnFrame:   s.offer,
	})
	if err := tracker.Start(); err != nil {
		return err
	}
	defer tracker.Stop()

	var wg sync.WaitGroup
	var writeErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		writeErr = s.writeLoop(ctx)
		cancel()
	}()

	emit := guard.SafeHandler(ctx, s.h.logger, "cursor", func(ev pointer.Event) error {
		bus.Emit(ev)
		return nil
	})
	dispatch := guard.RateLimit(emit, s.h.opts.MessageLimit, s.h.opts.MessageInterval)

	readErr := s.readLoop(ctx, dispatch)
	cancel()
	wg.Wait()

	if readErr != nil && !errors.Is(readErr, context.Canceled) {
		return readErr
	}
	if writeErr != nil && !errors.Is(writeErr, context.Canceled) {
		return writeErr
	}
	return nil
}

func (s *session) readLoop(ctx context.Context, dispatch func(pointer.Event) bool) error {
	for {
		readCtx, cancel := context.WithTimeout(ctx, s.h.opts.IdleTimeout)
		typ, data, err := s.conn.Read(readCtx)
		cancel()
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			s.h.opts.Events.Record(ctx, guard.EventMalformedMessage, map[string]any{"reason": "binary"})
			continue
		}
		ev, err := decode(data)
		if err != nil {
			s.h.opts.Events.Record(ctx, guard.EventMalformedMessage, map[string]any{"reason": err.Error()})
			continue
		}
		if !dispatch(ev) {
			s.h.opts.Events.Record(ctx, guard.EventMessageDropped, map[string]any{"signal": ev.Signal.String()})
		}
	}
}

func (s *session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-s.frames:
			wctx, cancel := context.WithTimeout(ctx, s.h.opts.WriteTimeout)
			err := wsjson.Write(wctx, s.conn, encodeFrame(f))
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

// offer queues f, replacing an unsent older frame.
func (s *session) offer(f pointer.Frame) {
	for {
		select {
		case s.frames <- f:
			return
		default:
		}
		select {
		case <-s.frames:
		default:
		}
	}
}

func isClientGone(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway, websocket.StatusNoStatusRcvd:
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
