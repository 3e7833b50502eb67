package preview

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/sidebar"
	"github.com/jpalmerr/sidebar/config"
	"github.com/jpalmerr/sidebar/internal/memhost"
	"github.com/jpalmerr/sidebar/internal/metrics"
	"github.com/jpalmerr/sidebar/internal/refresh"
	"github.com/jpalmerr/sidebar/internal/server"
	"github.com/jpalmerr/sidebar/internal/store"
)

// Job names reported to the scheduler and metrics.
const (
	JobBoard = "board"
	JobFeed  = "feed"
)

// GlobalSurface names the shared surface of a global board in frames.
const GlobalSurface = "global"

// Preview drives one configured board.
type Preview struct {
	cfg     *config.Config
	host    *memhost.Host
	board   *config.Board
	store   store.Store
	metrics *metrics.Recorder
	feed    *refresh.Feed
	assets  fs.FS
	port    int
	logger  *slog.Logger

	mu     sync.Mutex
	joined bool
	errs   map[uuid.UUID]string
	addr   net.Addr
}

// Option configures a [Preview].
type Option func(*Preview) error

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(p *Preview) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

// WithAssets serves the preview page from assets instead of plain text.
func WithAssets(assets fs.FS) Option {
	return func(p *Preview) error {
		p.assets = assets
		return nil
	}
}

// WithPort overrides the configured port. Zero picks a free port.
func WithPort(port int) Option {
	return func(p *Preview) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("port must be between 0 and 65535, got %d", port)
		}
		p.port = port
		return nil
	}
}

// New builds the board described by cfg.
func New(cfg *config.Config, opts ...Option) (*Preview, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	p := &Preview{
		cfg:     cfg,
		host:    memhost.New(),
		store:   store.NewMemoryStore(),
		metrics: metrics.NewRecorder(),
		port:    cfg.Port,
		logger:  slog.Default(),
		errs:    make(map[uuid.UUID]string),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if cfg.Feed != nil {
		p.feed = refresh.NewFeed()
	}

	board, err := config.BuildBoard(cfg, p.host,
		sidebar.WithLogger(p.logger),
		sidebar.WithPushCallback(p.metrics.ObservePush),
		sidebar.WithPushCallback(p.recordPush),
	)
	if err != nil {
		return nil, err
	}
	p.board = board
	return p, nil
}

// Store returns the frame store.
func (p *Preview) Store() store.Store {
	return p.store
}

// Host returns the in-memory host the board runs on.
func (p *Preview) Host() *memhost.Host {
	return p.host
}

// Metrics returns the recorder fed by the board and the scheduler.
func (p *Preview) Metrics() *metrics.Recorder {
	return p.metrics
}

// Addr returns the server address once [Preview.Start] has bound it.
func (p *Preview) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}

// Join brings every configured viewer online and attaches them to the
// board. It fails only when a viewer cannot get a surface. Calling it again
// is a no-op.
func (p *Preview) Join() error {
	p.mu.Lock()
	if p.joined {
		p.mu.Unlock()
		return nil
	}
	p.joined = true
	p.mu.Unlock()

	var errs []error
	for _, name := range p.cfg.Viewers {
		v := p.host.Join(name)
		err := p.board.AddViewer(v.ID())
		if errors.Is(err, sidebar.ErrSurfaceUnavailable) {
			errs = append(errs, fmt.Errorf("viewer %s: %w", name, err))
			continue
		}
		if err != nil {
			// push errors resurface on the next update
			p.logger.Debug("initial push failed", "viewer", name, "error", err)
		}
	}
	return errors.Join(errs...)
}

// FetchFeed pulls the feed's lines into the board. It is a no-op without a
// feed.
func (p *Preview) FetchFeed(ctx context.Context) error {
	if p.feed == nil {
		return nil
	}
	f := p.cfg.Feed
	lines, err := p.feed.Lines(ctx, f.URL, f.Headers, f.Timeout.Duration())
	if err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	p.board.SetFeed(lines)
	return nil
}

// Update pushes fresh content and publishes the resulting frames.
func (p *Preview) Update() error {
	err := p.board.Update()
	p.publish()
	return err
}

// RenderOnce joins the viewers, fetches the feed, updates the board once and
// returns every frame.
func (p *Preview) RenderOnce(ctx context.Context) ([]store.Frame, error) {
	if err := p.Join(); err != nil {
		return nil, err
	}
	if err := p.FetchFeed(ctx); err != nil {
		return nil, err
	}
	err := p.Update()
	return p.store.GetAll(), err
}

// Start serves the preview and refreshes the board until ctx is cancelled.
// It blocks, and returns an error only if startup fails.
func (p *Preview) Start(ctx context.Context) error {
	p.logger.Info("sidebar preview starting",
		"kind", p.cfg.Kind,
		"viewers", len(p.cfg.Viewers),
		"refresh_interval", p.cfg.RefreshInterval.Duration().String(),
	)

	if ctx.Err() != nil {
		return nil
	}

	if err := p.Join(); err != nil {
		return err
	}

	httpServer := server.NewServer(p.store, p.port, p.assets, p.cfg.PreviewTitle, p.metrics.Handler(), p.logger)
	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	p.mu.Lock()
	p.addr = httpServer.Addr()
	p.mu.Unlock()
	p.logger.Info("preview available", "addr", httpServer.Addr().String())

	// one worker keeps the feed fetch ahead of the board update on each tick
	scheduler := refresh.NewScheduler(p.jobs(), p.cfg.RefreshInterval.Duration(), 1, p.logger)
	scheduler.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for result := range scheduler.Results() {
			p.observeJob(result)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		scheduler.Stop() // closes results channel
		return nil
	})
	err := g.Wait()

	p.board.Destroy()
	p.feed.Close()
	p.logger.Info("sidebar preview stopped")
	return err
}

func (p *Preview) jobs() []refresh.Job {
	var jobs []refresh.Job
	if p.feed != nil {
		jobs = append(jobs, refresh.Job{
			Name:     JobFeed,
			Interval: p.cfg.Feed.Interval.Duration(),
			Run:      p.FetchFeed,
		})
	}
	jobs = append(jobs, refresh.Job{
		Name:     JobBoard,
		Interval: p.cfg.RefreshInterval.Duration(),
		Run:      func(context.Context) error { return p.Update() },
	})
	return jobs
}

func (p *Preview) observeJob(result refresh.Result) {
	p.metrics.ObserveJob(result.Job, result.Err)

	logAttrs := []any{
		"job", result.Job,
		"duration_ms", result.Duration.Milliseconds(),
	}
	if result.Err != nil {
		p.logger.Warn("refresh completed with error", append(logAttrs, "error", result.Err.Error())...)
	} else {
		p.logger.Debug("refresh completed", logAttrs...)
	}
}

// recordPush remembers the last push error per viewer so frames can carry it.
func (p *Preview) recordPush(r sidebar.PushResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r.Err != nil {
		p.errs[r.Viewer] = r.Err.Error()
		return
	}
	delete(p.errs, r.Viewer)
}

func (p *Preview) publish() {
	now := time.Now()
	if p.board.Kind() == config.KindGlobal {
		if s, ok := p.board.Surface(uuid.Nil); ok {
			p.storeIfChanged(p.frame(GlobalSurface, uuid.Nil, s, now))
		}
		return
	}
	for _, v := range p.host.Online() {
		s, ok := p.board.Surface(v.ID())
		if !ok {
			continue
		}
		p.storeIfChanged(p.frame(v.Name(), v.ID(), s, now))
	}
}

func (p *Preview) frame(name string, viewer uuid.UUID, s sidebar.Surface, now time.Time) store.Frame {
	f := store.Frame{
		Surface:    name,
		Lines:      []string{},
		Teams:      []store.Team{},
		RenderedAt: now,
	}
	if viewer != uuid.Nil {
		f.Viewer = viewer.String()
	}

	if ms, ok := s.(*memhost.Surface); ok {
		view := ms.Render()
		f.Title = sidebar.StripColor(view.Title)
		f.Lines = view.Lines()
		for _, rv := range view.Teams {
			if _, isBoardTeam := p.board.FindTeam(rv.Name); !isBoardTeam {
				continue
			}
			f.Teams = append(f.Teams, store.Team{
				Name:    rv.Name,
				Prefix:  rv.Prefix,
				Members: rv.Entries,
			})
		}
	}

	p.mu.Lock()
	if msg, ok := p.errs[viewer]; ok {
		f.Error = &msg
	}
	p.mu.Unlock()
	return f
}

// storeIfChanged skips frames identical to the stored one so subscribers
// only see real changes.
func (p *Preview) storeIfChanged(f store.Frame) {
	if prev, ok := p.store.Get(f.Surface); ok && sameFrame(prev, f) {
		return
	}
	p.store.Update(f)
}

func sameFrame(a, b store.Frame) bool {
	if a.Title != b.Title || a.Viewer != b.Viewer || !slices.Equal(a.Lines, b.Lines) {
		return false
	}
	if (a.Error == nil) != (b.Error == nil) || (a.Error != nil && *a.Error != *b.Error) {
		return false
	}
	return slices.EqualFunc(a.Teams, b.Teams, func(x, y store.Team) bool {
		return x.Name == y.Name && x.Prefix == y.Prefix && slices.Equal(x.Members, y.Members)
	})
}
