package session

import (
	"context"
	"sync"
	"time"

	"github.com/jkestates/estatedesk/internal/clock"
	"github.com/jkestates/estatedesk/internal/config"
	"github.com/jkestates/estatedesk/internal/observability"
	"github.com/jkestates/estatedesk/internal/statement"
	billdomain "github.com/jkestates/estatedesk/internal/utilitybill/domain"
	"github.com/jkestates/estatedesk/internal/utilitybill/service"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type RegistryParams struct {
	fx.In

	Config    config.Config
	Clock     clock.Clock
	Log       *zap.Logger
	Metrics   *observability.Metrics
	Store     *service.PeriodStore
	Persister *service.Persister
	Renderer  *statement.Renderer
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Registry holds the sessions of all connected staff. Sessions that sit idle
// longer than the configured TTL are dropped without writing anything.
type Registry struct {
	loader   Loader
	saver    Saver
	renderer Renderer
	clock    clock.Clock
	log      *zap.Logger
	metrics  *observability.Metrics
	idleTTL  time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(p RegistryParams) *Registry {
	return newRegistry(p.Store, p.Persister, p.Renderer, p.Clock, p.Log, p.Metrics, p.Config.Billing.SessionIdleTTL)
}

func newRegistry(loader Loader, saver Saver, renderer Renderer, clk clock.Clock, log *zap.Logger, metrics *observability.Metrics, idleTTL time.Duration) *Registry {
	return &Registry{
		loader:   loader,
		saver:    saver,
		renderer: renderer,
		clock:    clk,
		log:      log.Named("utilitybill.session"),
		metrics:  metrics,
		idleTTL:  idleTTL,
		sessions: map[string]*entry{},
	}
}

func (r *Registry) Create(ctx context.Context) *Session {
	id := ulid.Make().String()
	s := New(id, r.loader, r.saver, r.renderer, r.log)

	r.mu.Lock()
	r.sessions[id] = &entry{session: s, lastUsed: r.clock.Now(ctx)}
	r.updateGauge()
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, billdomain.ErrSessionNotFound
	}
	e.lastUsed = r.clock.Now(ctx)
	return e.session, nil
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.updateGauge()
	r.mu.Unlock()
}

// Evict drops idle sessions and returns how many were removed. Sessions in
// the middle of a save are kept.
func (r *Registry) Evict(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastUsed) < r.idleTTL || e.session.State() == StateSaving {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	if removed > 0 {
		r.log.Info("evicted idle billing sessions", zap.Int("count", removed))
		r.updateGauge()
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// updateGauge requires r.mu.
func (r *Registry) updateGauge() {
	if r.metrics != nil {
		r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
}

// runEviction sweeps until ctx is cancelled.
func (r *Registry) runEviction(ctx context.Context) {
	interval := r.idleTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict(r.clock.Now(ctx))
		}
	}
}

func startEviction(lc fx.Lifecycle, r *Registry) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go r.runEviction(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

var Module = fx.Module("utilitybill.session",
	fx.Provide(NewRegistry),
	fx.Invoke(startEviction),
)
