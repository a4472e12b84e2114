package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/distcluster/coordinator/internal/cluster/dispatcher"
	"github.com/distcluster/coordinator/internal/cluster/events"
	"github.com/distcluster/coordinator/internal/cluster/job"
	"github.com/distcluster/coordinator/internal/cluster/liveness"
	"github.com/distcluster/coordinator/internal/cluster/node"
	"github.com/distcluster/coordinator/internal/cluster/queue"
	"github.com/distcluster/coordinator/internal/cluster/retention"
	"github.com/distcluster/coordinator/internal/cluster/stats"
	"github.com/distcluster/coordinator/internal/clusterbus"
	"github.com/distcluster/coordinator/internal/logger"
	"github.com/distcluster/coordinator/internal/seed"
	"github.com/distcluster/coordinator/internal/server"
	"github.com/distcluster/coordinator/internal/workerclient"
)

// App wires every core component together: the Job Store, Node Registry,
// Queue Set, Event Bus, Dispatcher, Liveness Monitor, Retention Sweeper and
// the Frontend HTTP router (spec §2 "System Overview"). It is the single
// root value passed to every background task, per spec §9 ("avoid
// process-global singletons").
type App struct {
	Log    *logger.Logger
	Cfg    Config
	Router *gin.Engine

	store    *job.Store
	registry *node.Registry
	queues   *queue.Set
	stats    *stats.Stats
	bus      *events.Bus

	dispatcher *dispatcher.Dispatcher
	liveness   *liveness.Monitor
	retention  *retention.Sweeper
	busForward *clusterbus.Forwarder
}

// New assembles the App from environment configuration. Unlike the
// teacher's service, there is no database: spec §6 is explicit that all
// state is in memory ("Persisted state: None").
func New() (*App, error) {
	log, err := logger.New("development")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("loading environment variables...")
	cfg := LoadConfig(log)

	if cfg.LogMode != "development" {
		if prodLog, err := logger.New(cfg.LogMode); err == nil {
			log = prodLog
		}
	}

	now := time.Now()
	store := job.NewStore()
	registry := node.NewRegistry()
	queues := queue.NewSet()
	st := stats.New(now)
	bus := events.NewBus(log)

	if cfg.SeedFile != "" {
		seedFile, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			log.Warn("failed to load seed file, continuing without it", "error", err)
		} else {
			seed.Apply(seedFile, registry, now)
			st.SetNodesOnline(registry.OnlineCount())
			log.Info("seed nodes applied", "count", len(seedFile.Nodes))
		}
	}

	worker := workerclient.New(cfg.WorkerRPCTimeout)

	disp := dispatcher.New(store, registry, queues, st, bus, worker, log,
		cfg.DispatchPollInterval, cfg.DispatchRequeueBackoff, cfg.WorkerRPCTimeout)
	liv := liveness.New(registry, st, bus, log, cfg.LivenessTimeout, cfg.LivenessSweepInterval)
	ret := retention.New(store, log, cfg.RetentionHorizon, cfg.RetentionSweepInterval)

	var forwarder *clusterbus.Forwarder
	if cfg.RedisAddr != "" {
		forwarder, err = clusterbus.New(cfg.RedisAddr, cfg.RedisChannel, bus, log)
		if err != nil {
			log.Warn("cluster bus unavailable, running single-process", "error", err)
			forwarder = nil
		}
	}
	if forwarder != nil {
		bus.SetForwarder(func(ev events.Event) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := forwarder.Publish(ctx, ev); err != nil {
				log.Warn("cluster bus publish failed", "error", err)
			}
		})
	}

	frontend := server.NewFrontend(store, registry, queues, st, bus, log)
	router := server.NewRouter(frontend, log)

	return &App{
		Log:    log,
		Cfg:    cfg,
		Router: router,

		store:      store,
		registry:   registry,
		queues:     queues,
		stats:      st,
		bus:        bus,
		dispatcher: disp,
		liveness:   liv,
		retention:  ret,
		busForward: forwarder,
	}, nil
}

// Run starts every background task and the HTTP server as a supervised
// errgroup: the Dispatcher, Liveness Monitor, Retention Sweeper, the
// optional cluster-bus forwarder, and gin all run under one context, and
// the group tears itself down on the first failure or on ctx cancellation
// (spec §9 "named long-lived tasks owned by the coordinator value").
// Run blocks until every task has exited.
func (a *App) Run(ctx context.Context, addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { a.dispatcher.Run(gctx); return nil })
	g.Go(func() error { a.liveness.Run(gctx); return nil })
	g.Go(func() error { a.retention.Run(gctx); return nil })
	if a.busForward != nil {
		g.Go(func() error { return a.busForward.Run(gctx) })
	}

	httpServer := &http.Server{Addr: addr, Handler: a.Router}
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Spec §5: subscriber channels are closed on shutdown; in-flight
		// worker RPCs are allowed to finish or time out naturally, and any
		// outcome that arrives after this point is discarded because the
		// Dispatcher's own context is already cancelled.
		a.bus.CloseAll()
		return httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if a.busForward != nil {
		_ = a.busForward.Close()
	}
	a.Log.Sync()
	return err
}
