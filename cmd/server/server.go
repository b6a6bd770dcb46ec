package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/paularlott/cli"

	"pppoed/internal/api"
	"pppoed/internal/auth"
	"pppoed/internal/config"
	"pppoed/internal/discovery"
	"pppoed/internal/log"
	"pppoed/internal/mcp"
	"pppoed/internal/model"
	"pppoed/internal/notify"
	"pppoed/internal/prefs"
	"pppoed/internal/storage"
	"pppoed/internal/syncer"
	"pppoed/internal/worker"
)

// Command returns the server command
func Command() *cli.Command {
	return &cli.Command{
		Name:        "server",
		Usage:       "Start the pppoed server",
		Description: "Start the HTTP server with API and MCP endpoints",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Data directory path",
				EnvVars: []string{"PPPOED_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Server listen address (e.g., :8080)",
				EnvVars: []string{"PPPOED_LISTEN_ADDR"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token for API and MCP authentication",
				EnvVars: []string{"PPPOED_BEARER_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "storage",
				Usage:   "Storage backend (memory, sqlite)",
				EnvVars: []string{"PPPOED_STORAGE_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "sync-schedule",
				Usage:   "Cron spec for periodic router sync (empty disables)",
				EnvVars: []string{"PPPOED_SYNC_SCHEDULE"},
			},
			&cli.StringFlag{
				Name:    "sweep-schedule",
				Usage:   "Cron spec for the notification sweep (empty disables)",
				EnvVars: []string{"PPPOED_SWEEP_SCHEDULE"},
			},
			&cli.BoolFlag{
				Name:    "seed",
				Usage:   "Load the demo dataset on first start",
				EnvVars: []string{"PPPOED_SEED"},
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load(&config.Config{
				DataDir:        cmd.GetString("data-dir"),
				ListenAddr:     cmd.GetString("addr"),
				BearerToken:    cmd.GetString("token"),
				StorageBackend: cmd.GetString("storage"),
				SyncSchedule:   cmd.GetString("sync-schedule"),
				SweepSchedule:  cmd.GetString("sweep-schedule"),
				Seed:           cmd.GetBool("seed"),
			})

			log.Info("configuration loaded", "source", cfg.String(),
				"data_dir", cfg.DataDir, "listen_addr", cfg.ListenAddr)

			store, closeStore, err := openStorage(cfg)
			if err != nil {
				log.Error("failed to initialize storage", "error", err)
				return err
			}
			defer closeStore()
			log.Info("storage initialized", "backend", cfg.StorageBackend, "path", cfg.DataDir)

			prefStore, err := prefs.Open(cfg.DataDir)
			if err != nil {
				log.Error("failed to open preference store", "error", err)
				return err
			}
			defer prefStore.Close()

			return RunServer(cfg, store, prefStore)
		},
	}
}

// openStorage builds the configured storage backend
func openStorage(cfg *config.Config) (storage.Storage, func(), error) {
	if cfg.StorageBackend == "memory" {
		ms := storage.NewMemoryStorage()
		if cfg.Seed {
			ms.Seed()
		}
		return ms, func() {}, nil
	}

	ss, err := storage.NewSQLiteStorage(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Seed {
		if err := ss.Seed(); err != nil {
			ss.Close()
			return nil, nil, err
		}
	}
	return ss, func() { ss.Close() }, nil
}

// RunServer starts the pppoed server with the given configuration
func RunServer(cfg *config.Config, store storage.Storage, prefStore *prefs.Store) error {
	notifPrefs := func() model.NotificationPreferences {
		return prefStore.Notifications()
	}

	sy := syncer.New(store)
	sweeper := notify.NewEngine(store, notifPrefs)
	authSvc := auth.NewService()
	scanner := discovery.NewScanner()

	apiHandler := api.NewHandler(store, sy, sweeper, prefStore, authSvc, scanner)
	mcpServer := mcp.NewServer(store, sy, notifPrefs, cfg.BearerToken)

	// Background jobs run on the pool so scheduled syncs and sweeps
	// never pile up on the cron goroutine
	pool := worker.NewPool(2)
	pool.Start()
	defer pool.Stop()

	scheduler := worker.NewScheduler()
	if cfg.SyncSchedule != "" {
		err := scheduler.Add("router-sync", cfg.SyncSchedule, func(ctx context.Context) error {
			return submitAndWait(pool, "router-sync", sy.Sync)
		})
		if err != nil {
			log.Error("invalid sync schedule", "spec", cfg.SyncSchedule, "error", err)
			return err
		}
	}
	if cfg.SweepSchedule != "" {
		err := scheduler.Add("notification-sweep", cfg.SweepSchedule, func(ctx context.Context) error {
			return submitAndWait(pool, "notification-sweep", func(context.Context) error {
				_, err := sweeper.Sweep()
				return err
			})
		})
		if err != nil {
			log.Error("invalid sweep schedule", "spec", cfg.SweepSchedule, "error", err)
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup HTTP routes
	mux := http.NewServeMux()
	apiHandler.RegisterRoutes(mux)
	mux.HandleFunc("/mcp", mcpServer.HandleRequest)

	// Apply middleware
	var handler http.Handler = mux
	if cfg.BearerToken != "" {
		handler = api.AuthMiddleware(cfg.BearerToken, handler)
	}
	handler = api.SecurityHeadersMiddleware(handler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info("shutting down server")
		server.Close()
	}()

	log.Info("starting pppoed server", "addr", cfg.ListenAddr)
	log.Info("API available", "url", "http://localhost"+cfg.ListenAddr+"/api/")
	log.Info("MCP available", "url", "http://localhost"+cfg.ListenAddr+"/mcp")
	if cfg.BearerToken != "" {
		log.Info("bearer authentication enabled")
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		return err
	}

	log.Info("server stopped")
	return nil
}

// submitAndWait runs a job on the pool and waits for its result
func submitAndWait(pool *worker.Pool, id string, handler func(context.Context) error) error {
	result := make(chan error, 1)
	if err := pool.Submit(worker.Job{ID: id, Handler: handler, Result: result}); err != nil {
		return err
	}
	return <-result
}
