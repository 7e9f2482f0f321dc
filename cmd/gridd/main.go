package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/meshworks/gridnode/config"
	"github.com/meshworks/gridnode/node"
	"github.com/meshworks/gridnode/store"
	"github.com/meshworks/gridnode/worker"
)

var (
	logger     *slog.Logger
	configPath string
	debugLogs  bool
)

func init() {
	flag.StringVar(&configPath, "config", "node.yaml", "Path to the node configuration file")
	flag.BoolVar(&debugLogs, "verbose", false, "Enable debug level logging")
}

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if debugLogs {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("Failed to load configuration", "path", configPath, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	objStore, cleanup, err := buildStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize object store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	w, err := worker.New(cfg.Id,
		worker.WithLogger(logger),
		worker.WithStore(objStore),
		worker.WithDebug(cfg.Debug),
	)
	if err != nil {
		logger.Error("Failed to construct worker", "error", err)
		os.Exit(1)
	}

	ws, err := node.NewWS(w, node.WSConfig{
		Logger:          logger,
		Binding:         cfg.Binding,
		MaxConnections:  cfg.Sessions.MaxConnections,
		RateLimit:       cfg.Sessions.RateLimit,
		RateBurst:       cfg.Sessions.RateBurst,
		ReadBufferSize:  cfg.Sessions.WebSocketReadBufferSize,
		WriteBufferSize: cfg.Sessions.WebSocketWriteBufferSize,
	})
	if err != nil {
		logger.Error("Failed to construct websocket node", "error", err)
		os.Exit(1)
	}

	color.HiCyan("gridnode %s", cfg.Id)
	color.HiCyan("listening on %s", cfg.Binding)
	if cfg.DataDir != "" {
		color.HiCyan("durable store at %s", cfg.DataDir)
	}

	if err := ws.Serve(ctx); err != nil {
		logger.Error("Node exited with error", "error", err)
		os.Exit(1)
	}

	if cfg.Debug && w.Stats() != nil {
		fmt.Fprintf(os.Stderr, "%s\n", w)
	}
	logger.Info("Node exiting.")
}

func buildStore(cfg *config.Node) (store.Store, func(), error) {
	if cfg.DataDir == "" {
		return store.NewMemory(logger), func() {}, nil
	}

	dir := filepath.Join(cfg.DataDir, config.StoreDirName)
	disk, err := store.NewDisk(store.DiskConfig{
		Logger:    logger,
		Directory: dir,
		CacheTTL:  cfg.Cache.StandardTTL,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := disk.Close(); err != nil {
			logger.Error("Failed to close object store", "error", err)
		}
	}
	return disk, cleanup, nil
}
