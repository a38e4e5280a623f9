package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quote-board/src/cache"
	"quote-board/src/config"
	"quote-board/src/data_source/twse"
	"quote-board/src/data_source/yahoo"
	"quote-board/src/interfaces"
	"quote-board/src/logger"
	"quote-board/src/network"
	"quote-board/src/reconcile"
	"quote-board/src/server"
	"quote-board/src/session"
	"quote-board/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.Name)

	// Setup recorder
	var recorder interfaces.IRecorder

	switch cfg.Storage.DBType {
	case "postgres":
		recorder, err = storage.NewPostgresRecorder(cfg.MConfig, appLogger)
	case "sqlite":
		recorder, err = storage.NewSQLiteRecorder(cfg.MConfig, appLogger)
	default:
		recorder = storage.NewNoopRecorder()
	}

	if err != nil {
		appLogger.Critical("Failed to init recorder: %v", err)
	}
	if err := recorder.Initialize(); err != nil {
		appLogger.Critical("Failed to initialize recorder: %v", err)
	}
	defer recorder.Close()

	// Setup quote sources behind the shared transport policy
	var netMgr interfaces.INetworkManager = network.NewManager(cfg.Network, appLogger)

	official := twse.NewOfficialSource(netMgr)
	secondary := yahoo.NewFinanceSource(netMgr)

	// Session clock
	clock, err := session.NewClock(cfg.Markets)
	if err != nil {
		appLogger.Critical("Failed to build session clock: %v", err)
	}

	// TTL cache
	store := cache.NewStore(map[cache.Class]time.Duration{
		cache.ClassQuote:    time.Duration(cfg.Cache.QuoteTTLSeconds) * time.Second,
		cache.ClassIntraday: time.Duration(cfg.Cache.IntradayTTLSeconds) * time.Second,
		cache.ClassDaily:    time.Duration(cfg.Cache.DailyTTLSeconds) * time.Second,
	})

	// Reconciliation engine and server
	engine := reconcile.NewEngine(cfg.MConfig, clock, store, official, secondary, recorder)
	srv := server.NewBoardServer(cfg.MConfig, engine, appLogger)
	engine.SetExchange(srv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		appLogger.Info("Shutting down...")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		appLogger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
