package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/gmsas95/vitalbase/internal/api"
	"github.com/gmsas95/vitalbase/internal/config"
	"github.com/gmsas95/vitalbase/internal/store"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	version    = "dev"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("vitalbase version %s\n", version)
			return
		}
	}

	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	st, err := store.New(cfg)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer st.Close()

	server, err := api.New(cfg, st, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("address", cfg.Server.Address),
		zap.Int("port", cfg.Server.Port),
		zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	if err := server.Shutdown(); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
}
