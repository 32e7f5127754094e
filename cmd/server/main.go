package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/config"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/logging"
	"github.com/dogancanbaris/WPP-mcp-servers-sub001/internal/mcp"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobalLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewServer(cfg, mcp.Deps{Logger: logger})
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server exited with error", "error", err.Error())
		os.Exit(1)
	}
	logger.Info("server stopped")
}
