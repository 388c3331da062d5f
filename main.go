package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/TWRT/pm-dashboard/internal/api"
	"github.com/TWRT/pm-dashboard/internal/config"
	"github.com/TWRT/pm-dashboard/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to initialize database: ", err)
	}
	defer db.Close()

	if err := repository.Seed(db); err != nil {
		log.Fatal("failed to seed database: ", err)
	}
	logger.Info("database ready", slog.String("path", cfg.DBPath))

	router := api.SetupRouter(db, cfg.ServerToken, logger)

	logger.Info("server listening",
		slog.String("addr", cfg.ListenAddr),
		slog.Bool("auth", cfg.ServerToken != ""),
	)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		log.Fatal("server stopped: ", err)
	}
}
