/*
main.go - Application entry point

PURPOSE:
  Starts the schedule-engine HTTP server: load configuration, open the
  SQLite store, wire the API handler, serve with graceful shutdown.

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT env; default 8080)
  -db      SQLite database path (overrides DATABASE_PATH; ":memory:" works)
  -config  YAML file with working-hours/calendar settings

ENVIRONMENT:
  PORT, DATABASE_PATH, SCHEDULE_CONFIG; a .env file is honored.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, drain for up to 30s,
  close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/turnos/schedule-engine/api"
	"github.com/turnos/schedule-engine/config"
	"github.com/turnos/schedule-engine/engine"
	"github.com/turnos/schedule-engine/store/sqlite"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	configPath := flag.String("config", "", "engine config YAML path")
	flag.Parse()

	if *configPath != "" {
		loaded, err := engine.LoadConfig(*configPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load engine config")
		}
		cfg.Engine = loaded
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	handler := api.NewHandler(store, cfg.Engine, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server stopped")
}
