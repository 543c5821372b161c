package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nvoronina/matching-engine/config"
	"github.com/nvoronina/matching-engine/internal/adapter/cache"
	"github.com/nvoronina/matching-engine/internal/adapter/in_memory"
	"github.com/nvoronina/matching-engine/internal/adapter/pg"
	httpapi "github.com/nvoronina/matching-engine/internal/api/http"
	"github.com/nvoronina/matching-engine/internal/api/ws"
	"github.com/nvoronina/matching-engine/internal/core"
	"github.com/nvoronina/matching-engine/internal/port"
	"github.com/nvoronina/matching-engine/internal/stream"
	"github.com/nvoronina/matching-engine/pkg/logger"
)

func main() {
	log := logger.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Errorf("load configuration: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var journal port.Journal
	var pgJournal *pg.Journal
	if cfg.PostgresDSN != "" {
		pgJournal, err = pg.NewJournal(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Errorf("connect to Postgres: %v", err)
			os.Exit(1)
		}
		defer pgJournal.Close()
		journal = pgJournal
	} else {
		log.Info("no POSTGRES_DSN set, journaling trades in memory")
		journal = in_memory.NewJournal()
	}

	var depthCache port.Cache
	if cfg.RedisAddr != "" {
		depthCache = cache.NewRedisCache(cfg.RedisAddr, "", cfg.RedisDB, cfg.RedisTTL)
	} else {
		depthCache = in_memory.NewCache()
	}

	hub := ws.NewHub(log)
	sinks := stream.Fanout{hub}
	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, stream.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	defer sinks.Close()

	book := core.NewBook(core.BookConfig{
		Instrument: cfg.Instrument,
		CutoffHour: cfg.CutoffHour,
	})
	eng := core.NewEngine(book, journal, depthCache, sinks, log)
	defer eng.Close()

	api := httpapi.NewServer(eng, hub, log, cfg.RateLimitInterval)
	srv := &http.Server{
		Addr:    cfg.HTTPServerAddress,
		Handler: api.Router(),
	}

	go func() {
		log.Infof("HTTP server listening on %s (instrument %s)", cfg.HTTPServerAddress, cfg.Instrument)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP server: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP shutdown: %v", err)
	}
}
