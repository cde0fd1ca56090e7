package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"grc/access"
	"grc/ai"
	"grc/config"
	"grc/database"
	"grc/events"
	"grc/handlers"
	"grc/logger"
	"grc/metrics"
	"grc/middleware"
	"grc/routes"
	"grc/runner"
	"grc/store"
	"grc/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	config.LoadConfig()
	logger.Init(config.LogLevel)
	metrics.Init()

	// Database connection
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	st := store.NewMongo(database.Client, config.MongoDB)

	// Core wiring
	factory := events.NewFactory()
	sink := events.MultiSink{events.LogSink{}, websocket.Sink{}}
	engine := events.NewEngine(st, factory, sink)
	scanner := events.NewScanner(st, engine)

	completer := ai.NewHTTPCompleter(
		config.CompleterURL,
		config.CompleterAPIKey,
		config.CompleterModel,
		config.CompleterTimeout,
		config.CompleterRPS,
	)
	synthesizer := ai.NewSynthesizer(st, completer, config.CompleterTimeout)
	jobs := runner.New(config.RunnerWorkers, config.RunnerHistory)

	middleware.Init(st)
	handlers.Init(handlers.Deps{
		Store:       st,
		Engine:      engine,
		Scanner:     scanner,
		Synthesizer: synthesizer,
		Runner:      jobs,
		Gate:        access.NewRoleGate(st),
	})
	websocket.Start()

	// Periodic trigger scans across all tenants
	scanCtx, stopScans := context.WithCancel(context.Background())
	if config.ScannerInterval > 0 {
		go func() {
			ticker := time.NewTicker(config.ScannerInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if _, err := scanner.RunAll(scanCtx); err != nil {
						log.Error().Err(err).Msg("periodic scan failed")
					}
				case <-scanCtx.Done():
					return
				}
			}
		}()
	}

	// Router setup
	router := mux.NewRouter()
	routes.RegisterRoutes(router)

	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.CorsMiddleware)
	router.Use(metrics.Instrument)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", config.Port).Msg("risk and event orchestration core listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	<-quit
	log.Info().Msg("shutting down")

	stopScans()
	jobs.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("server forced shutdown")
	}

	database.Disconnect()
	log.Info().Msg("server stopped")
}
