package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"fixturecal/config"
	"fixturecal/handlers"
	"fixturecal/services/anthropic"
	"fixturecal/services/ics"
	"fixturecal/services/jobs"
	"fixturecal/services/pagetext"
	"fixturecal/services/parser"
	"fixturecal/services/settings"
	"fixturecal/services/venue"
	"fixturecal/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	listen := flag.String("listen", "", "HTTP listen address (overrides config if set)")
	flag.Parse()

	// A .env file is optional; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[main] load config: %v", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}))
	}

	settingsSvc, err := settings.NewService(nil, cfg.DataDir)
	if err != nil {
		log.Fatalf("[main] settings store: %v", err)
	}
	if err := settingsSvc.SeedAPIKey(os.Getenv("ANTHROPIC_API_KEY")); err != nil {
		log.Printf("[main] seed api key: %v", err)
	}

	upstreamTimeout := time.Duration(cfg.Anthropic.TimeoutSeconds) * time.Second
	httpc := &http.Client{Timeout: upstreamTimeout}

	var opts []anthropic.Option
	if cfg.Anthropic.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.Anthropic.BaseURL))
	}
	if cfg.Anthropic.Model != "" {
		opts = append(opts, anthropic.WithModel(cfg.Anthropic.Model))
	}
	completion := anthropic.NewDynamic(settingsSvc.RequireAPIKey, httpc, opts...)

	jobsSvc := jobs.New(parser.New(completion))
	jobsSvc.StartJanitor(10 * time.Minute)
	defer jobsSvc.Stop()

	router := utils.NewRouter()
	handlers.RegisterRoutes(router,
		handlers.NewParseHandler(jobsSvc, settingsSvc, pagetext.New(nil)),
		handlers.NewVenueHandler(jobsSvc, venue.New(completion)),
		handlers.NewCalendarHandler(jobsSvc, ics.New()),
		handlers.NewSettingsHandler(settingsSvc),
	)

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: upstreamTimeout + 15*time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] serve: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("[main] signal %s received, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
