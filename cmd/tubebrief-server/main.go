// Command tubebrief-server runs the web UI and the JSON summarization API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillsenselab/tubebrief/app"
	"github.com/skillsenselab/tubebrief/config"
	"github.com/skillsenselab/tubebrief/fetch"
	"github.com/skillsenselab/tubebrief/logger"
	"github.com/skillsenselab/tubebrief/server"
	"github.com/skillsenselab/tubebrief/version"
	"github.com/skillsenselab/tubebrief/web"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml (searched automatically when empty)")
	flag.Parse()

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	cfg, err := config.LoadService("tubebrief-server", opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging)
	log := logger.GetGlobalLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fetch.EnsureTool(ctx); err != nil {
		log.WithError(err).Warn("Could not provision yt-dlp, relying on PATH")
	}

	application, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize")
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, application.HealthChecker())
	web.NewHandler(application, log).Register(srv.GinEngine())

	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}

	log.Info("Ready", map[string]interface{}{
		"addr":          srv.Addr(),
		"version":       version.Short(),
		"transcription": cfg.Transcription.Backend,
		"llm":           cfg.LLM.Backend,
	})

	<-ctx.Done()
	log.Info("Shutdown signal received")

	if err := srv.Stop(context.Background()); err != nil {
		log.WithError(err).Error("Shutdown error")
	}
}
