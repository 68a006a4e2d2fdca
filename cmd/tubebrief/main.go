// Command tubebrief summarizes a single video from the command line:
// it downloads the audio, transcribes it, and prints the generated summary.
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
	"github.com/skillsenselab/tubebrief/version"
)

func main() {
	var (
		configFile     = flag.String("config", "", "path to config.yml (searched automatically when empty)")
		model          = flag.String("model", "", "override the configured model name or path")
		showTranscript = flag.Bool("transcript", false, "also print the intermediate transcript")
		showVersion    = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <video-url>\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Short())
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	url := flag.Arg(0)

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	cfg, err := config.LoadService("tubebrief", opts...)
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

	outcome, err := application.Summarize(ctx, url, *model)
	if err != nil {
		log.WithError(err).Error("Summarization failed")
		os.Exit(1)
	}

	if *showTranscript {
		fmt.Println("--- Transcript ---")
		fmt.Println(outcome.Transcript)
		fmt.Println()
	}

	if !outcome.Extracted {
		fmt.Fprintln(os.Stderr, "warning: model output could not be cleanly separated, printing raw output")
	}
	fmt.Println(outcome.Summary)
	fmt.Fprintf(os.Stderr, "\ncompleted in %.1fs\n", outcome.Elapsed.Seconds())
}
