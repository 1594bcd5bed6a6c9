package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/personascope/personascope/pkg/config"
	"github.com/personascope/personascope/pkg/content"
	"github.com/personascope/personascope/pkg/llm"
	"github.com/personascope/personascope/pkg/reddit"
	"github.com/personascope/personascope/pkg/report"
	"github.com/personascope/personascope/pkg/repository"
	"github.com/personascope/personascope/pkg/service"
	"github.com/personascope/personascope/server"
)

// Opts with all CLI options
type Opts struct {
	Config   string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"config file"`
	URL      string `short:"u" long:"url" env:"PROFILE_URL" description:"reddit profile URL to analyze"`
	MaxPosts int    `short:"m" long:"max-posts" description:"maximum posts to scrape (overrides config)"`
	Serve    bool   `long:"server" description:"serve archived personas over HTTP instead of processing"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

// default example profiles used when no URL is given
var exampleProfiles = []string{
	"https://www.reddit.com/user/kojied/",
	"https://www.reddit.com/user/Hungry-Move-6603/",
}

func main() {
	// .env may carry the API key referenced by the config file
	_ = godotenv.Load()

	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	logFile, err := os.OpenFile("personascope.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		fmt.Printf("can't open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	setupLog(opts.Debug, opts.NoColor, logFile, os.Getenv("OPENAI_API_KEY"))

	log.Printf("[INFO] starting personascope version %s", revision)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		fmt.Println("Error: a valid config with llm.api_key is required (set the key in .env or environment)")
		os.Exit(1)
	}
	if opts.MaxPosts > 0 {
		cfg.Reddit.MaxPosts = opts.MaxPosts
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		log.Printf("[ERROR] can't open persona archive: %v", err)
		os.Exit(1)
	}
	defer repos.Close()

	if opts.Serve {
		srv := server.New(cfg, repos.Persona, revision, opts.Debug)
		if err := srv.Run(ctx); err != nil {
			log.Printf("[ERROR] server failed: %v", err)
			os.Exit(1)
		}
		log.Print("[INFO] shutdown complete")
		return
	}

	scraper := reddit.NewScraper(cfg.Reddit)
	if cfg.Extraction.Enabled {
		scraper.WithExtractor(content.NewHTTPExtractor(cfg.Extraction))
	}
	generator := llm.NewGenerator(cfg.LLM)
	writer := report.NewWriter(cfg.Report.OutputDir)
	processor := service.NewProcessor(scraper, generator, writer, repos.Persona, cfg.Reddit.MaxPosts, cfg.LLM.Model)

	profileURLs := resolveProfiles(opts.URL, os.Stdin)

	fmt.Println("Starting Reddit User Persona Generator")
	fmt.Printf("Processing %d profiles...\n", len(profileURLs))

	okMark := color.New(color.FgGreen).Sprint("✓")
	failMark := color.New(color.FgRed).Sprint("✗")

	successful := 0
	for _, profileURL := range profileURLs {
		username := reddit.Username(profileURL)
		fmt.Printf("\nProcessing user: %s\n", username)

		path, err := processor.ProcessProfile(ctx, profileURL, username)
		if err != nil {
			log.Printf("[ERROR] processing %s failed: %v", profileURL, err)
			fmt.Printf("%s error processing %s: %v\n", failMark, username, err)
			continue
		}
		fmt.Printf("%s persona generated and saved to: %s\n", okMark, path)
		successful++
	}

	fmt.Printf("\nSuccessfully processed %d/%d profiles\n", successful, len(profileURLs))
	fmt.Printf("Check the %q directory for generated persona files\n", cfg.Report.OutputDir)
	fmt.Println("Check 'personascope.log' for detailed logs")
}

// resolveProfiles picks the profiles to process: the URL flag wins, then an
// interactive prompt, then the built-in examples
func resolveProfiles(urlFlag string, in io.Reader) []string {
	if urlFlag != "" {
		return []string{urlFlag}
	}

	fmt.Print("Enter Reddit profile URL (or press Enter for default examples): ")
	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		if entered := strings.TrimSpace(scanner.Text()); entered != "" {
			return []string{entered}
		}
	}
	return exampleProfiles
}

func setupLog(dbg, noColor bool, logFile io.Writer, secs ...string) {
	// everything goes to the log file, console verbosity depends on debug
	logOpts := []lgr.Option{lgr.Out(io.MultiWriter(os.Stdout, logFile)), lgr.Err(io.MultiWriter(os.Stderr, logFile))}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError)
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	// keep the api key out of logs
	var secrets []string
	for _, s := range secs {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
