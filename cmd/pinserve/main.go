// Copyright 2026 The PinServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the pinyin classification server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

PinServe tells Chinese text, romanized Mandarin (pinyin), a mix of both and
unrelated text apart, splits pinyin into syllables and fetches character
candidates for it from a conversion backend. It can operate as a MessagePack
IPC server for input surfaces and editors, or as a CLI application for testing
and debugging.

# Usage

Start the server with default settings:

	pinserve

Use a custom config file and enable debug mode:

	pinserve --config ./config.toml -d

Run in CLI mode for interactive testing:

	pinserve -c --limit 10

# Configuration

Runtime configuration is managed through a TOML file, created with defaults
when it does not exist:

	[server]
	max_input = 256
	default_limit = 6
	max_limit = 20

	[backend]
	endpoint = "https://inputtools.google.com/request"
	input_tool = "zh-t-i0-pinyin"
	timeout_ms = 3000
	cache_ttl_s = 300
	cache_size = 2048

	[suggest]
	debounce_ms = 300

	[cli]
	limit = 6
	show_trace = true
	suggest = true

Server mode watches the file and applies edits without restart.

# IPC Protocol

See the server package. In short, send

	{"id": "req1", "t": "nihao", "x": true}

and receive

	{"id": "req1", "type": "pinyin", "cov": {...}, "syl": [...], "cand": [{"w": "你好", "r": 1}], "t": 301245}

# Command Line Flags

	-d, --debug         Enable debug mode with detailed logging
	-c, --cli           Run in CLI mode instead of server mode
	    --config        Path to a custom config file
	    --limit         Number of candidates to show in CLI mode
	    --no-suggest    Classify only, never contact the backend
	    --reset-config  Rewrite the config file with defaults and exit
	    --version       Show current version
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/pinserve/internal/cli"
	"github.com/bastiangx/pinserve/pkg/config"
	"github.com/bastiangx/pinserve/pkg/server"
	"github.com/bastiangx/pinserve/pkg/suggest"
	"github.com/bastiangx/pinserve/pkg/syllable"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"
)

const (
	Version = "0.1.0-beta"
	AppName = "pinserve"
	gh      = "https://github.com/bastiangx/pinserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		cancel()
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires the packages together and picks server or CLI mode.
// main() does not implement logic for them and only manages the flow.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigHandler(cancel)
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.BoolP("debug", "d", false, "Toggle debug mode")
	cliMode := flag.BoolP("cli", "c", false, "Run CLI -- useful for testing and debugging")
	configFile := flag.String("config", "", "Path to custom config.toml file")
	limit := flag.Int("limit", 0, fmt.Sprintf("Number of candidates to show in CLI mode (default from config, %d)", defaultConfig.CLI.Limit))
	noSuggest := flag.Bool("no-suggest", false, "Classify only and never contact the conversion backend")
	resetConfig := flag.Bool("reset-config", false, "Rewrite the config file with defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *resetConfig {
		path, err := config.RebuildConfigFile(*configFile)
		if err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Config rebuilt at %s\n", path)
		os.Exit(0)
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(configPath))
	log.Debugf("Syllable table ready: %d entries", syllable.Default().Len())

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		opts := cli.Options{Limit: appConfig.CLI.Limit, ShowTrace: appConfig.CLI.ShowTrace}
		if *limit > 0 {
			opts.Limit = *limit
		}
		var sg *suggest.Suggester
		if appConfig.CLI.Suggest && !*noSuggest {
			var cache *suggest.Cache
			sg, cache = buildSuggester(appConfig.Backend)
			if cache != nil {
				opts.Stats = cache.Stats
			}
		}
		log.Debug("Input info:", "limit", opts.Limit, "trace", opts.ShowTrace, "suggest", sg != nil)

		inputHandler := cli.NewInputHandler(sg, os.Stdout, opts)
		if err := inputHandler.Start(ctx, os.Stdin); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	watcher := config.NewWatcher(configPath, appConfig)
	tracker := suggest.NewTracker(appConfig.Suggest.Debounce())

	var sg *suggest.Suggester
	if !*noSuggest {
		sg, _ = buildSuggester(appConfig.Backend)
	}
	srv := server.NewServer(sg, tracker, watcher, os.Stdin, os.Stdout)

	watcher.OnChange(func(c *config.Config) {
		tracker.SetDebounce(c.Suggest.Debounce())
		if !*noSuggest {
			next, _ := buildSuggester(c.Backend)
			srv.SetSuggester(next)
		}
		log.Infof("Config reloaded, debounce %v", c.Suggest.Debounce())
	})
	if err := watcher.Start(); err != nil {
		log.Warnf("Config hot reload disabled: %v", err)
	}
	defer watcher.Close()

	showStartupInfo(config.GetActiveConfigPath(configPath), sg != nil)

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	log.Debugf("Handled %d requests", srv.Requests())
}

// buildSuggester wires the HTTP client, the result cache and the suggester.
// The cache is nil when disabled in config.
func buildSuggester(bc config.BackendConfig) (*suggest.Suggester, *suggest.Cache) {
	client := suggest.NewClient(suggest.Options{
		Endpoint:  bc.Endpoint,
		InputTool: bc.InputTool,
		Timeout:   bc.Timeout(),
	})
	conv := suggest.NewCache(client, bc.CacheTTL(), bc.CacheSize)
	cache, _ := conv.(*suggest.Cache)
	return suggest.New(conv), cache
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ PinServe ] Tells pinyin from Chinese and suggests characters")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
// Everything goes to stderr, stdout belongs to the IPC stream.
func showStartupInfo(configPath string, suggestions bool) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, " PinServe ")
	fmt.Fprintln(os.Stderr, "==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("config: ( %s )", configPath)
	log.Infof("suggestions: %v", suggestions)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
