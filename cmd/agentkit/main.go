// Package main provides agentkit, a headless runner for the toolkit's
// browser, filesystem, media and search tools. It executes one tool call or a
// YAML batch of calls and prints the results as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/agentkit/pkg/agent/tools"
	appconfig "github.com/entrhq/agentkit/pkg/config"
	"github.com/entrhq/agentkit/pkg/logging"
	"github.com/entrhq/agentkit/pkg/security/workspace"
	"github.com/entrhq/agentkit/pkg/tools/browser"
	"github.com/entrhq/agentkit/pkg/tools/fs"
	"github.com/entrhq/agentkit/pkg/tools/media"
	"github.com/entrhq/agentkit/pkg/tools/search"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	Workspace   string
	Tool        string
	Args        string
	BatchFile   string
	List        bool
	Install     bool
	LogLevel    string
	Timeout     time.Duration
	ShowVersion bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("agentkit v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	if err := run(ctx, config, os.Stdin, os.Stdout); err != nil {
		cancel()
		log.Printf("agentkit: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.ConfigFile, "config", "", "Path to configuration file (JSON)")
	flag.StringVar(&config.Workspace, "workspace", "", "Workspace directory (default: workspace.root from config)")
	flag.StringVar(&config.Tool, "tool", "", "Tool to execute")
	flag.StringVar(&config.Args, "args", "", "Tool arguments as XML; read from stdin when omitted")
	flag.StringVar(&config.BatchFile, "batch", "", "YAML file with a list of {tool, arguments} jobs")
	flag.BoolVar(&config.List, "list", false, "List available tools and exit")
	flag.BoolVar(&config.Install, "install", false, "Install the Playwright driver and browsers if missing")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flag.DurationVar(&config.Timeout, "timeout", 0, "Overall timeout (0 means none)")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "agentkit - browser, filesystem, media and search tools\n\n")
		fmt.Fprintf(os.Stderr, "Usage: agentkit [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  agentkit -tool browser_visit -args '<url>https://example.com</url>'\n")
		fmt.Fprintf(os.Stderr, "  echo '<path>README.md</path>' | agentkit -tool read_file\n")
		fmt.Fprintf(os.Stderr, "  agentkit -batch jobs.yaml\n")
	}

	flag.Parse()
	return config
}

// run executes the requested tool calls
func run(ctx context.Context, cli *CLIConfig, stdin io.Reader, stdout io.Writer) error {
	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		return err
	}
	logging.SetDefaultLevel(level)
	logger := logging.MustLogger("agentkit")
	defer logger.Close()

	if err := appconfig.Initialize(cli.ConfigFile); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	launcher := browser.NewPlaywrightLauncher(cli.Install)
	defer func() {
		if err := launcher.Shutdown(); err != nil {
			logger.Warnf("%v", err)
		}
	}()

	reg, err := buildRegistry(cli.Workspace, launcher, logger)
	if err != nil {
		return err
	}

	if cli.List {
		return listTools(reg, stdout)
	}

	if cli.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cli.Timeout)
		defer cancel()
	}

	var jobs []Job
	switch {
	case cli.BatchFile != "":
		if jobs, err = loadJobs(cli.BatchFile); err != nil {
			return err
		}
	case cli.Tool != "":
		args := cli.Args
		if args == "" {
			data, readErr := io.ReadAll(stdin)
			if readErr != nil {
				return fmt.Errorf("failed to read arguments from stdin: %w", readErr)
			}
			args = string(data)
		}
		jobs = []Job{{Tool: cli.Tool, Arguments: args}}
	default:
		return fmt.Errorf("one of -tool, -batch or -list is required")
	}

	logger.Infof("running %d job(s)", len(jobs))
	results, failed := runJobs(ctx, reg, jobs)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	if failed {
		return fmt.Errorf("one or more tool calls failed")
	}
	return nil
}

// buildRegistry wires every tool to the global configuration.
func buildRegistry(workspaceDir string, launcher browser.Launcher, logger *logging.Logger) (*tools.Registry, error) {
	browserSettings := appconfig.CurrentBrowserSettings()
	mediaSettings := appconfig.CurrentMediaSettings()

	if workspaceDir == "" {
		workspaceDir = "."
		if ws := appconfig.GetWorkspace(); ws != nil {
			workspaceDir = ws.GetRoot()
		}
	}
	guard, err := workspace.NewGuard(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace guard: %w", err)
	}

	extra := []string{browserSettings.ScreenshotsDir, mediaSettings.OutputDir}
	if ws := appconfig.GetWorkspace(); ws != nil {
		extra = append(extra, ws.GetWhitelistedDirs()...)
	}
	for _, dir := range extra {
		if dir == "" {
			continue
		}
		if err := guard.Allow(dir); err != nil {
			return nil, fmt.Errorf("failed to allow %s: %w", dir, err)
		}
	}

	exec := browser.NewExecutor(launcher, browserSettings, browser.WithLogger(logger))
	mediaClient := media.NewClient(mediaSettings, media.WithLogger(logger))
	searchClient := search.NewClient(appconfig.CurrentSearchSettings(), search.WithLogger(logger))

	reg := tools.NewRegistry()
	for _, group := range [][]tools.Tool{
		browser.Tools(exec),
		fs.Tools(guard, fs.NewTiktokenCounter("")),
		media.Tools(mediaClient, guard),
		search.Tools(searchClient),
	} {
		if err := reg.Register(group...); err != nil {
			return nil, fmt.Errorf("failed to register tools: %w", err)
		}
	}
	return reg, nil
}

func listTools(reg *tools.Registry, w io.Writer) error {
	for _, name := range reg.Names() {
		tool, _ := reg.Get(name)
		if _, err := fmt.Fprintf(w, "%-20s %s\n", name, tool.Description()); err != nil {
			return err
		}
	}
	return nil
}
