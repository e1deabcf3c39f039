package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/kardianos/service"
	"github.com/pkg/browser"

	"github.com/OggyMishra/claude-compte/internal/cache"
	"github.com/OggyMishra/claude-compte/internal/config"
	"github.com/OggyMishra/claude-compte/internal/output"
	"github.com/OggyMishra/claude-compte/internal/parser"
	"github.com/OggyMishra/claude-compte/internal/server"
)

const version = "0.1.0"

func main() {
	command := "serve"
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "serve", "report", "service", "config":
			command = args[0]
			args = args[1:]
		}
	}

	switch command {
	case "report":
		runReport(args)
	case "service":
		runService(args)
	case "config":
		runConfig(args)
	default:
		runServe(args)
	}
}

// newStore builds the cache store, preferring flag values over config file
// values.
func newStore(cfg *config.Config, projectsDir, cachePath string) *cache.Store {
	claudeDir, err := parser.DefaultClaudeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot resolve home directory: %v\n", err)
		os.Exit(1)
	}
	if projectsDir == "" {
		projectsDir = cfg.ProjectsDir
	}
	if cachePath == "" {
		cachePath = cfg.CachePath
	}
	return cache.NewStore(claudeDir, projectsDir, cachePath)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("claude-compte", flag.ExitOnError)

	var (
		port        int
		noOpen      bool
		projectsDir string
		cachePath   string
		refresh     bool
		showHelp    bool
		showVer     bool
	)

	fs.IntVar(&port, "port", 0, "Port to serve on (default: 3456)")
	fs.BoolVar(&noOpen, "no-open", false, "Don't open the browser automatically")
	fs.StringVar(&projectsDir, "projects-dir", "", "Session logs directory (default: ~/.claude/projects)")
	fs.StringVar(&cachePath, "cache", "", "Cache file path (default: ~/.claude/compte-cache.json)")
	fs.BoolVar(&refresh, "refresh", false, "Discard the cache and rescan everything at startup")
	fs.BoolVar(&showHelp, "help", false, "Show help")
	fs.BoolVar(&showHelp, "h", false, "Show help")
	fs.BoolVar(&showVer, "version", false, "Show version")
	fs.BoolVar(&showVer, "v", false, "Show version")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `claude-compte - Token usage analytics dashboard for Claude Code

Usage: claude-compte [command] [options]

Commands:
  serve     Serve the dashboard and open the browser (default)
  report    Print a usage report to the terminal
  service   Run the dashboard as a background service
  config    Configure defaults

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  claude-compte
  claude-compte --port 8090 --no-open
  claude-compte report --json
  claude-compte service install
`)
	}

	fs.Parse(args)

	if showVer {
		fmt.Printf("claude-compte version %s\n", version)
		return
	}
	if showHelp {
		fs.Usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if port == 0 {
		port = cfg.Port
	}
	if cfg.NoOpen {
		noOpen = true
	}

	store := newStore(cfg, projectsDir, cachePath)
	srv := server.New(store, cfg.OptimizerThresholds())

	if refresh {
		if _, err := store.GetOrCompute(true); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	ln, err := srv.Listen(port)
	if err != nil {
		if strings.Contains(err.Error(), "address already in use") {
			fmt.Fprintf(os.Stderr, "Error: port %d is already in use. Try --port <other>\n", port)
			os.Exit(1)
		}
		log.Fatalf("Failed to listen: %v", err)
	}

	if !noOpen {
		url := fmt.Sprintf("http://%s", ln.Addr())
		go func() {
			time.Sleep(time.Second)
			if err := browser.OpenURL(url); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not open browser: %v\n", err)
			}
		}()
	}

	if err := srv.Serve(ln, store.ProjectsDir); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	var (
		jsonOut     bool
		sessions    bool
		compact     bool
		refresh     bool
		projectsDir string
		cachePath   string
	)
	fs.BoolVar(&jsonOut, "json", false, "Output the full report as JSON")
	fs.BoolVar(&sessions, "sessions", false, "Show sessions ranked by cache efficiency")
	fs.BoolVar(&compact, "compact", false, "Force compact table output")
	fs.BoolVar(&compact, "c", false, "Force compact table output")
	fs.BoolVar(&refresh, "refresh", false, "Discard the cache and rescan everything")
	fs.StringVar(&projectsDir, "projects-dir", "", "Session logs directory (default: ~/.claude/projects)")
	fs.StringVar(&cachePath, "cache", "", "Cache file path (default: ~/.claude/compte-cache.json)")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store := newStore(cfg, projectsDir, cachePath)
	report, err := store.GetOrCompute(refresh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading usage data: %v\n", err)
		os.Exit(1)
	}

	opts := output.TableOptions{ForceCompact: compact}
	switch {
	case jsonOut:
		output.PrintJSON(report)
	case sessions:
		output.PrintSessions(report, opts)
	default:
		output.PrintDaily(report, opts)
	}
}

func runConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	var (
		port        int
		projectsDir string
		noOpen      bool
		show        bool
	)
	fs.IntVar(&port, "port", 0, "Default port")
	fs.StringVar(&projectsDir, "projects-dir", "", "Default session logs directory")
	fs.BoolVar(&noOpen, "no-open", false, "Never open the browser automatically")
	fs.BoolVar(&show, "show", false, "Show current configuration")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if show {
		fmt.Printf("Port: %d\n", cfg.Port)
		if cfg.ProjectsDir != "" {
			fmt.Printf("Projects dir: %s\n", cfg.ProjectsDir)
		}
		if cfg.CachePath != "" {
			fmt.Printf("Cache path: %s\n", cfg.CachePath)
		}
		fmt.Printf("Open browser: %t\n", !cfg.NoOpen)
		return
	}

	if port == 0 && projectsDir == "" && !noOpen {
		fs.Usage()
		return
	}

	if port != 0 {
		cfg.Port = port
	}
	if projectsDir != "" {
		cfg.ProjectsDir = projectsDir
	}
	if noOpen {
		cfg.NoOpen = true
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Configuration saved.")
}

// dashboardService runs the dashboard headless under the OS service manager.
type dashboardService struct {
	port   int
	ln     net.Listener
	logger service.Logger
}

func (d *dashboardService) Start(svc service.Service) error {
	go d.run()
	return nil
}

func (d *dashboardService) Stop(svc service.Service) error {
	if d.ln != nil {
		return d.ln.Close()
	}
	return nil
}

func (d *dashboardService) run() {
	cfg, err := config.Load()
	if err != nil {
		if d.logger != nil {
			d.logger.Errorf("Error loading config: %v", err)
		}
		return
	}
	if d.port == 0 {
		d.port = cfg.Port
	}

	store := newStore(cfg, "", "")
	srv := server.New(store, cfg.OptimizerThresholds())

	ln, err := srv.Listen(d.port)
	if err != nil {
		if d.logger != nil {
			d.logger.Errorf("Failed to listen on port %d: %v", d.port, err)
		}
		return
	}
	d.ln = ln

	if err := srv.Serve(ln, store.ProjectsDir); err != nil && d.logger != nil {
		d.logger.Errorf("Server stopped: %v", err)
	}
}

func runService(args []string) {
	fs := flag.NewFlagSet("service", flag.ExitOnError)
	var port int
	fs.IntVar(&port, "port", 0, "Port to serve on (default: from config or 3456)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: claude-compte service [command] [options]

Commands:
  install     Install as a background service
  start       Start the background service
  stop        Stop the background service
  uninstall   Remove the background service
  status      Show service status

Options:
`)
		fs.PrintDefaults()
	}

	var svcCommand string
	if len(args) > 0 {
		switch args[0] {
		case "install", "start", "stop", "uninstall", "status", "run":
			svcCommand = args[0]
			args = args[1:]
		}
	}

	fs.Parse(args)

	svcConfig := &service.Config{
		Name:        "claude-compte",
		DisplayName: "claude-compte Dashboard",
		Description: "Serves the Claude Code token usage dashboard on localhost",
		Arguments:   []string{"service", "run", fmt.Sprintf("--port=%d", port)},
	}

	prog := &dashboardService{port: port}
	svc, err := service.New(prog, svcConfig)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	switch svcCommand {
	case "install":
		if err := svc.Install(); err != nil {
			log.Fatalf("Failed to install service: %v", err)
		}
		if err := svc.Start(); err != nil {
			log.Fatalf("Service installed but failed to start: %v", err)
		}
		fmt.Println("Service installed and started.")

	case "start":
		if err := svc.Start(); err != nil {
			log.Fatalf("Failed to start service: %v", err)
		}
		fmt.Println("Service started.")

	case "stop":
		if err := svc.Stop(); err != nil {
			log.Fatalf("Failed to stop service: %v", err)
		}
		fmt.Println("Service stopped.")

	case "uninstall":
		svc.Stop() // ignore error
		if err := svc.Uninstall(); err != nil {
			log.Fatalf("Failed to uninstall service: %v", err)
		}
		fmt.Println("Service uninstalled.")

	case "status":
		status, err := svc.Status()
		if err != nil {
			fmt.Printf("Service status: not installed or error (%v)\n", err)
			return
		}
		switch status {
		case service.StatusRunning:
			fmt.Println("Service status: running")
		case service.StatusStopped:
			fmt.Println("Service status: stopped")
		default:
			fmt.Println("Service status: unknown")
		}

	case "run":
		// Invoked by the service manager
		logger, err := svc.Logger(nil)
		if err == nil {
			prog.logger = logger
		}
		if err := svc.Run(); err != nil && logger != nil {
			logger.Error(err)
		}

	default:
		fs.Usage()
	}
}
