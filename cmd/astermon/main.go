package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/playok/astermon/internal/api"
	"github.com/playok/astermon/internal/asterisk"
	"github.com/playok/astermon/internal/collector"
	"github.com/playok/astermon/internal/config"
	"github.com/playok/astermon/internal/execx"
	"github.com/playok/astermon/internal/store"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "start":
		cmdStart(args)
	case "stop":
		cmdStop(args)
	case "status":
		cmdStatus(args)
	case "run":
		// Foreground mode (also used internally by daemon child)
		cmdRun(args)
	case "version":
		fmt.Printf("astermon %s\n", version)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	exe := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, `astermon - live Asterisk monitoring dashboards (%s)

Usage:
  %s <command> [flags]

Commands:
  start          Start daemon (background)
  stop           Stop daemon
  status         Show daemon status
  run            Run in foreground
  version        Print version

Flags:
  -config PATH           Config file path (default: astermon.yaml)
  -process-listen ADDR   Process dashboard address (default: 127.0.0.1:8050)
  -calls-listen ADDR     Calls dashboard address (default: 0.0.0.0:8051)
  -db PATH               SQLite history database (default: disabled)
  -base-path P           Base URL path for reverse proxy
  -pid-file P            PID file path
  -log-file P            Log file path

Examples:
  %s run
  %s start -config /etc/astermon/astermon.yaml
  %s stop
`, version, exe, exe, exe, exe)
}

func loadConfig(args []string) *config.Config {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "astermon: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// ---------------------------------------------------------------------------
// run: foreground server (also used by daemon child)
// ---------------------------------------------------------------------------

type dashboard struct {
	name   string
	listen string
	sched  *collector.Scheduler
	srv    *http.Server
}

func cmdRun(args []string) {
	cfg := loadConfig(args)

	var db *store.Store
	if cfg.History.Database != "" {
		var err error
		db, err = store.New(cfg.History.Database)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		log.Printf("[store] recording history to %s (retention %dh)", db.DBPath(), cfg.History.RetentionHours)
	}

	runner := execx.NewOSRunner(cfg.CommandTimeout)
	dashboards := buildDashboards(cfg, runner, db)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	if db != nil {
		go runRetentionPurge(ctx, db, cfg.History.RetentionHours)
	}

	errCh := make(chan error, len(dashboards))
	for _, d := range dashboards {
		d.sched.Start(ctx)
		go func(d *dashboard) {
			log.Printf("astermon %s: %s dashboard on http://%s (base_path: %s)", version, d.name, d.listen, cfg.BasePath)
			if err := d.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("%s dashboard: %w", d.name, err)
			}
		}(d)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Printf("server error: %v", err)
		stop()
	}
	log.Println("shutting down...")

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, d := range dashboards {
		wg.Add(1)
		go func(d *dashboard) {
			defer wg.Done()
			d.sched.Stop()
			if err := d.srv.Shutdown(shutCtx); err != nil {
				log.Printf("[http] %s shutdown: %v", d.name, err)
			}
		}(d)
	}
	wg.Wait()

	os.Remove(cfg.PidFile)
	log.Println("goodbye")
}

type dashboardSource struct {
	poller   collector.Poller
	listen   string
	interval time.Duration
}

func buildDashboards(cfg *config.Config, runner execx.Runner, db *store.Store) []*dashboard {
	var sources []dashboardSource
	if cfg.Process.Enabled {
		probe := collector.NewGopsutilProbe(cfg.Process.CPUSample)
		invites := collector.NewInviteCounter(runner, cfg.Process.LogPath, cfg.Process.Markers)
		p := collector.NewProcessPoller(probe, invites, collector.ProcessPollerOptions{
			ProcessName: cfg.Process.ProcessName,
			Capacity:    cfg.Process.History,
			Interval:    cfg.Process.Interval,
		})
		sources = append(sources, dashboardSource{p, cfg.Process.Listen, cfg.Process.Interval})
	}
	if cfg.Calls.Enabled {
		client := asterisk.NewClient(runner, cfg.Calls.AsteriskBin)
		p := collector.NewCallsPoller(client, cfg.Calls.Interval)
		sources = append(sources, dashboardSource{p, cfg.Calls.Listen, cfg.Calls.Interval})
	}

	out := make([]*dashboard, 0, len(sources))
	for _, src := range sources {
		hub := api.NewHub()
		go hub.Run()

		sched := collector.NewScheduler(src.poller, src.interval)
		sched.SetBroadcast(hub.Broadcast)
		if db != nil {
			sched.SetRecorder(db)
		}

		out = append(out, &dashboard{
			name:   src.poller.Name(),
			listen: src.listen,
			sched:  sched,
			srv: &http.Server{
				Addr:              src.listen,
				Handler:           api.NewRouter(src.poller.Layout(), hub, db, cfg.BasePath),
				ReadHeaderTimeout: 10 * time.Second,
			},
		})
	}
	return out
}

func runRetentionPurge(ctx context.Context, db *store.Store, hours int) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.PurgeOlderThan(hours)
			if err != nil {
				log.Printf("[purge] error: %v", err)
			} else if n > 0 {
				log.Printf("[purge] removed %d old samples", n)
			}
		}
	}
}

// buildForwardFlags turns the effective config back into flags for the daemon
// child, so it resolves the same paths after the parent exits.
func buildForwardFlags(cfg *config.Config) []string {
	var args []string
	if cfg.ConfigPath != "" {
		if abs, err := filepath.Abs(cfg.ConfigPath); err == nil {
			if _, err := os.Stat(abs); err == nil {
				args = append(args, "-config", abs)
			}
		}
	}
	if cfg.Process.Enabled {
		args = append(args, "-process-listen", cfg.Process.Listen)
	}
	if cfg.Calls.Enabled {
		args = append(args, "-calls-listen", cfg.Calls.Listen)
	}
	if cfg.History.Database != "" {
		args = append(args, "-db", absPath(cfg.History.Database))
	}
	args = append(args,
		"-base-path", cfg.BasePath,
		"-pid-file", absPath(cfg.PidFile),
		"-log-file", absPath(cfg.LogFile),
	)
	return args
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// ---------------------------------------------------------------------------
// PID file helpers
// ---------------------------------------------------------------------------

func writePidFile(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0644)
}

func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in %s", path)
	}
	return pid, nil
}
