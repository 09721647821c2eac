package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"

	"calgrid/internal/client"
	"calgrid/internal/config"
	"calgrid/internal/grid"
	"calgrid/internal/ics"
	appLog "calgrid/internal/log"
	"calgrid/internal/model"
	"calgrid/internal/nav"
	"calgrid/internal/store"
	"calgrid/internal/tui"
	"calgrid/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	serve      bool
	remote     string
	logLevel   string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	level := conf.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(level))

	loc := resolveLocationOrLocal(conf.Timezone)

	appLog.Info("calgrid starting",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"default_view", conf.DefaultView,
		"subscriptions", len(conf.Subscriptions),
		"serve", flags.serve,
		"remote", flags.remote,
	)

	// Root context canceled on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.serve {
		if err := runServer(ctx, conf, loc); err != nil {
			appLog.Error("server exited with error", err)
			os.Exit(1)
		}
		return
	}

	if err := runTUI(ctx, conf, loc, flags.remote); err != nil {
		appLog.Error("terminal UI exited with error", err)
		os.Exit(1)
	}
}

// runServer hosts the HTTP API around an in-process store, with subscription
// refresh on the configured cron schedule.
func runServer(ctx context.Context, conf *config.Config, loc *time.Location) error {
	svc := newLocalService(conf, loc)

	var refresher *ics.Refresher
	if len(conf.Subscriptions) > 0 {
		refresher = ics.NewRefresher(svc, conf.Subscriptions, loc)
		if err := refresher.Refresh(ctx); err != nil {
			appLog.Error("initial subscription refresh failed", err)
		}

		sched := cron.New()
		_, err := sched.AddFunc(conf.RefreshCron, func() {
			refreshCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			defer cancel()
			if err := refresher.Refresh(refreshCtx); err != nil {
				appLog.Error("scheduled subscription refresh failed", err)
			}
		})
		if err != nil {
			appLog.Error("invalid refresh schedule", err, "cron", conf.RefreshCron)
		} else {
			sched.Start()
			defer sched.Stop()
		}
	}

	return web.NewServer(conf, svc, refresher, loc).ListenAndServe(ctx)
}

// runTUI runs the terminal client, either against a remote server or against
// an in-process store.
func runTUI(ctx context.Context, conf *config.Config, loc *time.Location, remote string) error {
	var svc model.Service
	if remote != "" {
		c := client.New(remote)
		if conf.BasicAuth != nil {
			c.WithBasicAuth(conf.BasicAuth.Username, conf.BasicAuth.Password)
		}
		svc = c
	} else {
		local := newLocalService(conf, loc)
		if len(conf.Subscriptions) > 0 {
			if err := ics.NewRefresher(local, conf.Subscriptions, loc).Refresh(ctx); err != nil {
				appLog.Error("subscription refresh failed", err)
			}
		}
		svc = local
	}

	calc := grid.New(loc, nil)
	m := tui.New(svc, calc, conf.DefaultView, conf.PixelsPerHour, conf.GridStartHour)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	return err
}

// newLocalService builds the in-process store, seeding the reference date
// from config when one is pinned.
func newLocalService(conf *config.Config, loc *time.Location) *store.Store {
	var seed time.Time
	if conf.SeedDate != "" {
		d, err := model.ParseDate(conf.SeedDate, loc)
		if err != nil {
			appLog.Error("ignoring invalid seed_date", err, "seed_date", conf.SeedDate)
		} else {
			seed = d
		}
	}
	return store.New(nav.New(seed, nil))
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.serve, "serve", false, "Run the HTTP API server instead of the terminal UI")
	flag.StringVar(&cfg.remote, "remote", "", "Base URL of a calgrid server to attach the terminal UI to")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level: DEBUG, INFO or ERROR (overrides config)")

	flag.Parse()
	return cfg
}

func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.config/calgrid/config.yaml"
	}
	return "./config.yaml"
}
