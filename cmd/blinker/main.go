// Package main provides the CLI entrypoint for Blinker.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/blinker/internal/app"
	"github.com/ayusman/blinker/internal/config"
	"github.com/ayusman/blinker/internal/hit"
	"github.com/ayusman/blinker/internal/observe"
	"github.com/ayusman/blinker/internal/server"
	"github.com/ayusman/blinker/internal/tray"
)

var version = "dev"

// flags holds the command-line overrides shared by every command.
type flags struct {
	configPath string
	camera     int
	user       string
	addr       string
	mode       string
	db         string
	noTray     bool
	faceGuide  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:          "blinker",
		Short:        "Track how long an LED stays lit in front of the camera",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDetect(cmd, f)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", config.DefaultConfigPath(), "path to the TOML config file")
	pf.StringVar(&f.user, "user", "", "profile username")
	pf.StringVar(&f.db, "db", "", "path to the SQLite database")

	addRunFlags(rootCmd, f)

	rootCmd.AddCommand(newRunCmd(f))
	rootCmd.AddCommand(newStatsCmd(f))
	rootCmd.AddCommand(newLeaderboardCmd(f))
	rootCmd.AddCommand(newExportCmd(f))
	rootCmd.AddCommand(newResetCmd(f))
	rootCmd.AddCommand(newCalibrateCmd(f))
	rootCmd.AddCommand(newConfigCmd(f))

	return rootCmd
}

func newRunCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start detection, the dashboard and the tray (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDetect(cmd, f)
		},
	}
	addRunFlags(cmd, f)
	return cmd
}

func addRunFlags(cmd *cobra.Command, f *flags) {
	fs := cmd.Flags()
	fs.IntVar(&f.camera, "camera", 0, "camera device ID (negative runs the demo clip)")
	fs.StringVar(&f.addr, "addr", config.DefaultAddr, "dashboard listen address (empty disables it)")
	fs.StringVar(&f.mode, "mode", string(hit.ModeTiered), "scoring mode: tiered or classic")
	fs.BoolVar(&f.noTray, "no-tray", false, "do not show the system tray menu")
	fs.BoolVar(&f.faceGuide, "face-guide", false, "draw the face guide on the preview")
}

// loadConfig reads the config file and applies any flag the user set explicitly.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}

	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("camera") {
		cfg.Camera.Device = f.camera
	}
	if changed("user") {
		cfg.UI.Username = f.user
	}
	if changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if changed("mode") {
		cfg.Scoring.Mode = hit.Mode(f.mode)
		cfg.Explicit.ScoringMode = true
	}
	if changed("db") {
		cfg.DBPath = f.db
	}
	if changed("no-tray") {
		cfg.UI.Tray = !f.noTray
	}
	if changed("face-guide") {
		cfg.UI.FaceGuide = f.faceGuide
		cfg.Explicit.FaceGuide = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runDetect(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "blinker", ServiceVersion: version})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer provider.Shutdown(context.Background())

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := app.New(appConfig(cfg, st, provider.Metrics()))
	if err != nil {
		return err
	}
	log.Printf("Blinker %s, profile %s", version, a.Profile().Username)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Server.Addr != "" {
		srv := server.New(server.Config{
			StaticDir:      cfg.Server.StaticDir,
			App:            a,
			Metrics:        provider.Metrics(),
			MetricsHandler: provider.Handler(),
			StreamFPS:      cfg.Server.StreamFPS,
		})
		g.Go(func() error {
			log.Printf("Dashboard on http://%s", cfg.Server.Addr)
			return srv.Run(gctx, cfg.Server.Addr)
		})
	}

	if err := a.Start(); err != nil {
		log.Printf("Camera unavailable: %v", err)
	}
	g.Go(func() error {
		<-gctx.Done()
		a.Stop()
		return nil
	})

	if cfg.UI.Tray {
		t := newTray(a, cfg, stop)
		go func() {
			<-gctx.Done()
			t.Quit()
		}()
		t.Run()
		stop()
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("Blinker stopped")
	return nil
}

// newTray wires the tray menu to the app.
func newTray(a *app.App, cfg config.Config, quit func()) *tray.Tray {
	t := tray.New()
	t.SetEnabled(a.Running())
	t.SetPoints(a.Stats().Points)

	t.OnToggle(func(enabled bool) {
		if !enabled {
			a.Stop()
			return
		}
		if err := a.Start(); err != nil {
			log.Printf("Camera unavailable: %v", err)
			t.SetEnabled(false)
		}
	})
	t.OnRecalibrate(func() {
		if err := a.Recalibrate(); err != nil {
			log.Printf("Recalibrate: %v", err)
		}
	})
	t.OnOpenDashboard(func() {
		if cfg.Server.Addr == "" {
			return
		}
		if err := openBrowser("http://" + cfg.Server.Addr); err != nil {
			log.Printf("Failed to open dashboard: %v", err)
		}
	})
	t.OnQuit(quit)

	a.OnHit(func(v hit.Verdict) {
		t.SetLastHit(v)
		t.SetPoints(a.Stats().Points)
	})
	return t
}
