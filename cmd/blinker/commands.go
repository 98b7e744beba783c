package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/blinker/internal/app"
	"github.com/ayusman/blinker/internal/capture"
	"github.com/ayusman/blinker/internal/config"
	"github.com/ayusman/blinker/internal/detector"
	"github.com/ayusman/blinker/internal/stats"
	"github.com/ayusman/blinker/internal/store"
)

// withApp opens the store and an App for the offline commands. The camera is never opened.
func withApp(cmd *cobra.Command, f *flags, fn func(a *app.App) error) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg.Cue.Program = ""
	a, err := app.New(appConfig(cfg, st, nil))
	if err != nil {
		return err
	}
	return fn(a)
}

func newStatsCmd(f *flags) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats for the current profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := stats.ParsePeriod(period)
			if err != nil {
				return err
			}
			return withApp(cmd, f, func(a *app.App) error {
				printStats(cmd.OutOrStdout(), a.Profile().Username, a.Stats(), a.Summary(p))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", string(stats.PeriodAll), "day, week, month or all")
	return cmd
}

func printStats(w io.Writer, username string, us stats.UserStats, sum stats.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Profile\t%s\n", username)
	fmt.Fprintf(tw, "Points\t%d\n", us.Points)
	fmt.Fprintf(tw, "Hits\t%d\n", us.TotalHits)
	fmt.Fprintf(tw, "Blinkers\t%d\n", us.Blinkers)
	fmt.Fprintf(tw, "Sessions\t%d\n", us.TotalSessions)
	fmt.Fprintf(tw, "Longest hit\t%.1fs\n", us.LongestHit)
	fmt.Fprintf(tw, "Average hit\t%.1fs\n", us.AverageHitDuration)
	fmt.Fprintf(tw, "Efficiency\t%.0f%%\n", us.Efficiency)
	if sum.Period != stats.PeriodAll {
		fmt.Fprintf(tw, "\nThis %s (%s)\t%d hits, %d points, %.1fs\n",
			sum.Period, sum.Key, sum.Hits, sum.Points, sum.TotalTime)
	}
	tw.Flush()
}

func newLeaderboardCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank every profile by points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, f, func(a *app.App) error {
				entries, err := a.Leaderboard()
				if err != nil {
					return err
				}
				printLeaderboard(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}
}

func printLeaderboard(w io.Writer, entries []store.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No scores yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tUser\tPoints\tBlinkers")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", i+1, e.Username, e.Points, e.Blinkers)
	}
	tw.Flush()
}

func newExportCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the current profile's stats as JSON (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, f, func(a *app.App) error {
				data, err := json.MarshalIndent(a.Export(), "", "  ")
				if err != nil {
					return err
				}
				data = append(data, '\n')
				if len(args) == 0 {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(args[0], data, 0o644); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
				return nil
			})
		},
	}
}

func newResetCmd(f *flags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the current profile's stats and hit history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			return withApp(cmd, f, func(a *app.App) error {
				if err := a.ResetStats(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stats reset for %s\n", a.Profile().Username)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newCalibrateCmd(f *flags) *cobra.Command {
	var (
		device  int
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Sample the camera and print the thresholds calibration would derive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("device") {
				cfg.Camera.Device = device
			}

			cam := cameraFactory(cfg)(cfg.Camera.Device)
			if err := cam.Open(); err != nil {
				return fmt.Errorf("open camera %d: %w", cfg.Camera.Device, err)
			}
			defer cam.Close()
			cam.SetFPS(cfg.Camera.FPS)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			calCfg := cfg.Detection.Calibration
			calCfg.Window = cfg.Detection.Window
			report, err := detector.Calibrate(ctx, cameraSource(cam), calCfg)
			if err != nil {
				return err
			}
			printCalibration(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().IntVar(&device, "device", 0, "camera device ID (negative runs the demo clip)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long")
	return cmd
}

// cameraSource adapts a camera to the calibration frame source.
func cameraSource(cam capture.Camera) func() (detector.Frame, error) {
	return func() (detector.Frame, error) {
		frame, err := cam.ReadFrame()
		if err != nil {
			return nil, err
		}
		return frame, nil
	}
}

func printCalibration(w io.Writer, r detector.CalibrationReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Frames matched\t%d of %d\n", r.Matched, r.Attempts)
	if r.Fallback {
		fmt.Fprintln(tw, "No LED found, using defaults")
	} else {
		fmt.Fprintf(tw, "Average brightness\t%.1f\n", r.AvgBrightness)
		fmt.Fprintf(tw, "Average confidence\t%.1f\n", r.AvgConfidence)
	}
	fmt.Fprintf(tw, "Brightness threshold\t%.1f\n", r.Thresholds.BrightnessThreshold)
	fmt.Fprintf(tw, "Sensitivity\t%.1f\n", r.Thresholds.Sensitivity)
	tw.Flush()
}

func newConfigCmd(f *flags) *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create the config file if missing and print its path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := f.configPath
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if _, err := os.Stat(path); err != nil {
				if !os.IsNotExist(err) {
					return fmt.Errorf("failed to stat config: %w", err)
				}
				if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)

			if show {
				cfg, err := loadConfig(cmd, f)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "also print the resolved configuration")
	return cmd
}
