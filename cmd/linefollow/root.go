package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-linefollow/internal/config"
	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/camera"
)

// Version is the application version, overridden at build time with
// -ldflags "-X main.Version=...".
var Version = "0.1.0"

var (
	cfg          config.Config
	configPath   string
	logLevel     string
	cameraPreset string
)

var rootCmd = &cobra.Command{
	Use:           "linefollow",
	Short:         "Vision line follower for serial motor controllers",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("camera-preset") {
			if err := cfg.ApplyCameraPreset(cameraPreset); err != nil {
				return err
			}
		}
		log.Init(cfg.LogLevel)
		return nil
	},
}

// Execute runs the command line until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&cameraPreset, "camera-preset", "",
		"camera preset ("+strings.Join(camera.PresetNames(), ", ")+"); also sets the detection frame size")
}
