package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-linefollow/internal/config"
	"github.com/teslashibe/go-linefollow/internal/log"
	"github.com/teslashibe/go-linefollow/pkg/camera"
	"github.com/teslashibe/go-linefollow/pkg/follower"
	"github.com/teslashibe/go-linefollow/pkg/frame"
	"github.com/teslashibe/go-linefollow/pkg/overlay"
	"github.com/teslashibe/go-linefollow/pkg/protocol"
	"github.com/teslashibe/go-linefollow/pkg/telemetry"
	"github.com/teslashibe/go-linefollow/pkg/transport"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

var runFlags struct {
	port           string
	device         string
	source         string
	files          []string
	display        bool
	telemetry      bool
	telemetryAddr  string
	dryRun         bool
	maxFrameErrors int
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Follow the line until interrupted",
	Long: `Captures frames, locates the line in each detection row, and sends
E<offset> or S to the motor controller once per frame.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyRunFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runFollower(cmd.Context(), cfg)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.port, "port", "p", "", "serial device (default from config)")
	f.StringVar(&runFlags.device, "camera", "", "camera index or device path (default from config)")
	f.StringVar(&runFlags.source, "source", "", "frame source: camera, files or synthetic")
	f.StringSliceVar(&runFlags.files, "file", nil, "image files for the files source (repeatable)")
	f.BoolVar(&runFlags.display, "display", false, "show the debug overlay window")
	f.BoolVar(&runFlags.telemetry, "telemetry", false, "serve telemetry over HTTP and websocket")
	f.StringVar(&runFlags.telemetryAddr, "telemetry-addr", "", "telemetry listen address")
	f.BoolVar(&runFlags.dryRun, "dry-run", false, "print control messages to stdout instead of the serial port")
	f.IntVar(&runFlags.maxFrameErrors, "max-frame-errors", 0, "consecutive capture failures tolerated")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags lets explicit flags win over file and environment settings.
func applyRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Serial.Port = runFlags.port
	}
	if f.Changed("camera") {
		cfg.Camera.Device = runFlags.device
	}
	if f.Changed("source") {
		cfg.Source.Kind = runFlags.source
	}
	if f.Changed("file") {
		cfg.Source.Files = runFlags.files
		if !f.Changed("source") {
			cfg.Source.Kind = config.SourceFiles
		}
	}
	if f.Changed("display") {
		cfg.Display.Enabled = runFlags.display
	}
	if f.Changed("telemetry") {
		cfg.Telemetry.Enabled = runFlags.telemetry
	}
	if f.Changed("telemetry-addr") {
		cfg.Telemetry.Addr = runFlags.telemetryAddr
	}
	if f.Changed("dry-run") {
		cfg.DryRun = runFlags.dryRun
	}
	if f.Changed("max-frame-errors") {
		cfg.Follower.MaxFrameErrors = runFlags.maxFrameErrors
	}
}

// Replaced in tests.
var (
	newSource    = openSource
	newTransport = openTransport
)

func runFollower(ctx context.Context, cfg config.Config) (err error) {
	logger := log.Component("linefollow")

	pipeline, err := vision.NewPipeline(cfg.Vision)
	if err != nil {
		return err
	}
	roi := pipeline.ROI()
	logger.Info("detection geometry",
		"width", cfg.Vision.Width,
		"height", cfg.Vision.Height,
		"y_start", roi.YStart,
		"y_end", roi.YEnd,
		"rows", roi.Rows,
		"spacing", roi.Spacing,
	)

	src, err := newSource(cfg, logger)
	if err != nil {
		return err
	}

	tx, err := newTransport(ctx, cfg, logger)
	if err != nil {
		return errors.Join(err, src.Close())
	}

	opts := []follower.Option{follower.WithLogger(log.Component("follower"))}

	var srv *telemetry.Server
	if cfg.Telemetry.Enabled {
		srv, err = telemetry.New(cfg.Telemetry, protocol.NewGeometryData(cfg.Vision, roi), log.Component("telemetry"))
		if err != nil {
			return errors.Join(err, tx.Close(), src.Close())
		}
		opts = append(opts, follower.WithPublisher(srv))
	}

	var win *overlay.Window
	if cfg.Display.Enabled {
		win, err = overlay.NewWindow(cfg.Display, roi, log.Component("overlay"))
		if err != nil {
			logger.Warn("debug display unavailable", "error", err)
			win = nil
		} else {
			opts = append(opts, follower.WithDisplay(win))
		}
	}

	f, err := follower.New(cfg.Follower, pipeline, src, tx, opts...)
	if err != nil {
		errs := []error{err, tx.Close()}
		if win != nil {
			errs = append(errs, win.Close())
		}
		return errors.Join(append(errs, src.Close())...)
	}
	// From here the follower owns the source, transport and window.
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if srv != nil {
		telemetryCtx, stopTelemetry := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := srv.ListenAndServe(telemetryCtx); err != nil {
				logger.Error("telemetry server stopped", "error", err)
			}
		}()
		defer func() {
			stopTelemetry()
			<-done
		}()
	}

	defer func() {
		st := f.Stats()
		logger.Info("follower finished",
			"cycles", st.Cycles,
			"stops", st.Stops,
			"frame_errors", st.FrameErrors,
		)
	}()

	return f.Run(ctx)
}

func openSource(cfg config.Config, logger *slog.Logger) (frame.Source, error) {
	w, h := cfg.Vision.Width, cfg.Vision.Height

	var src frame.Source
	switch cfg.Source.Kind {
	case config.SourceCamera:
		c, err := camera.Open(cfg.Camera, log.Component("camera"))
		if err != nil {
			return nil, err
		}
		src = c
	case config.SourceFiles:
		src = frame.NewFiles(cfg.Source.Files, cfg.Source.Loop)
	case config.SourceSynthetic:
		bar := frame.Bar{X: cfg.Source.BarX - cfg.Source.BarWidth/2, Width: cfg.Source.BarWidth}
		src = frame.NewSynthetic(w, h, []frame.Bar{bar}, frame.WithDrift(cfg.Source.Drift))
	default:
		return nil, fmt.Errorf("unknown frame source %q", cfg.Source.Kind)
	}

	logger.Info("frame source ready", "kind", cfg.Source.Kind)
	return frame.NewNormalize(src, w, h), nil
}

func openTransport(ctx context.Context, cfg config.Config, logger *slog.Logger) (transport.Transport, error) {
	if cfg.DryRun {
		logger.Info("dry run: control messages go to stdout")
		return transport.NewWriter(os.Stdout), nil
	}
	s, err := transport.OpenSerial(ctx, cfg.Serial, log.Component("transport"))
	if err != nil {
		return nil, err
	}
	return s, nil
}
