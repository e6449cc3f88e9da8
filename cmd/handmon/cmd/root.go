package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/simtools/handmon/internal/config"
	"github.com/simtools/handmon/internal/logger"
	"github.com/simtools/handmon/internal/service/monitor"
	"github.com/simtools/handmon/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// portName stores an optional serial port override.
	portName string
	// outputFile stores an optional state file override.
	outputFile string
	// logLevel stores the textual logging level.
	logLevel string
	// dryRun disables the actuator for debugging.
	dryRun bool

	// rootCmd represents the base command running the monitor loop.
	rootCmd = &cobra.Command{
		Use:   "handmon [port]",
		Short: "Monitor player handedness and drive the alignment actuator.",
		Long: `Background service that watches the simulator's handedness indicator and
keeps downstream consumers in sync with the confirmed value.

Polls an external recognizer at a fixed interval, debounces its noisy
readings with a confirmation threshold, writes each confirmed change to a
text file, and relays it as a command to the actuator board over serial.
The serial link reconnects and retries on its own; transient I/O trouble
never stops the monitor.

The serial port can be provided as argument, set in the configuration
file, or auto-discovered by USB description.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Use port argument if provided, otherwise rely on flag/config.
			port := portName
			if len(args) > 0 {
				port = args[0]
			}

			monitorOptions := &monitor.Options{
				ConfigPath: configPath,
				Port:       port,
				OutputFile: outputFile,
				DryRun:     dryRun,
			}

			return monitor.Run(ctx, monitorOptions)
		},
	}
)

// Execute runs the handmon CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&portName, "port", "p", "", "serial port of the actuator (empty = auto-discover)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "state file path override")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "logging level (debug, info, warn, error)")

	// Hidden debug flag to run without the actuator.
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "run without the actuator for debugging")

	err := rootCmd.Flags().MarkHidden("dry-run")
	if err != nil {
		panic(err)
	}
}
