package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/benoitkugler/svgmerge/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	appConfig *config.Config
	logger    *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "svgmerge",
	Short: "Compose SVG documents into a single SVG file",
	Long: "svgmerge places SVG documents on a canvas and exports the composition\n" +
		"as one standalone SVG, each document embedded in its own nested viewport.",
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $"+config.EnvPath+" or the user config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(dimsCmd)
	rootCmd.AddCommand(sanitizeCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp loads the configuration and sets up logging.
func initializeApp(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	appConfig = cfg
	logger = newLogger(cmd.ErrOrStderr(), level, cmd.Name() == "serve")
	slog.SetDefault(logger)
	return nil
}

// newLogger returns a text logger for interactive use, or a JSON one for the server.
func newLogger(w io.Writer, level slog.Level, structured bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if structured {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// writeOutput writes `content` to `path`, or to the command output if `path` is empty.
func writeOutput(cmd *cobra.Command, path string, content []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(content)
		return err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("file written", "path", path, "bytes", len(content))
	return nil
}
