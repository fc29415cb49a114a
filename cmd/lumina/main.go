package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumina-dev/lumina/internal/config"
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/reconciler"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╷  ╷ ╷┌┬┐╷┌┐╷┌─┐
  │  │ ││││││││├─┤
  └─╴└─┘╵ ╵╵╵└┘╵ ╵
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string
	cfg := config.New()

	rootCmd := &cobra.Command{
		Use:   "lumina",
		Short: "Reactive widget trees for desktop shells",
		Long: `Lumina renders declarative component trees into native widget
toolkits and keeps them up to date with fine-grained signals.

This tool runs the bundled demo bar against the in-memory host,
inspects a running tree through the devtools server and uploads
widget-tree snapshots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(configDir)
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return err
			}
			*cfg = *loaded
			configure(cfg)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "Directory containing lumina.json (default: search from the working directory)")

	rootCmd.AddCommand(
		demoCmd(cfg),
		inspectCmd(cfg),
		snapshotCmd(cfg),
		versionCmd(),
	)
	return rootCmd
}

func loadConfig(dir string) (*config.Config, error) {
	if dir == "" {
		return config.LoadFromWorkingDir()
	}
	return config.Load(dir)
}

// configure applies the ambient settings of cfg to the runtime.
func configure(cfg *config.Config) {
	logger := cfg.Logger(os.Stderr)
	reactive.DebugMode = cfg.Debug
	reactive.SetLogger(logger)
	reconciler.SetLogger(logger)
	reconciler.SetTracerName(cfg.Tracing.TracerName)
}

// printBanner prints the Lumina banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
