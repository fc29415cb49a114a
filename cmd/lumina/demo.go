package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumina-dev/lumina/internal/config"
	"github.com/lumina-dev/lumina/internal/demo"
	"github.com/lumina-dev/lumina/internal/devtools"
	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/host/memhost"
	"github.com/lumina-dev/lumina/pkg/metrics"
)

type demoOptions struct {
	steps    int
	interval time.Duration
	monitors []string
	devtools bool
	dump     bool
	hold     bool
}

func demoCmd(cfg *config.Config) *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the demo bar against the in-memory host",
		Long: `Run the demo status bar against the in-memory host.

The bar is advanced once per interval. With --dump the widget tree of
every window is printed after each step. With --devtools the inspector
server is started on the address from lumina.json.

Examples:
  lumina demo --steps=5 --dump
  lumina demo --devtools --hold --monitor=DP-1 --monitor=HDMI-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDemo(ctx, cfg, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&opts.steps, "steps", "n", 10, "Number of state updates")
	cmd.Flags().DurationVarP(&opts.interval, "interval", "i", time.Second, "Delay between updates")
	cmd.Flags().StringSliceVarP(&opts.monitors, "monitor", "m", nil, "Monitor to place a bar on (repeatable)")
	cmd.Flags().BoolVar(&opts.devtools, "devtools", false, "Serve the inspector (default from lumina.json)")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "Print the widget tree after every step")
	cmd.Flags().BoolVar(&opts.hold, "hold", false, "Keep the bar mounted after the last step until interrupted")

	return cmd
}

func runDemo(ctx context.Context, cfg *config.Config, opts demoOptions, out io.Writer) error {
	h := memhost.New()
	var installed host.Host = h

	if cfg.Metrics.Enabled {
		metrics.Install(metrics.WithNamespace(cfg.Metrics.Namespace))
		defer metrics.Uninstall()
	}

	var srv *devtools.Server
	if opts.devtools || cfg.Devtools.Enabled {
		srvOpts := devtools.Options{Addr: cfg.DevtoolsAddress()}
		if cfg.HasSnapshots() {
			srvOpts.Uploader = devtools.NewS3Uploader(cfg.Snapshot)
		}
		srv = devtools.New(srvOpts)
		installed = srv.Track(h)

		go func() {
			if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "devtools: %v\n", err)
			}
		}()
		printBanner()
		info("Inspector: %s", cfg.DevtoolsURL())
	}

	host.Set(installed)
	defer host.Set(nil)

	err := demo.Run(ctx, demo.Options{
		Monitors: opts.monitors,
		Steps:    opts.steps,
		Interval: opts.interval,
		AfterStep: func(step int) {
			if opts.dump {
				fmt.Fprintf(out, "── step %d\n", step)
				for _, w := range h.Windows() {
					if !w.Destroyed {
						fmt.Fprint(out, memhost.Dump(w))
					}
				}
			}
			if srv != nil {
				srv.Refresh()
			}
			if step == opts.steps && opts.hold {
				<-ctx.Done()
			}
		},
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
