package demo

import (
	"context"
	"time"

	"github.com/lumina-dev/lumina/pkg/control"
	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/reconciler"
)

// Options configures Run.
type Options struct {
	// Provider lists the monitors that get a bar. When nil, the registered
	// provider is used, and without one a provider is built from Monitors.
	Provider control.MonitorProvider

	// Monitors names the monitors of the fallback provider. Default: a
	// single unnamed monitor.
	Monitors []string

	// Steps is the number of state updates. Zero only mounts.
	Steps int

	// Interval is the delay between updates.
	Interval time.Duration

	// AfterStep is called after the initial mount (step 0) and after every
	// update, on the calling goroutine.
	AfterStep func(step int)
}

// Run mounts the bars on the current host, advances them opts.Steps times
// and unmounts them.
func Run(ctx context.Context, opts Options) error {
	provider, registered := monitorProvider(opts)
	if !registered {
		prev := control.CurrentMonitorProvider()
		control.SetMonitorProvider(provider)
		defer control.SetMonitorProvider(prev)
	}

	st, set, dispose := NewState()
	defer dispose()

	var mounts []*reconciler.Mount
	defer func() {
		for _, m := range mounts {
			m.Dispose()
		}
	}()
	for _, mon := range provider.Monitors() {
		m, err := reconciler.Render(Bar(mon.Name, st, set))
		if err != nil {
			return err
		}
		mounts = append(mounts, m)
	}
	reactive.Tick()
	if opts.AfterStep != nil {
		opts.AfterStep(0)
	}

	for step := 1; step <= opts.Steps; step++ {
		if opts.Interval > 0 {
			timer := time.NewTimer(opts.Interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		Advance(set, step)
		reactive.Tick()
		if opts.AfterStep != nil {
			opts.AfterStep(step)
		}
	}
	return nil
}

// monitorProvider picks the provider for Run and reports whether it is
// already registered.
func monitorProvider(opts Options) (control.MonitorProvider, bool) {
	if opts.Provider != nil {
		return opts.Provider, false
	}
	if p := control.CurrentMonitorProvider(); p != nil {
		return p, true
	}
	names := opts.Monitors
	if len(names) == 0 {
		names = []string{""}
	}
	mons := make([]control.MonitorInfo, len(names))
	for i, name := range names {
		mons[i] = control.MonitorInfo{
			Index:   i,
			Name:    name,
			X:       i * 1920,
			Width:   1920,
			Height:  1080,
			Scale:   1,
			Primary: i == 0,
		}
	}
	return control.NewMonitorList(mons...), false
}
