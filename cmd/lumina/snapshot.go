package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumina-dev/lumina/internal/config"
	"github.com/lumina-dev/lumina/internal/demo"
	"github.com/lumina-dev/lumina/internal/devtools"
	"github.com/lumina-dev/lumina/internal/errors"
	"github.com/lumina-dev/lumina/pkg/host"
	"github.com/lumina-dev/lumina/pkg/host/memhost"
)

func snapshotCmd(cfg *config.Config) *cobra.Command {
	var (
		steps   int
		outFile string
		nested  bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the demo bar tree and store it",
		Long: `Render the demo bar, advance it, capture the mounted trees and
either write them to a file or upload them to the bucket configured
under "snapshot" in lumina.json.

Examples:
  lumina snapshot --steps=3 --out=bar.json
  lumina snapshot --steps=3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := captureDemo(cmd.Context(), steps, nested)
			if err != nil {
				return err
			}
			if outFile != "" {
				return writeSnapshotFile(outFile, st)
			}
			if !cfg.HasSnapshots() {
				return errors.New("E201").
					WithDetail("snapshot.bucket is not set").
					WithSuggestion("Set snapshot.bucket in lumina.json or pass --out")
			}
			key, err := devtools.NewS3Uploader(cfg.Snapshot).Upload(cmd.Context(), st)
			if err != nil {
				return err
			}
			success("Uploaded s3://%s/%s", cfg.Snapshot.Bucket, key)
			return nil
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 0, "Number of state updates before capturing")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the snapshot to a file instead of uploading")
	cmd.Flags().BoolVar(&nested, "nested", false, "Include mounts created by list primitives")

	return cmd
}

// captureDemo runs the demo bar on a private in-memory host and captures
// the state after the last step.
func captureDemo(ctx context.Context, steps int, nested bool) (devtools.State, error) {
	host.Set(memhost.New())
	defer host.Set(nil)

	var st devtools.State
	err := demo.Run(ctx, demo.Options{
		Steps: steps,
		AfterStep: func(step int) {
			if step == steps {
				st = devtools.Capture(nested)
			}
		},
	})
	return st, err
}

func writeSnapshotFile(path string, st devtools.State) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(os.Stderr, "wrote %s (%d mounts)\n", path, len(st.Mounts))
	}
	return nil
}
