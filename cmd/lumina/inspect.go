package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/lumina-dev/lumina/internal/config"
	"github.com/lumina-dev/lumina/internal/devtools"
	"github.com/lumina-dev/lumina/internal/errors"
	"github.com/lumina-dev/lumina/pkg/reconciler"
)

func inspectCmd(cfg *config.Config) *cobra.Command {
	var (
		url    string
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the mounted trees of a running app",
		Long: `Print the mounted fiber trees of a running app through its
devtools server. With --follow every published state is printed until
interrupted.

Examples:
  lumina inspect
  lumina inspect --url=http://localhost:9229 --follow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = cfg.DevtoolsURL()
			}
			out := cmd.OutOrStdout()
			if follow {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return followTree(ctx, url, out)
			}
			return printTree(cmd.Context(), url, out)
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "Inspector base URL (default from lumina.json)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream updates over the websocket")

	return cmd
}

func printTree(ctx context.Context, url string, out io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(url, "/")+"/tree", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.New("E203").WithSubject(url).Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("E203").WithSubject(url).WithDetail("unexpected status " + resp.Status)
	}

	var tree struct {
		Seq    uint64                `json:"seq"`
		Mounts []devtools.MountState `json:"mounts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tree); err != nil {
		return errors.New("E203").WithSubject(url).Wrap(err)
	}
	writeState(out, devtools.State{Seq: tree.Seq, Mounts: tree.Mounts})
	return nil
}

func followTree(ctx context.Context, url string, out io.Writer) error {
	wsURL := "ws" + strings.TrimPrefix(strings.TrimSuffix(url, "/"), "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return errors.New("E203").WithSubject(wsURL).Wrap(err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var st devtools.State
		if err := conn.ReadJSON(&st); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.New("E203").WithSubject(wsURL).Wrap(err)
		}
		writeState(out, st)
	}
}

// writeState prints every mount of st as an indented outline.
func writeState(out io.Writer, st devtools.State) {
	fmt.Fprintf(out, "── seq %d, %d mounts\n", st.Seq, len(st.Mounts))
	for _, m := range st.Mounts {
		fmt.Fprintf(out, "mount %d\n", m.ID)
		writeSnapshot(out, m.Tree, 1)
	}
}

func writeSnapshot(out io.Writer, s *reconciler.Snapshot, depth int) {
	if s == nil {
		return
	}
	line := s.Kind
	switch {
	case s.Text != "":
		line += fmt.Sprintf(" %q", s.Text)
	case s.Tag != "":
		line += " " + s.Tag
	}
	if s.Key != "" {
		line += " key=" + s.Key
	}
	fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), line)
	for _, c := range s.Children {
		writeSnapshot(out, c, depth+1)
	}
}
