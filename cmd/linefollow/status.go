package main

import (
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-linefollow/internal/httpc"
	"github.com/teslashibe/go-linefollow/pkg/protocol"
)

var statusCmd = &cobra.Command{
	Use:   "status <url>",
	Short: "Print the status of a running controller",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := apiBase(args[0])
		if err != nil {
			return err
		}

		var st protocol.StatusData
		if err := httpc.GetJSON(cmd.Context(), nil, base+"/api/status", &st); err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "session\t%s\n", st.SessionID)
		fmt.Fprintf(w, "started\t%s\n", st.StartedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "cycles\t%d\n", st.Cycles)
		fmt.Fprintf(w, "stops\t%d\n", st.Stops)
		fmt.Fprintf(w, "frame errors\t%d\n", st.FrameErrors)
		fmt.Fprintf(w, "last message\t%s\n", st.LastMessage)
		fmt.Fprintf(w, "offset mean\t%.1f (sd %.1f over %d)\n", st.Stats.Mean, st.Stats.StdDev, st.Stats.Window)
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// apiBase normalises a host or URL to an http(s) base without a trailing slash.
func apiBase(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	u.Path = ""
	return strings.TrimSuffix(u.String(), "/"), nil
}
