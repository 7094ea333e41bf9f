package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-linefollow/pkg/protocol"
)

const telemetryPath = "/ws/telemetry"

var monitorCmd = &cobra.Command{
	Use:   "monitor <url>",
	Short: "Print live cycles from a running controller's telemetry stream",
	Example: `  linefollow monitor ws://robot.local:8090
  linefollow monitor http://robot.local:8090/ws/telemetry`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := telemetryURL(args[0])
		if err != nil {
			return err
		}
		return monitor(cmd.Context(), u, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// telemetryURL turns a host URL into the websocket stream URL.
func telemetryURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "ws://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = telemetryPath
	}
	return u.String(), nil
}

func monitor(ctx context.Context, u string, out io.Writer) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", u, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read telemetry: %w", err)
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			fmt.Fprintf(out, "? %s\n", data)
			continue
		}
		printMessage(out, msg)
	}
}

func printMessage(out io.Writer, msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeHello, protocol.TypeStatus:
		var st protocol.StatusData
		if err := msg.ParseData(&st); err != nil {
			return
		}
		fmt.Fprintf(out, "session %s: %d cycles, %d stops, last %q\n",
			st.SessionID, st.Cycles, st.Stops, st.LastMessage)

	case protocol.TypeCycle:
		var c protocol.CycleData
		if err := msg.ParseData(&c); err != nil {
			return
		}
		fmt.Fprintf(out, "%6d  %-6s rows %d/%d  %6.2fms\n",
			c.Seq, c.Message, c.Detected, len(c.Rows), c.LatencyMS)
	}
}
