package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-linefollow/pkg/frame"
	"github.com/teslashibe/go-linefollow/pkg/protocol"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

var detectJSON bool

var detectCmd = &cobra.Command{
	Use:   "detect <image>...",
	Short: "Run detection on image files and print the control message for each",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := vision.NewPipeline(cfg.Vision)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		enc := json.NewEncoder(out)
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		if !detectJSON {
			fmt.Fprintln(w, "IMAGE\tMESSAGE\tROWS\tCENTROIDS")
		}

		for i, path := range args {
			img, err := frame.Load(path)
			if err != nil {
				return err
			}
			img, _ = frame.Fit(img, cfg.Vision.Width, cfg.Vision.Height)

			res := pipeline.Process(img)
			msg := protocol.FromOffset(res.Offset)

			if detectJSON {
				report := struct {
					Image string             `json:"image"`
					Cycle protocol.CycleData `json:"cycle"`
				}{path, protocol.NewCycleData(uint64(i+1), res, msg, 0)}
				if err := enc.Encode(report); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n", path, msg, res.Offset.Detected, len(res.Rows), centroids(res.Rows))
		}
		return w.Flush()
	},
}

// centroids lists each row's x, or "-" for rows without a line.
func centroids(rows []vision.RowResult) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = "-"
		if r.Found {
			parts[i] = fmt.Sprint(r.X)
		}
	}
	return strings.Join(parts, " ")
}

func init() {
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "print one JSON report per image")
	rootCmd.AddCommand(detectCmd)
}
