package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-linefollow/pkg/protocol"
	"github.com/teslashibe/go-linefollow/pkg/vision"
)

var geometryJSON bool

var geometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Print the detection rows for the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := vision.NewPipeline(cfg.Vision)
		if err != nil {
			return err
		}
		g := protocol.NewGeometryData(pipeline.Config(), pipeline.ROI())

		out := cmd.OutOrStdout()
		if geometryJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		}

		fmt.Fprintf(out, "frame %dx%d, band [%d, %d), %d rows every %d px\n",
			g.Width, g.Height, g.YStart, g.YEnd, g.Rows, g.Spacing)
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ROW\tY0\tY1")
		for _, s := range g.Strips {
			fmt.Fprintf(w, "%d\t%d\t%d\n", s.Index, s.Y0, s.Y1)
		}
		return w.Flush()
	},
}

func init() {
	geometryCmd.Flags().BoolVar(&geometryJSON, "json", false, "print JSON")
	rootCmd.AddCommand(geometryCmd)
}
