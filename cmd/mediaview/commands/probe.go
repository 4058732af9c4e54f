package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <image> <x> <y>",
		Short: "Sample one pixel before and after the pipeline",
		Args:  cobra.ExactArgs(3),
		RunE:  nil,
	}
	flags := registerPipelineFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		x, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid x %q", args[1])
		}
		y, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid y %q", args[2])
		}

		frame, err := decodeImage(args[0])
		if err != nil {
			return err
		}
		if x < 0 || y < 0 || x >= frame.Width() || y >= frame.Height() {
			return fmt.Errorf("pixel (%d,%d) outside %dx%d image", x, y, frame.Width(), frame.Height())
		}

		state, err := flags.buildState()
		if err != nil {
			return err
		}
		snap := state.Snapshot()

		src := frame.At(x, y)
		dst := snap.EncodeOutput(snap.Apply(src))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pixel (%d,%d)\n", x, y)
		fmt.Fprintf(out, "source:  %.6f %.6f %.6f\n", src.R, src.G, src.B)
		fmt.Fprintf(out, "display: %.6f %.6f %.6f\n", dst.R, dst.G, dst.B)
		return nil
	}
	return cmd
}
