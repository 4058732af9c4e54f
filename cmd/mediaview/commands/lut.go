package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/mediaview"
)

func newLUTCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lut",
		Short: "Inspect .cube look-up tables",
	}
	cmd.AddCommand(newLUTInfoCmd())
	return cmd
}

func newLUTInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.cube>",
		Short: "Print LUT metadata and reference samples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := loadCube(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if tab.Title() != "" {
				fmt.Fprintf(out, "title:   %s\n", tab.Title())
			}
			fmt.Fprintf(out, "size:    %d (%d samples)\n", tab.Size(), tab.Size()*tab.Size()*tab.Size())
			min, max := tab.Domain()
			fmt.Fprintf(out, "domain:  [%g %g %g] .. [%g %g %g]\n",
				min[0], min[1], min[2], max[0], max[1], max[2])

			for _, probe := range []struct {
				name string
				in   mediaview.RGB
			}{
				{"black", mediaview.RGB{}},
				{"mid grey", mediaview.RGB{R: 0.18, G: 0.18, B: 0.18}},
				{"white", mediaview.RGB{R: 1, G: 1, B: 1}},
			} {
				got := tab.SampleRGB(probe.in)
				fmt.Fprintf(out, "%-9s %.4f %.4f %.4f -> %.4f %.4f %.4f\n",
					probe.name, probe.in.R, probe.in.G, probe.in.B, got.R, got.G, got.B)
			}
			return nil
		},
	}
}
