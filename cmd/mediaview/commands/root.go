// Package commands implements the CLI commands for the mediaview tool.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/mediaview"
	"github.com/gogpu/mediaview/colorspace"
	"github.com/gogpu/mediaview/hdrout"
	"github.com/gogpu/mediaview/pipeline"
	"github.com/gogpu/mediaview/tonemap"
)

// pipelineFlags are the flags shared by apply and probe: they describe a
// full pipeline configuration on the command line.
type pipelineFlags struct {
	preset    string
	lutPaths  map[string]*string
	intensity float32
	tonemapOp string
	ocioIn    string
	ocioOut   string
	hdr       string
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "mediaview",
		Short:         "Apply and inspect the viewer's color pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				mediaview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline activity to stderr")

	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newLUTCmd())
	rootCmd.AddCommand(newProbeCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// registerPipelineFlags attaches the shared pipeline flags to cmd.
func registerPipelineFlags(cmd *cobra.Command) *pipelineFlags {
	f := &pipelineFlags{lutPaths: make(map[string]*string)}
	for _, id := range pipeline.StageIDs {
		f.lutPaths[id.String()] = cmd.Flags().String(id.String(), "",
			fmt.Sprintf("Load a .cube LUT into the %s stage", id))
	}
	cmd.Flags().StringVar(&f.preset, "preset", "", "Apply a pipeline preset (YAML) before other flags")
	cmd.Flags().Float32Var(&f.intensity, "intensity", 1, "Blend weight for loaded LUT stages, 0..1")
	cmd.Flags().StringVar(&f.tonemapOp, "tonemap", "off", "Tone mapping operator: off|reinhard|filmic|aces")
	cmd.Flags().StringVar(&f.ocioIn, "input-space", "", "Input color space (enables the color transform)")
	cmd.Flags().StringVar(&f.ocioOut, "display-space", colorspace.SpaceSRGB, "Display color space")
	cmd.Flags().StringVar(&f.hdr, "hdr", "sdr", "Output encoding: sdr|hlg|pq")
	return f
}

// buildState configures a pipeline state from the parsed flags. LUT loads
// happen synchronously here; the CLI has no render loop to overlap with.
func (f *pipelineFlags) buildState() (*pipeline.State, error) {
	s := pipeline.NewState()

	if f.preset != "" {
		q, err := pipeline.LoadPreset(f.preset)
		if err != nil {
			return nil, err
		}
		if err := pipeline.ApplyPreset(s, q); err != nil {
			return nil, err
		}
	}

	for name, path := range f.lutPaths {
		if *path == "" {
			continue
		}
		id, err := pipeline.ParseStageID(name)
		if err != nil {
			return nil, err
		}
		tab, err := loadCube(*path)
		if err != nil {
			return nil, err
		}
		s.SetStageLUT(id, tab, *path)
		s.SetStageIntensity(id, f.intensity)
	}

	op, err := tonemap.ParseOperator(f.tonemapOp)
	if err != nil {
		return nil, err
	}
	if op != tonemap.Off {
		s.SetToneMapOperator(op)
	}

	if f.ocioIn != "" {
		err := s.SetColorConfig(colorspace.Config{
			Enabled: true,
			Input:   f.ocioIn,
			Working: colorspace.DefaultWorking,
			Display: f.ocioOut,
		})
		if err != nil {
			return nil, err
		}
	}

	mode, err := hdrout.ParseMode(f.hdr)
	if err != nil {
		return nil, err
	}
	s.SetHDRMode(mode)
	return s, nil
}
