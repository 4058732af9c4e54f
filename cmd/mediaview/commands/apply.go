package commands

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/image/tiff"

	"github.com/gogpu/mediaview"
	"github.com/gogpu/mediaview/lut"
)

func newApplyCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "apply <image>",
		Short: "Run an image through the color pipeline",
		Long: `Decodes an image, runs it through the configured pipeline and writes
the result. The output format follows the extension: .png (8-bit) or
.tif/.tiff (16-bit).`,
		Args: cobra.ExactArgs(1),
		RunE: nil,
	}
	flags := registerPipelineFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: <input>_graded.png)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		frame, err := decodeImage(args[0])
		if err != nil {
			return err
		}
		state, err := flags.buildState()
		if err != nil {
			return err
		}

		snap := state.Snapshot()
		out := snap.ApplyFrame(frame)
		for y := 0; y < out.Height(); y++ {
			for x := 0; x < out.Width(); x++ {
				out.Set(x, y, snap.EncodeOutput(out.At(x, y)))
			}
		}

		if output == "" {
			ext := filepath.Ext(args[0])
			output = strings.TrimSuffix(args[0], ext) + "_graded.png"
		}
		if err := writeFrame(output, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", output, out.Width(), out.Height())
		return nil
	}
	return cmd
}

// decodeImage loads a PNG/JPEG/TIFF file into a Frame.
func decodeImage(path string) (*mediaview.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return mediaview.FrameFromImage(img), nil
}

// writeFrame encodes by extension: 16-bit TIFF for .tif/.tiff, 8-bit PNG
// otherwise.
func writeFrame(path string, frame *mediaview.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return tiff.Encode(f, frame.ToRGBA64(), &tiff.Options{Compression: tiff.Deflate})
	default:
		return frame.EncodePNG(f)
	}
}

// loadCube parses a .cube file for the CLI's synchronous path.
func loadCube(path string) (*lut.Table, error) {
	tab, err := lut.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return tab, nil
}
