// mediaview is the command line companion of the viewer pipeline: it
// applies the color pipeline to still images, inspects .cube LUTs and
// probes pixels, using exactly the code path the viewer renders with.
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/mediaview/cmd/mediaview/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
