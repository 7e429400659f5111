package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

var showMacros bool

var lefCmd = &cobra.Command{
	Use:   "lef <tech-file>",
	Short: "Read a technology file and summarize its layers and vias",
	Long: `Read a LEF technology file and print the route layer stack, the
defined vias, and optionally the cell macro catalog.

Examples:
  otr lef tech.lef
  otr lef --macros tech.lef
  otr --config route.cfg lef tech.lef`,
	Args: cobra.ExactArgs(1),
	RunE: runLEF,
}

func init() {
	rootCmd.AddCommand(lefCmd)
	lefCmd.Flags().BoolVarP(&showMacros, "macros", "m", false,
		"list cell macros and their pins")
}

func dirName(d tech.Direction) string {
	switch d {
	case tech.DirHorizontal:
		return "horizontal"
	case tech.DirVertical:
		return "vertical"
	}
	return "unknown"
}

func runLEF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, precision, err := loadTechnology(cfg, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Route layers: %d (output precision %d)\n", reg.NumLayers(), precision)
	for i := 0; i < reg.NumLayers(); i++ {
		l := reg.FindLayerByIndex(i)
		if l == nil || l.Class != tech.ClassRoute {
			continue
		}
		fmt.Printf("  %-12s width %.3f  pitch %.3f  spacing %.3f  %s\n",
			l.Name, l.Route.Width, reg.RoutePitch(i), reg.RouteSpacing(i),
			dirName(l.Route.Dir))
	}

	var vias, generated int
	for _, rec := range reg.Records() {
		if rec.Class != tech.ClassVia {
			continue
		}
		if rec.Via.Generated {
			generated++
		} else {
			vias++
		}
		if verbose {
			fmt.Printf("  via %-16s cut layer %d, %d enclosure rects\n",
				rec.Name, rec.Via.Area.Layer, len(rec.Via.LR))
		}
	}
	fmt.Printf("Vias: %d defined, %d generated\n", vias, generated)

	if showMacros {
		for _, m := range reg.Macros() {
			fmt.Printf("  macro %-16s %.3f x %.3f, %d pins\n",
				m.Name, m.Width, m.Height, len(m.Pins))
			if verbose {
				for i := range m.Pins {
					fmt.Printf("    pin %-12s %d taps\n",
						m.Pins[i].Name, len(m.Pins[i].Taps))
				}
			}
		}
	}
	return nil
}
