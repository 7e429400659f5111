package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var viasCmd = &cobra.Command{
	Use:   "vias <tech-file>",
	Short: "Show the selected via per orientation for each base layer",
	Long: `Read a LEF technology file and print the via orientation table: for
each base route layer, the via chosen for each combination of horizontal
and vertical wires entering it from below and above.

The allow-list in the configuration file restricts which vias may be
chosen.

Examples:
  otr vias tech.lef
  otr --config route.cfg vias tech.lef`,
	Args: cobra.ExactArgs(1),
	RunE: runVias,
}

func init() {
	rootCmd.AddCommand(viasCmd)
}

func runVias(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, _, err := loadTechnology(cfg, args[0])
	if err != nil {
		return err
	}

	for i := 0; i < reg.NumLayers()-1; i++ {
		slots := reg.Vias[i]
		if slots == nil {
			fmt.Printf("layer %d: no via to layer %d\n", i, i+1)
			continue
		}
		base := ""
		if l := reg.FindLayerByIndex(i); l != nil {
			base = l.Name
		}
		fmt.Printf("layer %d (%s):\n", i, base)
		fmt.Printf("  XX %-20s XY %-20s\n", slots.XX, slots.XY)
		fmt.Printf("  YX %-20s YY %-20s\n", slots.YX, slots.YY)
	}
	return nil
}
