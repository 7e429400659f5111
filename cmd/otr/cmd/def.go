package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/def"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/layout"
)

var defCmd = &cobra.Command{
	Use:   "def <tech-file> <design-file>",
	Short: "Load a design on top of a technology and report tallies",
	Long: `Read a LEF technology file, then a DEF design file on top of it, and
print what was loaded: placement, pins, nets, pre-existing routes, and
obstructions.  Parse diagnostics are reported as they accumulate.

The configuration file names the power and ground nets and restricts the
usable layers and vias.

Examples:
  otr def tech.lef design.def
  otr --config route.cfg def tech.lef design.def
  otr def -v tech.lef design.def`,
	Args: cobra.ExactArgs(2),
	RunE: runDEF,
}

func init() {
	rootCmd.AddCommand(defCmd)
}

func runDEF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, _, err := loadTechnology(cfg, args[0])
	if err != nil {
		return err
	}

	db := layout.NewDatabase(true)
	rd := def.NewReader(reg, db)
	rd.Power = cfg.Power
	rd.Ground = cfg.Ground
	fatal, err := rd.ReadFile(args[1])
	if err != nil {
		return err
	}

	fmt.Printf("Die area: (%.3f %.3f) (%.3f %.3f), scale %g\n",
		db.XLower, db.YLower, db.XUpper, db.YUpper, rd.Scale)
	fmt.Printf("Gates: %d\n", len(db.Gates))

	var routes, ignored int
	for _, net := range db.Nets {
		routes += len(net.Routes)
		if net.Ignored {
			ignored++
		}
		if verbose {
			fmt.Printf("  net %-24s number %d, %d nodes, %d routes\n",
				net.Name, net.Number, net.NumNodes, len(net.Routes))
		}
	}
	fmt.Printf("Nets: %d (%d ignored, %d special), %d pre-existing routes\n",
		len(db.Nets), ignored, rd.NumSpecial, routes)
	fmt.Printf("Obstructions: %d\n", len(db.Obstructions))

	if fatal > 0 {
		return fmt.Errorf("%d fatal errors in design file", fatal)
	}
	return nil
}
