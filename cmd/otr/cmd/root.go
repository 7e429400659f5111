package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/lef"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/routecfg"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/tech"
)

var (
	// Global flags
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "otr",
	Short: "OpenTraceRoute - LEF/DEF physical design readers",
	Long: `OpenTraceRoute (otr) reads the physical design data the router works from:
  - LEF technology files (route layers, vias, cell macros)
  - DEF design files (placement, pins, nets, pre-existing routes)
  - Router configuration files (special nets, layer limit, via allow-list)

Examples:
  otr lef tech.lef                           # Summarize layers and vias
  otr def tech.lef design.def                # Load a design and report tallies
  otr vias tech.lef                          # Show via orientation slots
  otr --config route.cfg def tech.lef design.def`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"router configuration file")
}

// loadConfig reads the --config file, or returns an empty configuration
// when the flag is unset.
func loadConfig() (*routecfg.Config, error) {
	if configPath == "" {
		return &routecfg.Config{}, nil
	}
	return routecfg.ParseFile(configPath)
}

// loadTechnology applies the configuration and reads one technology
// file into a fresh registry.  Returns the registry and the output
// precision.
func loadTechnology(cfg *routecfg.Config, path string) (*tech.Registry, int, error) {
	reg := tech.NewRegistry()
	if cfg.MaxLayers > 0 {
		reg.LayerLimit = cfg.MaxLayers
	}
	rd := lef.NewReader(reg)
	rd.AllowedVias = cfg.AllowedVias
	precision, err := rd.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	return reg, precision, nil
}
