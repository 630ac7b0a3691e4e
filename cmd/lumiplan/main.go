package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "lumiplan",
		Short:        "Street lighting plans: light placement, panels, phases and wiring",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(importRoadsCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(replanCmd())
	rootCmd.AddCommand(voltageCmd())
	rootCmd.AddCommand(summaryCmd())
	return rootCmd
}

func importRoadsCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import-roads",
		Short: "Clip Overpass ways to a boundary and write a road cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImportRoads(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.overpassFile, "overpass", "", "Overpass JSON file (out geom)")
	cmd.Flags().BoolVar(&opts.fetch, "fetch", false, "Query the Overpass API instead of reading a file")
	cmd.Flags().StringVar(&opts.overpassURL, "overpass-url", "", "Overpass interpreter URL used with --fetch")
	cmd.Flags().StringVar(&opts.boundary, "boundary", "", "Boundary file (JSON coordinates or GeoJSON polygon)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "roads.gob", "Output road file (.gob or .json)")
	cmd.MarkFlagRequired("boundary")
	return cmd
}

func planCmd() *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Place lights and panels along roads and write a project file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.roads, "roads", "", "Road file (.gob or .json)")
	cmd.Flags().IntVarP(&opts.panels, "panels", "k", 0, "Number of panels, 0 for the recommended count")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "project.json", "Output project file")
	cmd.Flags().StringVar(&opts.config, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.boundary, "boundary", "", "Boundary file stored with the project")
	cmd.MarkFlagRequired("roads")
	return cmd
}

func replanCmd() *cobra.Command {
	var opts replanOptions

	cmd := &cobra.Command{
		Use:   "replan [project.json]",
		Short: "Move panels and recompute phases and wiring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.project = args[0]
			return runReplan(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.moves, "move", nil, "Panel move as id:lat,lng (repeatable)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output project file (default: overwrite input)")
	return cmd
}

func voltageCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "voltage [project.json]",
		Short: "Print the voltage drop per panel and phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVoltage(cmd, args[0], configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration used when the project has no cable set")
	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [project.json]",
		Short: "Print light counts and loads per panel and phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, args[0])
		},
	}
}
