package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/meikuraledutech/taskflow"
	"github.com/meikuraledutech/taskflow/config"
	"github.com/meikuraledutech/taskflow/taskfile"
)

var (
	taskFile   string
	configPath string
	asJSON     bool
)

var rootCmd = &cobra.Command{
	Use:   "taskflowctl",
	Short: "Inspect deployment workflow task files",
	Long: `taskflowctl reads a deployment workflow from a YAML or JSON task file
and validates it, prints the level of every task, or computes the
layout the graph editor would show.`,
	SilenceUsage: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check ids, dependencies and acyclicity",
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := taskfile.Load(taskFile)
		if err != nil {
			return err
		}
		if err := taskflow.Validate(tasks); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d tasks\n", len(tasks))
		return nil
	},
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print tasks grouped by level",
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := taskfile.Load(taskFile)
		if err != nil {
			return err
		}
		levels := taskflow.Levels(tasks)
		if asJSON {
			return writeJSON(cmd, levels)
		}

		ranks := taskflow.Ranks(tasks, levels)
		keys := make([]int, 0, len(ranks))
		for lvl := range ranks {
			keys = append(keys, lvl)
		}
		slices.Sort(keys)
		for _, lvl := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%d: %v\n", lvl, ranks[lvl])
		}
		return nil
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Compute node positions and edge styles",
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := taskfile.Load(taskFile)
		if err != nil {
			return err
		}
		opts := taskflow.DefaultLayoutOptions()
		if configPath != "" {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			opts = cfg.Layout
		}

		g := taskflow.Layout(tasks, opts)
		if asJSON {
			return writeJSON(cmd, g)
		}

		out := cmd.OutOrStdout()
		mode := "dag"
		if g.Chain {
			mode = "chain"
		}
		fmt.Fprintf(out, "mode: %s\n", mode)
		for _, n := range g.Nodes {
			fmt.Fprintf(out, "node %-12s level=%d x=%.0f y=%.0f status=%s\n",
				n.ID, n.Data.Level, n.Position.X, n.Position.Y, n.Data.Task.Status)
		}
		for _, e := range g.Edges {
			fmt.Fprintf(out, "edge %-20s %s animated=%v\n", e.ID, e.Style.Color, e.Style.Animated)
		}
		return nil
	},
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&taskFile, "file", "f", "", "Path to the YAML or JSON task file")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	_ = rootCmd.MarkPersistentFlagRequired("file")

	layoutCmd.Flags().StringVarP(&configPath, "config", "c", "", "Server config file to read layout spacing from")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(layoutCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
