package main

import (
	"fmt"

	"github.com/hogwarts-cloud/capturectl/internal/clusters"
	"github.com/spf13/cobra"
)

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Work with every recorded cluster",
}

var clustersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded clusters",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		s, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		summaries, err := clusters.New(s).List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list clusters: %w", err)
		}

		return printYAML(cmd.OutOrStdout(), summaries)
	},
}

func init() {
	clustersCmd.AddCommand(clustersListCmd)
}
