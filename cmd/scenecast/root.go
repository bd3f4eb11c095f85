package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "scenecast",
		Short:         "Scene-based presentation player and recorder",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "scenecast.toml", "Configuration file path")

	rootCmd.AddCommand(newPlayCommand(&configFlag))
	rootCmd.AddCommand(newRecordCommand(&configFlag))
	rootCmd.AddCommand(newInfoCommand(&configFlag))

	return rootCmd
}
