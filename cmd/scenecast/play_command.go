package main

import (
	"github.com/spf13/cobra"
)

func newPlayCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play <project.yaml>",
		Short: "Play a presentation project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd, args[0], *configFlag, false)
		},
	}
}
