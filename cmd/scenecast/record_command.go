package main

import (
	"github.com/spf13/cobra"
)

func newRecordCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "record <project.yaml>",
		Short: "Play a presentation project and save the video",
		Long: "Record plays the project exactly like play while encoding the " +
			"rendered frames and the audio mix into a WebM file in the output " +
			"directory. Interrupting with Ctrl-C still finalizes the file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd, args[0], *configFlag, true)
		},
	}
}
