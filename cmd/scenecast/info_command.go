package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/scenecast/internal/capture"
	"github.com/ivlev/scenecast/internal/system"
)

func newInfoCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show host capabilities and effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "canvas      %dx%d @ %d fps\n", cfg.Width, cfg.Height, cfg.FPS)
			fmt.Fprintf(out, "output dir  %s\n", cfg.OutputDir)

			st := system.ReadStats()
			fmt.Fprintf(out, "cpus        %d\n", st.CPUCount)
			fmt.Fprintf(out, "memory      %s / %s (%.0f%%)\n",
				formatBytes(st.UsedMemory), formatBytes(st.TotalMemory), st.MemoryUsedPerc)

			codecs, err := capture.DetectCodecs()
			if err != nil {
				fmt.Fprintf(out, "recording   unavailable: %v\n", err)
				return nil
			}
			fmt.Fprintf(out, "recording   %s + %s\n", codecs.Video, codecs.Audio)
			return nil
		},
	}
}

func formatBytes(n uint64) string {
	const gb = 1 << 30
	const mb = 1 << 20
	if n >= gb {
		return fmt.Sprintf("%.1f GiB", float64(n)/gb)
	}
	return fmt.Sprintf("%d MiB", n/mb)
}
