package main

import (
	"github.com/spf13/cobra"

	"shortsbot/metadata"
	"shortsbot/preview"
)

var previewSpeed float64

var previewCmd = &cobra.Command{
	Use:   "preview <metadata.json>",
	Short: "Play the captions of a metadata file in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().Float64VarP(&previewSpeed, "speed", "s", 1, "playback speed")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	m, plan, settings, err := planFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	title := m.Headline
	if title == "" {
		title = metadata.NameOf(args[0])
	}
	return preview.Run(preview.NewModel(title, plan, settings, previewSpeed))
}
