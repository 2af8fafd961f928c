package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shortsbot/assets"
	"shortsbot/metadata"
)

var metadataDir string

var metadataCmd = &cobra.Command{
	Use:   "metadata <audio> <name> [image,...]",
	Short: "Transcribe audio and write {name}-metadata.json",
	Long: `Transcribe an existing voice-over with Deepgram and write the word
timings, audio and images to {name}-metadata.json. Images are given as one
comma separated argument.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runMetadata,
}

func init() {
	metadataCmd.Flags().StringVar(&metadataDir, "dir", ".", "directory the metadata file is written to")
	rootCmd.AddCommand(metadataCmd)
}

func runMetadata(cmd *cobra.Command, args []string) error {
	audio, name := args[0], args[1]
	var images []string
	if len(args) == 3 {
		for _, img := range strings.Split(args[2], ",") {
			if img = strings.TrimSpace(img); img != "" {
				images = append(images, img)
			}
		}
	}

	transcriber, err := newTranscriber()
	if err != nil {
		return err
	}
	p := &assets.Preparer{Transcriber: transcriber, Dir: metadataDir}
	res, err := p.FromAudio(cmd.Context(), name, audio, images)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s", res.MetadataPath, metadata.Summary(res.Metadata))
	return nil
}
