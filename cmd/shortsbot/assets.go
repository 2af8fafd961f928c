package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shortsbot/assets"
	"shortsbot/config"
	"shortsbot/metadata"
	"shortsbot/topics"
)

var (
	assetsDir     string
	assetsContext string
	assetsURL     string
	assetsImages  int
)

var assetsCmd = &cobra.Command{
	Use:   "assets <topic>",
	Short: "Write a script, voice it and generate images for a topic",
	Long: `Generate every asset for a short: an OpenAI script, speech with
Google TTS falling back to ElevenLabs, a Deepgram transcript and DALL-E
images. The result is written to {id}-metadata.json.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssets,
}

func init() {
	assetsCmd.Flags().StringVar(&assetsDir, "dir", config.AssetsDir, "directory for the generated assets")
	assetsCmd.Flags().StringVarP(&assetsContext, "context", "c", "", "article text to base the script on")
	assetsCmd.Flags().StringVar(&assetsURL, "url", "", "article URL whose text is used as context")
	assetsCmd.Flags().IntVarP(&assetsImages, "images", "n", assets.DefaultImageCount, "number of images to generate")
	rootCmd.AddCommand(assetsCmd)
}

func runAssets(cmd *cobra.Command, args []string) error {
	preparer, err := newPreparer(assetsDir)
	if err != nil {
		return err
	}
	preparer.ImageCount = assetsImages

	articleContext := assetsContext
	if assetsURL != "" && articleContext == "" {
		if articleContext, err = topics.ExtractText(assetsURL); err != nil {
			return fmt.Errorf("failed to extract article: %w", err)
		}
	}

	res, err := preparer.Prepare(cmd.Context(), assets.Request{
		JobID:   uuid.NewString(),
		Topic:   args[0],
		Context: articleContext,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s", res.MetadataPath, metadata.Summary(res.Metadata))
	return nil
}
