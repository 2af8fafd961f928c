package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"shortsbot/assets"
	"shortsbot/captions"
	"shortsbot/common"
	"shortsbot/config"
	"shortsbot/jobs"
	"shortsbot/logger"
	"shortsbot/metadata"
	"shortsbot/processor"
)

var (
	presetName string
	outputDir  string
)

var rootCmd = &cobra.Command{
	Use:   "shortsbot",
	Short: "Build captioned marketing shorts from a script or a transcript",
	Long: `Shortsbot turns a topic or a word-timed transcript into a vertical short:
it schedules karaoke captions on a virtual clock, composes the slides and
background, renders with ffmpeg and optionally publishes to S3 and YouTube.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables from .env if present (non-fatal if missing)
		_ = godotenv.Load()
		return logger.Init(config.LogFile())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&presetName, "preset", "p", "", "caption style preset from the presets file")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", config.OutputDir, "directory for rendered videos and caption files")
}

// captionSettings resolves --preset against the presets file. A missing
// file only matters when a preset was asked for.
func captionSettings() (captions.Settings, *captions.Presets, error) {
	presets, err := captions.LoadPresets(config.CaptionPresets())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return captions.Settings{}, nil, err
	}
	settings, err := presets.Resolve(presetName)
	if err != nil {
		return captions.Settings{}, nil, err
	}
	return settings, presets, nil
}

// newJobManager keeps jobs in Redis unless JOB_STORE=memory. An
// unreachable Redis falls back to memory so local runs still work.
func newJobManager() (*jobs.Manager, func()) {
	if config.JobStore() == "memory" {
		return jobs.NewManager(jobs.NewMemoryStore()), func() {}
	}
	store, err := jobs.NewRedisStore(jobs.RedisConfig{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       config.RedisDB(),
	})
	if err != nil {
		logger.Sugar().Warnf("⚠️ Job store unavailable, keeping jobs in memory: %v", err)
		return jobs.NewManager(jobs.NewMemoryStore()), func() {}
	}
	return jobs.NewManager(store), func() { _ = store.Close() }
}

// newStorage returns nil when S3_BUCKET is unset.
func newStorage(ctx context.Context) processor.ArtifactStore {
	if config.S3Bucket() == "" {
		logger.Sugar().Info("S3 not configured; skipping uploads")
		return nil
	}
	s3c, err := common.NewS3(ctx, common.S3Config{
		Bucket:       config.S3Bucket(),
		Prefix:       config.S3Prefix(),
		Region:       config.S3Region(),
		Profile:      config.S3Profile(),
		UsePathStyle: config.S3UsePathStyle(),
	})
	if err != nil {
		logger.Sugar().Warnf("⚠️ Failed to init S3 client: %v (uploads disabled)", err)
		return nil
	}
	return s3c
}

// newYouTube returns nil when the service account file is missing.
func newYouTube(ctx context.Context) processor.VideoUploader {
	path := config.YouTubeServiceAccount()
	if _, err := os.Stat(path); err != nil {
		logger.Sugar().Infof("YouTube service account %s not found; skipping publishing", path)
		return nil
	}
	uploader, err := processor.NewUploader(ctx, path)
	if err != nil {
		logger.Sugar().Warnf("⚠️ Failed to initialize YouTube uploader: %v", err)
		return nil
	}
	logger.Sugar().Info("✅ YouTube client initialized")
	return uploader
}

// newPreparer wires the asset providers whose keys are configured.
func newPreparer(dir string) (*assets.Preparer, error) {
	if config.OpenAIAPIKey() == "" {
		return nil, errors.New("OPENAI_API_KEY is required for asset generation")
	}
	transcriber, err := newTranscriber()
	if err != nil {
		return nil, err
	}

	var speech assets.FallbackSynthesizer
	if key := config.GoogleTTSAPIKey(); key != "" {
		speech = append(speech, assets.NewGoogleTTS(key, ""))
	}
	if key := config.ElevenLabsAPIKey(); key != "" {
		el := assets.NewElevenLabs(key, "")
		if voice := config.ElevenLabsVoice(); voice != "" {
			el.Voice = voice
		}
		speech = append(speech, el)
	}
	if len(speech) == 0 {
		return nil, errors.New("no speech provider configured: set GOOGLE_TTS_API_KEY or ELEVENLABS_API_KEY")
	}

	client := assets.NewOpenAIClient(config.OpenAIAPIKey(), "")
	return &assets.Preparer{
		Writer:      assets.NewWriter(client),
		Speech:      speech,
		Transcriber: transcriber,
		Images:      assets.NewImageGenerator(client),
		Dir:         dir,
	}, nil
}

func newTranscriber() (*assets.Deepgram, error) {
	key := config.DeepgramAPIKey()
	if key == "" {
		return nil, errors.New("DEEPGRAM_API_KEY is required for transcription")
	}
	return assets.NewDeepgram(key, ""), nil
}

// newProcessor builds a processor with every optional stage that is
// configured. Topic jobs fail without asset providers.
func newProcessor(ctx context.Context, manager *jobs.Manager) (*processor.Processor, error) {
	settings, _, err := captionSettings()
	if err != nil {
		return nil, err
	}
	proc := processor.New(manager, outputDir)
	proc.Compose.Captions = settings
	proc.Storage = newStorage(ctx)
	proc.YouTube = newYouTube(ctx)

	preparer, err := newPreparer(config.AssetsDir)
	if err != nil {
		logger.Sugar().Warnf("⚠️ Topic jobs disabled: %v", err)
	} else {
		proc.Assets = preparer
	}
	return proc, nil
}

// planFile loads a metadata file and plans its captions with --preset.
func planFile(ctx context.Context, path string) (*metadata.Metadata, *captions.Plan, captions.Settings, error) {
	settings, _, err := captionSettings()
	if err != nil {
		return nil, nil, captions.Settings{}, err
	}
	m, err := metadata.Load(path)
	if err != nil {
		return nil, nil, captions.Settings{}, err
	}
	plan, err := captions.Build(ctx, m.Words, settings)
	if err != nil {
		return nil, nil, captions.Settings{}, fmt.Errorf("failed to plan captions: %w", err)
	}
	return m, plan, settings, nil
}
