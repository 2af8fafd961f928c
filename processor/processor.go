package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"shortsbot/assets"
	"shortsbot/captions"
	"shortsbot/common"
	"shortsbot/composer"
	"shortsbot/config"
	"shortsbot/jobs"
	"shortsbot/logger"
	"shortsbot/metadata"
	"shortsbot/render"
)

// ArtifactStore keeps rendered outputs and fetches s3:// inputs.
// common.S3 implements it.
type ArtifactStore interface {
	Key(name string) string
	UploadFile(ctx context.Context, localPath, key string) (string, error)
	Download(ctx context.Context, key, localPath string) error
}

// Preparer produces assets and metadata for a topic job.
type Preparer interface {
	Prepare(ctx context.Context, req assets.Request) (*assets.Result, error)
}

// RenderFunc turns a composed short into a video file.
type RenderFunc func(ctx context.Context, in render.Input) error

// Processor runs a job from topic or metadata to a published video.
// Assets, Storage and YouTube are optional.
type Processor struct {
	Jobs    *jobs.Manager
	Assets  Preparer
	Storage ArtifactStore
	YouTube VideoUploader
	Render  RenderFunc

	Compose   composer.Options
	OutputDir string

	httpOnce sync.Once
	http     *resty.Client
}

// New creates a processor that renders with ffmpeg into outputDir.
func New(manager *jobs.Manager, outputDir string) *Processor {
	return &Processor{
		Jobs:      manager,
		Render:    render.Render,
		OutputDir: outputDir,
	}
}

// client is shared by concurrent jobs.
func (p *Processor) client() *resty.Client {
	p.httpOnce.Do(func() {
		p.http = resty.New().SetTimeout(config.APITimeout)
	})
	return p.http
}

func (p *Processor) outputDir() string {
	if p.OutputDir != "" {
		return p.OutputDir
	}
	return config.OutputDir
}

// Process runs every stage of job, recording status as it goes. The job
// is marked failed with the returned error.
func (p *Processor) Process(ctx context.Context, job *jobs.Job) error {
	if err := p.process(ctx, job); err != nil {
		if ferr := p.Jobs.Fail(context.WithoutCancel(ctx), job.ID, err); ferr != nil {
			logger.Sugar().Warnf("failed to record failure of %s: %v", job.ID, ferr)
		}
		return err
	}
	return nil
}

func (p *Processor) process(ctx context.Context, job *jobs.Job) error {
	logger.Sugar().Infof("🎬 Processing job %s", job.ID)

	metaPath := job.MetadataPath
	if metaPath == "" {
		if job.Topic == "" {
			return errors.New("job has neither topic nor metadata")
		}
		if p.Assets == nil {
			return errors.New("asset preparation is not configured")
		}
		if err := p.Jobs.SetStatus(ctx, job.ID, jobs.StatusPreparing); err != nil {
			return err
		}
		prepared, err := p.Assets.Prepare(ctx, assets.Request{JobID: job.ID, Topic: job.Topic, Context: job.Context})
		if err != nil {
			return fmt.Errorf("asset preparation failed: %w", err)
		}
		metaPath = prepared.MetadataPath
		if _, err := p.Jobs.Update(ctx, job.ID, func(j *jobs.Job) { j.MetadataPath = metaPath }); err != nil {
			return err
		}
	}

	if err := p.Jobs.SetStatus(ctx, job.ID, jobs.StatusRendering); err != nil {
		return err
	}
	workDir, err := os.MkdirTemp("", "shortsbot-"+job.ID+"-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	localMeta, err := p.fetch(ctx, metaPath, "", workDir)
	if err != nil {
		return fmt.Errorf("failed to fetch metadata: %w", err)
	}
	meta, err := metadata.Load(localMeta)
	if err != nil {
		return err
	}
	baseDir := filepath.Dir(localMeta)

	res, err := composer.Compose(ctx, meta, p.Compose)
	if err != nil {
		return err
	}
	p.Jobs.AddLog(job.ID, "Composed %.2fs (%d cues, %d slides)", res.Duration, len(res.Captions.Cues), len(res.Slides))

	outDir := p.outputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	assPath := filepath.Join(outDir, job.ID+".ass")
	if err := writeASS(assPath, res.Captions, p.captionSettings()); err != nil {
		return err
	}

	audio, err := p.fetch(ctx, meta.AudioURL, baseDir, workDir)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	slides := make([]composer.Slide, len(res.Slides))
	for i, s := range res.Slides {
		if s.Image, err = p.fetch(ctx, s.Image, baseDir, workDir); err != nil {
			return fmt.Errorf("failed to fetch image: %w", err)
		}
		slides[i] = s
	}

	videoPath := filepath.Join(outDir, job.ID+".mp4")
	in := render.Input{
		Slides:     slides,
		AudioPath:  audio,
		ASSPath:    assPath,
		OutputPath: videoPath,
		Duration:   res.Duration,
	}
	if err := p.Render(ctx, in); err != nil {
		return fmt.Errorf("video creation failed: %w", err)
	}
	if _, err := p.Jobs.Update(ctx, job.ID, func(j *jobs.Job) { j.VideoPath = videoPath }); err != nil {
		return err
	}
	p.Jobs.AddLog(job.ID, "Video created: %s", videoPath)

	if p.Storage != nil || p.YouTube != nil {
		if err := p.Jobs.SetStatus(ctx, job.ID, jobs.StatusUploading); err != nil {
			return err
		}
	}
	if p.Storage != nil {
		url, err := p.Storage.UploadFile(ctx, videoPath, p.Storage.Key(job.ID+".mp4"))
		if err != nil {
			return fmt.Errorf("storage upload failed: %w", err)
		}
		if _, err := p.Storage.UploadFile(ctx, assPath, p.Storage.Key(job.ID+".ass")); err != nil {
			return fmt.Errorf("storage upload failed: %w", err)
		}
		if _, err := p.Jobs.Update(ctx, job.ID, func(j *jobs.Job) { j.VideoURL = url }); err != nil {
			return err
		}
		p.Jobs.AddLog(job.ID, "Stored: %s", url)
	}
	if p.YouTube != nil {
		id, err := p.YouTube.UploadVideo(ctx, videoPath, GenerateMetadata(meta, job.SourceURL))
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		if _, err := p.Jobs.Update(ctx, job.ID, func(j *jobs.Job) { j.YouTubeID = id }); err != nil {
			return err
		}
	}

	if err := p.Jobs.SetStatus(ctx, job.ID, jobs.StatusDone); err != nil {
		return err
	}
	logger.Sugar().Infof("✅ Job %s done: %s", job.ID, videoPath)
	return nil
}

func (p *Processor) captionSettings() captions.Settings {
	if p.Compose.Captions == (captions.Settings{}) {
		return captions.DefaultSettings()
	}
	return p.Compose.Captions
}

func writeASS(path string, plan *captions.Plan, s captions.Settings) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to generate ASS: %w", err)
	}
	if err := captions.WriteASS(f, plan, s); err != nil {
		f.Close()
		return fmt.Errorf("failed to generate ASS: %w", err)
	}
	return f.Close()
}

// fetch returns a local path for ref. Relative paths resolve against
// baseDir; http(s) and s3:// references are downloaded into workDir.
func (p *Processor) fetch(ctx context.Context, ref, baseDir, workDir string) (string, error) {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		dst := filepath.Join(workDir, downloadName(ref))
		resp, err := p.client().R().SetContext(ctx).SetOutput(dst).Get(ref)
		if err != nil {
			return "", err
		}
		if resp.IsError() {
			os.Remove(dst)
			return "", fmt.Errorf("download %s: %s", ref, resp.Status())
		}
		return dst, nil
	case strings.HasPrefix(ref, "s3://"):
		if p.Storage == nil {
			return "", fmt.Errorf("no storage configured for %s", ref)
		}
		_, key, ok := common.ParseURL(ref)
		if !ok {
			return "", fmt.Errorf("invalid storage url %q", ref)
		}
		dst := filepath.Join(workDir, filepath.Base(key))
		if err := p.Storage.Download(ctx, key, dst); err != nil {
			return "", err
		}
		return dst, nil
	case baseDir != "" && !filepath.IsAbs(ref):
		return filepath.Join(baseDir, ref), nil
	}
	return ref, nil
}

var downloadSeq struct {
	sync.Mutex
	n int
}

func downloadName(ref string) string {
	downloadSeq.Lock()
	downloadSeq.n++
	n := downloadSeq.n
	downloadSeq.Unlock()

	name := filepath.Base(strings.SplitN(ref, "?", 2)[0])
	if name == "." || name == "/" {
		name = "download"
	}
	return fmt.Sprintf("%d-%s", n, name)
}

// ProcessDirectory processes every metadata file in dir, at most
// MaxConcurrentVideos at a time. It returns the joined failures.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*"+metadata.Suffix))
	if err != nil {
		return fmt.Errorf("failed to read metadata files: %w", err)
	}
	if len(files) == 0 {
		logger.Sugar().Infof("No metadata files found in %s", dir)
		return nil
	}
	logger.Sugar().Infof("Found %d videos to process", len(files))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	semaphore := make(chan struct{}, config.MaxConcurrentVideos)

	for i, file := range files {
		wg.Add(1)
		go func(idx int, file string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-semaphore }()

			logger.Sugar().Infof("[%d/%d] Processing: %s", idx+1, len(files), filepath.Base(file))
			job := jobs.New("", file)
			err := p.Jobs.Create(ctx, job)
			if err == nil {
				err = p.Process(ctx, job)
			}
			if err != nil {
				logger.Sugar().Errorf("Failed to process %s: %v", file, err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(file), err))
				mu.Unlock()
			}
		}(i, file)
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Sugar().Info("All videos processed!")
	return errors.Join(errs...)
}
