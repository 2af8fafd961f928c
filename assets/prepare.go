package assets

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"shortsbot/logger"
	"shortsbot/metadata"
)

const (
	DefaultImageCount  = 3
	DefaultConcurrency = 3
)

// Request names the job and what its short is about.
type Request struct {
	JobID   string
	Topic   string
	Context string
}

// Result is the prepared metadata and where it was written.
type Result struct {
	MetadataPath string
	Metadata     *metadata.Metadata
	Script       Script
}

// Preparer produces every asset a short needs and writes its metadata
// file. Asset paths in the metadata are relative to Dir.
type Preparer struct {
	Writer      ScriptWriter
	Speech      Synthesizer
	Transcriber Transcriber
	Images      ImageSource

	Dir         string
	ImageCount  int
	Concurrency int
}

func (p *Preparer) imageCount() int {
	if p.ImageCount > 0 {
		return p.ImageCount
	}
	return DefaultImageCount
}

func (p *Preparer) concurrency() int {
	if p.Concurrency > 0 {
		return p.Concurrency
	}
	return DefaultConcurrency
}

// Prepare writes the script, speaks it, transcribes the speech, generates
// the images and saves {jobID}-metadata.json. Any failure aborts the run.
func (p *Preparer) Prepare(ctx context.Context, req Request) (*Result, error) {
	log := logger.Sugar()

	log.Infof("📝 Writing script for %q", req.Topic)
	script, err := p.Writer.Script(ctx, req.Topic, req.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to write script: %w", err)
	}

	log.Infof("🎙️ Generating audio with %s", p.Speech.Name())
	audioPath, err := p.Speech.Synthesize(ctx, script.Text(), filepath.Join(p.Dir, req.JobID+"-audio"))
	if err != nil {
		return nil, fmt.Errorf("failed to generate audio: %w", err)
	}
	audioName := filepath.Base(audioPath)

	words, err := p.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}
	log.Infof("🔤 Transcribed %d words", len(words))

	prompts, err := p.Writer.ImagePrompts(ctx, script.Text(), p.imageCount())
	if err != nil {
		return nil, fmt.Errorf("failed to write image prompts: %w", err)
	}
	images, err := p.generateImages(ctx, req.JobID, prompts)
	if err != nil {
		return nil, err
	}

	m := &metadata.Metadata{
		AudioURL: audioName,
		Images:   images,
		Words:    words,
		Headline: script.Headline,
		Script:   script.Text(),
	}
	path := metadata.PathFor(p.Dir, req.JobID)
	if err := metadata.Save(path, m); err != nil {
		return nil, err
	}
	log.Infof("✅ Assets ready: %s", path)
	return &Result{MetadataPath: path, Metadata: m, Script: script}, nil
}

func (p *Preparer) generateImages(ctx context.Context, jobID string, prompts []string) ([]string, error) {
	images := make([]string, len(prompts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency())
	for i, prompt := range prompts {
		name := fmt.Sprintf("%s-image-%d.png", jobID, i+1)
		images[i] = name
		g.Go(func() error {
			logger.Sugar().Infof("🖼️ Generating image %d/%d", i+1, len(prompts))
			if err := p.Images.Generate(ctx, prompt, filepath.Join(p.Dir, name)); err != nil {
				return fmt.Errorf("failed to generate image %d: %w", i+1, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// FromAudio transcribes an existing audio file and writes
// {name}-metadata.json next to it. images are stored as given.
func (p *Preparer) FromAudio(ctx context.Context, name, audioPath string, images []string) (*Result, error) {
	words, err := p.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}
	audio := audioPath
	if rel, err := filepath.Rel(p.Dir, audioPath); err == nil && filepath.IsLocal(rel) {
		audio = rel
	}
	m := &metadata.Metadata{AudioURL: audio, Images: images, Words: words}
	path := metadata.PathFor(p.Dir, name)
	if err := metadata.Save(path, m); err != nil {
		return nil, err
	}
	logger.Sugar().Infof("✅ Metadata written: %s (%d words)", path, len(words))
	return &Result{MetadataPath: path, Metadata: m}, nil
}
