package config

import "time"

// Video Processing Constants
const (
	// MaxConcurrentVideos limits the number of metadata files rendered simultaneously
	MaxConcurrentVideos = 2

	// MaxVideoDuration is the maximum allowed video length in seconds (3 minutes)
	MaxVideoDuration = 180.0

	// FrameRate is the virtual clock and output frame rate
	FrameRate = 30
)

// Video Output Constants
const (
	// VideoWidth is the canvas and output width (9:16 aspect ratio)
	VideoWidth = 1080

	// VideoHeight is the canvas and output height (9:16 aspect ratio)
	VideoHeight = 1920

	VideoCodec   = "libx264"
	AudioCodec   = "aac"
	AudioBitrate = "192k"

	// VideoPreset is the ffmpeg encoding speed preset
	VideoPreset = "fast"
)

// Layout Constants (fractions of the canvas height)
const (
	HeaderRatio = 0.25
	BodyRatio   = 0.55
	FooterRatio = 0.20
)

// Caption Constants
const (
	// TrailingHold keeps the last caption batch on screen after its final word ends
	TrailingHold = 1.0

	// HighlightRadius is the corner radius of the active word background
	HighlightRadius = 10.0

	// MaxFadeIn caps the batch and word fade-in duration
	MaxFadeIn = 0.1
)

// Composition Constants
const (
	// SlideZoomIntensity is the zoom delta applied per slide
	SlideZoomIntensity = 0.15

	// HeaderY is where header text sits relative to canvas center
	HeaderY = -780.0
)

// Title and Metadata Constants
const (
	// MaxTitleWords is the maximum number of words to use from captions for a title
	MaxTitleWords = 10

	// MaxTitleLength is the maximum character length for video titles
	MaxTitleLength = 100
)

// Directory Constants
const (
	// InputDir is the directory containing metadata JSON files
	InputDir = "input"

	// OutputDir is the directory for generated videos
	OutputDir = "output"

	// AssetsDir holds downloaded audio and images
	AssetsDir = "assets"

	// TempDir is the directory for temporary files
	TempDir = "/tmp"
)

// YouTube Constants
const (
	// YouTubeCategoryID for People & Blogs
	YouTubeCategoryID = "22"

	// YouTubePrivacyStatus sets video visibility
	YouTubePrivacyStatus = "public"
)

// HTTP client timeouts
const (
	ArticleTimeout = 30 * time.Second
	APITimeout     = 2 * time.Minute
)
