package processor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shortsbot/config"
	"shortsbot/logger"
	"shortsbot/metadata"
)

// VideoMetadata is what YouTube shows for an upload.
type VideoMetadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
}

// VideoUploader publishes a rendered video and returns its ID.
type VideoUploader interface {
	UploadVideo(ctx context.Context, videoPath string, meta VideoMetadata) (string, error)
}

// Uploader publishes to YouTube with a service account.
type Uploader struct {
	service *youtube.Service
}

func NewUploader(ctx context.Context, serviceAccountFile string) (*Uploader, error) {
	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}

	jwt, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account: %w", err)
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}

	return &Uploader{service: service}, nil
}

func (u *Uploader) UploadVideo(ctx context.Context, videoPath string, meta VideoMetadata) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}

	logger.Sugar().Infof("📤 Uploading: %s (%.2f MB)", videoPath, float64(info.Size())/(1024*1024))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  meta.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           config.YouTubePrivacyStatus,
			SelfDeclaredMadeForKids: false,
		},
	}

	response, err := u.service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(file).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	logger.Sugar().Infof("✅ Uploaded! https://youtube.com/shorts/%s", response.Id)
	return response.Id, nil
}

// Title uses the headline, or the opening words when there is none.
func Title(m *metadata.Metadata) string {
	title := strings.TrimSpace(m.Headline)
	if title == "" {
		var parts []string
		for i, w := range m.Words {
			if i >= config.MaxTitleWords {
				break
			}
			parts = append(parts, w.Text)
		}
		title = strings.Join(parts, " ")
	}
	r := []rune(title)
	if len(r) > config.MaxTitleLength {
		title = string(r[:config.MaxTitleLength-3]) + "..."
	}
	return title
}

// GenerateMetadata builds upload metadata for a short.
func GenerateMetadata(m *metadata.Metadata, sourceURL string) VideoMetadata {
	title := Title(m)

	var b strings.Builder
	b.WriteString(title)
	if script := strings.TrimSpace(m.Script); script != "" {
		b.WriteString("\n\n")
		b.WriteString(script)
	}
	if sourceURL != "" {
		fmt.Fprintf(&b, "\n\n🔗 출처: %s", sourceURL)
	}
	b.WriteString("\n\n#shorts #쇼츠 #정보")

	return VideoMetadata{
		Title:       title,
		Description: b.String(),
		Tags:        []string{"shorts", "쇼츠", "정보", "꿀팁"},
		CategoryID:  config.YouTubeCategoryID,
	}
}
