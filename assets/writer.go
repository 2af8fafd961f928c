package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sashabaranov/go-openai"

	"shortsbot/config"
)

const DefaultChatModel = "gpt-4-turbo-preview"

const scriptPrompt = `유튜브 쇼츠용 스크립트를 한국어로 작성해주세요. 스크립트는 90-120단어 정도의 길이로, 제공된 주제에 대한 흥미로운 내용이어야 합니다. ` +
	`첫 줄은 "이걸 알고 있었나요?" 또는 "이건 정말 놀라운 사실이에요" 같은 매력적인 헤드라인으로 시작해주세요. ` +
	`더 자세한 설명과 구체적인 예시를 포함해서 50초 정도 읽을 수 있는 분량으로 작성해주세요. ` +
	`이것은 음성으로 읽힐 것이므로 해시태그 같은 것은 포함하지 마세요. 다음 주제로 스크립트를 작성해주세요: "%s". ` +
	`스크립트만 반환하고 다른 설명은 하지 마세요 - 오직 음성용 대본만 작성해주세요.`

const contextPrompt = "\n\n참고할 기사 내용:\n%s"

const imagePrompt = `My goal is to create a Youtube Short based on the following script. ` +
	`To create background images for the video, I am using a text-to-image AI model. ` +
	`Please write %d short (not longer than a single sentence) prompts for such a model based on this script, one per line: %s.` +
	"\n\nNow return the prompts and nothing else."

// maxContextRunes bounds the article text passed into the script prompt.
const maxContextRunes = 4000

// Script is a voice-over script split into its headline and body.
type Script struct {
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

// Text is the full script as it is read aloud.
func (s Script) Text() string {
	if s.Body == "" {
		return s.Headline
	}
	return s.Headline + "\n" + s.Body
}

// ScriptWriter writes scripts and image prompts.
type ScriptWriter interface {
	Script(ctx context.Context, topic, articleContext string) (Script, error)
	ImagePrompts(ctx context.Context, script string, n int) ([]string, error)
}

// Writer is a ScriptWriter backed by the OpenAI chat API.
type Writer struct {
	client *openai.Client
	Model  string
}

// NewOpenAIClient builds a client; baseURL may be empty.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func NewWriter(client *openai.Client) *Writer {
	return &Writer{client: client, Model: DefaultChatModel}
}

func (w *Writer) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := w.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       w.Model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("returned text is empty")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (w *Writer) Script(ctx context.Context, topic, articleContext string) (Script, error) {
	prompt := fmt.Sprintf(scriptPrompt, topic)
	if articleContext = strings.TrimSpace(articleContext); articleContext != "" {
		if r := []rune(articleContext); len(r) > maxContextRunes {
			articleContext = string(r[:maxContextRunes])
		}
		prompt += fmt.Sprintf(contextPrompt, articleContext)
	}
	text, err := w.complete(ctx, prompt, 0)
	if err != nil {
		return Script{}, err
	}
	return ParseScript(text), nil
}

func (w *Writer) ImagePrompts(ctx context.Context, script string, n int) ([]string, error) {
	if n < 1 {
		return nil, nil
	}
	text, err := w.complete(ctx, fmt.Sprintf(imagePrompt, n, script), 1.0)
	if err != nil {
		return nil, err
	}
	prompts := ParseLines(text)
	if len(prompts) == 0 {
		return nil, errors.New("no image prompts returned")
	}
	for i := 0; len(prompts) < n; i++ {
		prompts = append(prompts, prompts[i])
	}
	return prompts[:n], nil
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// ParseLines splits model output into non-empty lines without list
// markers or wrapping quotes.
func ParseLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = listMarker.ReplaceAllString(line, "")
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseScript takes the first line as the headline.
func ParseScript(text string) Script {
	lines := ParseLines(text)
	if len(lines) == 0 {
		return Script{}
	}
	return Script{Headline: lines[0], Body: strings.Join(lines[1:], "\n")}
}

// ImageSource produces an image file for a prompt.
type ImageSource interface {
	Generate(ctx context.Context, prompt, savePath string) error
}

// ImageGenerator generates portrait DALL-E 3 images and downloads them.
type ImageGenerator struct {
	client   *openai.Client
	download *resty.Client
}

func NewImageGenerator(client *openai.Client) *ImageGenerator {
	return &ImageGenerator{client: client, download: resty.New().SetTimeout(config.APITimeout)}
}

func (g *ImageGenerator) Generate(ctx context.Context, prompt, savePath string) error {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Model:          openai.CreateImageModelDallE3,
		Prompt:         prompt,
		Size:           openai.CreateImageSize1024x1792,
		Quality:        openai.CreateImageQualityStandard,
		ResponseFormat: openai.CreateImageResponseFormatURL,
		N:              1,
	})
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return errors.New("no image generated")
	}
	dl, err := g.download.R().SetContext(ctx).SetOutput(savePath).Get(resp.Data[0].URL)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	if dl.IsError() {
		_ = os.Remove(savePath)
		return fmt.Errorf("failed to download image: status %d", dl.StatusCode())
	}
	return nil
}
