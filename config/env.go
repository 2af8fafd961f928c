package config

import (
	"os"
	"strconv"
	"strings"
)

// Env returns the trimmed value of key, or def when unset or blank.
func Env(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func EnvInt(key string, def int) int {
	if val := Env(key, ""); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

func EnvFloat(key string, def float64) float64 {
	if val := Env(key, ""); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return def
}

func EnvBool(key string, def bool) bool {
	if val := Env(key, ""); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return def
}

// EnvList splits a comma separated value, dropping empty entries.
func EnvList(key string, def []string) []string {
	val := Env(key, "")
	if val == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// Service settings read from the environment.

func Port() string { return Env("PORT", "8080") }

func KafkaBrokers() []string {
	return EnvList("KAFKA_BOOTSTRAP_SERVERS", []string{"localhost:9093"})
}

func KafkaRenderTopic() string { return Env("KAFKA_TOPIC_RENDER_JOBS", "render-jobs") }

func KafkaGroupID() string { return Env("KAFKA_CONSUMER_GROUP_ID", "shortsbot-render") }

func RedisAddr() string { return Env("REDIS_ADDR", "localhost:6379") }

func RedisPassword() string { return Env("REDIS_PASS", "") }

func RedisDB() int { return EnvInt("REDIS_DB", 0) }

// FeedURL resolves FEED_URL through the preset table.
func FeedURL() string { return ResolveFeedURL(Env("FEED_URL", DefaultFeedPreset)) }

func ScheduleCron() string { return Env("SCHEDULE_CRON", "0 */6 * * *") }

func LogFile() string { return Env("LOG_FILE", "") }

// S3 settings. Artifacts are only uploaded when S3_BUCKET is set.

func S3Bucket() string { return Env("S3_BUCKET", "") }

func S3Region() string { return Env("S3_REGION", "") }

func S3Profile() string { return Env("S3_PROFILE", "") }

func S3Prefix() string { return Env("S3_PREFIX", "shortsbot") }

func S3UsePathStyle() bool { return EnvBool("S3_USE_PATH_STYLE", false) }

// API keys for the asset providers.

func DeepgramAPIKey() string { return Env("DEEPGRAM_API_KEY", "") }

func GoogleTTSAPIKey() string { return Env("GOOGLE_TTS_API_KEY", "") }

func ElevenLabsAPIKey() string { return Env("ELEVENLABS_API_KEY", "") }

func ElevenLabsVoice() string { return Env("ELEVENLABS_VOICE", "") }

func OpenAIAPIKey() string { return Env("OPENAI_API_KEY", "") }

// CohereAPIKey enables near-duplicate topic filtering by title embedding.
func CohereAPIKey() string { return Env("COHERE_API_KEY", "") }

func CohereEmbedModel() string { return Env("COHERE_EMBED_MODEL", "embed-multilingual-v3.0") }

// TopicSimilarity is the cosine similarity at which two titles count as
// the same story.
func TopicSimilarity() float64 { return EnvFloat("TOPIC_SIMILARITY", 0.9) }

// YouTubeServiceAccount is the service account JSON used for uploads.
// Uploading is disabled when the file does not exist.
func YouTubeServiceAccount() string { return Env("YOUTUBE_SERVICE_ACCOUNT", "service-account.json") }

// CaptionPresets is the TOML file holding named caption styles.
func CaptionPresets() string { return Env("CAPTION_PRESETS", "captions.toml") }

// JobStore selects where job records live: "redis" or "memory".
func JobStore() string { return Env("JOB_STORE", "redis") }
