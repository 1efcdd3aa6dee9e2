package transcriber

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/harunnryd/echoscribe/pkg/configutil"
	"github.com/harunnryd/echoscribe/pkg/segmenter"
)

type Config struct {
	Audio     AudioConfig     `mapstructure:"audio"`
	VAD       VADConfig       `mapstructure:"vad"`
	Segmenter SegmenterConfig `mapstructure:"segmenter"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Store     StoreConfig     `mapstructure:"store"`
	Live      LiveConfig      `mapstructure:"live"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Recording string          `mapstructure:"recording"`
	LogLevel  string          `mapstructure:"log_level"`
	LogFormat string          `mapstructure:"log_format"`
	Privacy   PrivacyConfig   `mapstructure:"privacy"`
}

type AudioConfig struct {
	SampleRate int    `mapstructure:"sample_rate"`
	Device     string `mapstructure:"device"`
}

type VADConfig struct {
	Engine          string  `mapstructure:"engine"`
	Aggressiveness  int     `mapstructure:"aggressiveness"`
	EnergyThreshold float64 `mapstructure:"energy_threshold"`
}

type SegmenterConfig struct {
	MaxSegmentSec  float64 `mapstructure:"max_segment_sec"`
	MinSegmentSec  float64 `mapstructure:"min_segment_sec"`
	PauseMS        int     `mapstructure:"pause_ms"`
	SilenceMS      int     `mapstructure:"silence_ms"`
	SilenceFloorMS int     `mapstructure:"silence_floor_ms"`
}

type QueueConfig struct {
	Capacity int `mapstructure:"capacity"`
}

type EngineConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
}

type StoreConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	Category string `mapstructure:"category"`
}

type LiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type MetricsConfig struct {
	Mode        string `mapstructure:"mode"`
	JSONLPath   string `mapstructure:"jsonl_path"`
	AsyncBuffer int    `mapstructure:"async_buffer"`
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

var engineSchemas = map[string]configutil.Schema{
	"whisperd": {
		Optional: []string{"base_url", "model", "language", "timeout_ms", "max_retries", "backoff_ms", "breaker_trip", "cooldown_ms"},
	},
	"deepgram": {
		Required: []string{"api_key"},
		Optional: []string{"model", "language"},
	},
	"mock": {
		Optional: []string{"transcripts"},
	},
}

func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("audio.device", "")
	v.SetDefault("vad.engine", "webrtc")
	v.SetDefault("vad.aggressiveness", 2)
	v.SetDefault("vad.energy_threshold", 500.0)
	v.SetDefault("segmenter.max_segment_sec", 20.0)
	v.SetDefault("segmenter.min_segment_sec", 5.0)
	v.SetDefault("segmenter.pause_ms", 800)
	v.SetDefault("segmenter.silence_ms", 1500)
	v.SetDefault("segmenter.silence_floor_ms", 1000)
	v.SetDefault("queue.capacity", 32)
	v.SetDefault("engine.provider", "whisperd")
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", "echoscribe.sqlite")
	v.SetDefault("store.category", "")
	v.SetDefault("live.enabled", false)
	v.SetDefault("live.addr", "127.0.0.1:8787")
	v.SetDefault("metrics.mode", "noop")
	v.SetDefault("metrics.jsonl_path", "")
	v.SetDefault("metrics.async_buffer", 256)
	v.SetDefault("recording", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("privacy.redact_pii", false)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}

	expandEnvStrings(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive")
	}
	if c.VAD.Aggressiveness < 0 || c.VAD.Aggressiveness > 3 {
		return fmt.Errorf("vad.aggressiveness must be 0..3")
	}
	switch c.VAD.Engine {
	case "webrtc", "energy":
	default:
		return fmt.Errorf("vad.engine must be webrtc or energy, got %q", c.VAD.Engine)
	}
	if c.Segmenter.MinSegmentSec > c.Segmenter.MaxSegmentSec {
		return fmt.Errorf("segmenter.min_segment_sec exceeds max_segment_sec")
	}
	schema, ok := engineSchemas[c.Engine.Provider]
	if !ok {
		return fmt.Errorf("engine.provider %q is not supported", c.Engine.Provider)
	}
	if err := configutil.ValidateSettings(c.Engine.Settings, schema); err != nil {
		return fmt.Errorf("engine.settings: %w", err)
	}
	return nil
}

// SegmentsConfig converts the flat config values into segmenter terms.
func (c *Config) SegmentsConfig() segmenter.Config {
	return segmenter.Config{
		SampleRate:       c.Audio.SampleRate,
		MaxSegment:       time.Duration(c.Segmenter.MaxSegmentSec * float64(time.Second)),
		MinSegment:       time.Duration(c.Segmenter.MinSegmentSec * float64(time.Second)),
		PauseThreshold:   time.Duration(c.Segmenter.PauseMS) * time.Millisecond,
		SilenceThreshold: time.Duration(c.Segmenter.SilenceMS) * time.Millisecond,
		SilenceFloor:     time.Duration(c.Segmenter.SilenceFloorMS) * time.Millisecond,
	}
}

func expandEnvStrings(cfg *Config) {
	cfg.Engine.Settings = expandSettings(cfg.Engine.Settings)
	cfg.Store.Path = os.ExpandEnv(cfg.Store.Path)
	cfg.Metrics.JSONLPath = os.ExpandEnv(cfg.Metrics.JSONLPath)
	cfg.Recording = os.ExpandEnv(cfg.Recording)
	cfg.Recording = strings.TrimSpace(cfg.Recording)
}

func expandSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	for k, v := range settings {
		settings[k] = expandAny(v)
	}
	return settings
}

func expandAny(v any) any {
	switch val := v.(type) {
	case string:
		return os.ExpandEnv(val)
	case []any:
		for i := range val {
			val[i] = expandAny(val[i])
		}
		return val
	case map[string]any:
		for k, v := range val {
			val[k] = expandAny(v)
		}
		return val
	default:
		return v
	}
}
