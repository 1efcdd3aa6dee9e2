package transcriber

import (
	"fmt"
	"time"

	"github.com/harunnryd/echoscribe/pkg/asr"
	"github.com/harunnryd/echoscribe/pkg/configutil"
	"github.com/harunnryd/echoscribe/pkg/metrics"
	"github.com/harunnryd/echoscribe/pkg/providers/deepgram"
	"github.com/harunnryd/echoscribe/pkg/providers/mock"
	"github.com/harunnryd/echoscribe/pkg/providers/whisperd"
)

type whisperdSettings struct {
	BaseURL     string `mapstructure:"base_url"`
	Model       string `mapstructure:"model"`
	Language    string `mapstructure:"language"`
	TimeoutMS   int    `mapstructure:"timeout_ms"`
	MaxRetries  int    `mapstructure:"max_retries"`
	BackoffMS   int    `mapstructure:"backoff_ms"`
	BreakerTrip int    `mapstructure:"breaker_trip"`
	CooldownMS  int    `mapstructure:"cooldown_ms"`
}

type deepgramSettings struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
}

type mockSettings struct {
	Transcripts []string `mapstructure:"transcripts"`
}

// BuildEngine constructs the configured transcription engine. The
// observer receives the engine's breaker and rate limit events; nil
// discards them.
func BuildEngine(cfg EngineConfig, observer metrics.Observer) (asr.Engine, error) {
	switch cfg.Provider {
	case "whisperd":
		var s whisperdSettings
		if err := configutil.DecodeSettings(cfg.Settings, &s); err != nil {
			return nil, err
		}
		return whisperd.New(whisperd.Config{
			BaseURL:     s.BaseURL,
			Model:       s.Model,
			Language:    s.Language,
			Timeout:     time.Duration(s.TimeoutMS) * time.Millisecond,
			MaxRetries:  s.MaxRetries,
			Backoff:     time.Duration(s.BackoffMS) * time.Millisecond,
			BreakerTrip: s.BreakerTrip,
			Cooldown:    time.Duration(s.CooldownMS) * time.Millisecond,
			Observer:    observer,
		}), nil
	case "deepgram":
		var s deepgramSettings
		if err := configutil.DecodeSettings(cfg.Settings, &s); err != nil {
			return nil, err
		}
		return deepgram.New(deepgram.Config{
			APIKey:   s.APIKey,
			Model:    s.Model,
			Language: s.Language,
		})
	case "mock":
		var s mockSettings
		if err := configutil.DecodeSettings(cfg.Settings, &s); err != nil {
			return nil, err
		}
		return mock.New(mock.Config{Transcripts: s.Transcripts}), nil
	default:
		return nil, fmt.Errorf("unknown engine provider %q", cfg.Provider)
	}
}
