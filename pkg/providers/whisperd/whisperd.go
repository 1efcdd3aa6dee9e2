package whisperd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/harunnryd/echoscribe/pkg/errorsx"
	"github.com/harunnryd/echoscribe/pkg/logging"
	"github.com/harunnryd/echoscribe/pkg/metrics"
	"github.com/harunnryd/echoscribe/pkg/resilience"
)

// Config drives the connection to a whisper.cpp style HTTP server.
type Config struct {
	BaseURL     string
	Model       string
	Language    string
	Timeout     time.Duration
	MaxRetries  int
	Backoff     time.Duration
	BreakerTrip int
	Cooldown    time.Duration
	Observer    metrics.Observer
}

// Engine submits WAV segments to the /inference endpoint of a local
// whisper server and reads back the JSON transcript.
type Engine struct {
	cfg      Config
	client   *http.Client
	retry    resilience.RetryPolicy
	breaker  *resilience.CircuitBreaker
	open     atomic.Bool
	logger   *slog.Logger
	observer metrics.Observer
}

type inferenceResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func New(cfg Config) *Engine {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	observer := cfg.Observer
	if observer == nil {
		observer = metrics.NoopObserver{}
	}
	return &Engine{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		retry:    resilience.NewRetryPolicy(cfg.MaxRetries, cfg.Backoff),
		breaker:  resilience.NewCircuitBreaker(cfg.BreakerTrip, cfg.Cooldown),
		logger:   logging.NewComponentLogger(slog.Default(), "whisperd"),
		observer: observer,
	}
}

func (e *Engine) Name() string { return "whisperd" }

func (e *Engine) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if !e.breaker.Allow() {
		e.logger.Debug("request denied, circuit open")
		e.observer.RecordEvent(metrics.MetricsEvent{
			Name: metrics.EventBreakerDenied,
			Time: time.Now(),
			Tags: map[string]string{"engine": e.Name()},
		})
		return "", errorsx.Wrap(fmt.Errorf("whisperd circuit open"), errorsx.ReasonASRCircuitOpen)
	}

	var text string
	err := e.retry.Do(func() error {
		var attemptErr error
		text, attemptErr = e.once(ctx, wav)
		if attemptErr != nil {
			e.logger.Debug("inference attempt failed", "error", attemptErr)
			if resilience.IsRateLimit(attemptErr) {
				e.observer.RecordEvent(metrics.MetricsEvent{
					Name: metrics.EventRateLimit,
					Time: time.Now(),
					Tags: map[string]string{"engine": e.Name()},
				})
			}
		}
		e.breaker.OnError(attemptErr)
		if !e.breaker.Allow() && !e.open.Swap(true) {
			e.logger.Warn("circuit opened, backing off")
			e.observer.RecordEvent(metrics.MetricsEvent{
				Name: metrics.EventBreakerOpen,
				Time: time.Now(),
				Tags: map[string]string{"engine": e.Name()},
			})
		}
		return attemptErr
	})
	if err != nil {
		return "", err
	}
	e.breaker.OnSuccess()
	if e.open.Swap(false) {
		e.logger.Info("circuit closed, backend recovered")
		e.observer.RecordEvent(metrics.MetricsEvent{
			Name: metrics.EventBreakerClose,
			Time: time.Now(),
			Tags: map[string]string{"engine": e.Name()},
		})
	}
	return text, nil
}

func (e *Engine) once(ctx context.Context, wav []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "segment.wav")
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonASRTranscribe)
	}
	if _, err := part.Write(wav); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonASRTranscribe)
	}
	_ = form.WriteField("response_format", "json")
	if e.cfg.Language != "" {
		_ = form.WriteField("language", e.cfg.Language)
	}
	if e.cfg.Model != "" {
		_ = form.WriteField("model", e.cfg.Model)
	}
	if err := form.Close(); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonASRTranscribe)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/inference", &body)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonASRTranscribe)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonASRTranscribe)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", errorsx.Wrap(resilience.RateLimitError{
			Provider: e.Name(),
			Message:  "whisperd rate limited",
		}, errorsx.ReasonASRRateLimit)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", errorsx.Wrap(fmt.Errorf("whisperd status %d: %s", resp.StatusCode, snippet), errorsx.ReasonASRTranscribe)
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonASRTranscribe)
	}
	if out.Error != "" {
		return "", errorsx.Wrap(fmt.Errorf("whisperd: %s", out.Error), errorsx.ReasonASRTranscribe)
	}
	return out.Text, nil
}
