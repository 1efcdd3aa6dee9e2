package deepgram

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	restapi "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listen "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"

	"github.com/harunnryd/echoscribe/pkg/errorsx"
	"github.com/harunnryd/echoscribe/pkg/logging"
)

type Config struct {
	APIKey   string
	Model    string
	Language string
}

// Engine sends complete WAV segments to the Deepgram prerecorded API.
type Engine struct {
	cfg    Config
	api    *restapi.Client
	logger *slog.Logger
}

func New(cfg Config) (*Engine, error) {
	if cfg.APIKey == "" {
		return nil, errorsx.Wrap(errors.New("deepgram api key required"), errorsx.ReasonConfigInvalid)
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	client := listen.NewREST(cfg.APIKey, &interfaces.ClientOptions{})
	return &Engine{
		cfg:    cfg,
		api:    restapi.New(client),
		logger: logging.NewComponentLogger(slog.Default(), "deepgram"),
	}, nil
}

func (e *Engine) Name() string { return "deepgram" }

func (e *Engine) Transcribe(ctx context.Context, wav []byte) (string, error) {
	options := &interfaces.PreRecordedTranscriptionOptions{
		Model:       e.cfg.Model,
		Language:    e.cfg.Language,
		SmartFormat: true,
		Punctuate:   true,
	}

	resp, err := e.api.FromStream(ctx, bytes.NewReader(wav), options)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonASRTranscribe)
	}
	if resp == nil || len(resp.Results.Channels) == 0 ||
		len(resp.Results.Channels[0].Alternatives) == 0 {
		return "", errorsx.Wrap(errors.New("deepgram returned no alternatives"), errorsx.ReasonASRTranscribe)
	}
	transcript := resp.Results.Channels[0].Alternatives[0].Transcript
	e.logger.Debug("transcription complete", "model", e.cfg.Model, "chars", len(transcript))
	return transcript, nil
}
