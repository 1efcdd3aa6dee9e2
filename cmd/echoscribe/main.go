package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harunnryd/echoscribe/pkg/asr"
	"github.com/harunnryd/echoscribe/pkg/audio"
	"github.com/harunnryd/echoscribe/pkg/logging"
	"github.com/harunnryd/echoscribe/pkg/metrics"
	"github.com/harunnryd/echoscribe/pkg/redact"
	"github.com/harunnryd/echoscribe/pkg/runner"
	"github.com/harunnryd/echoscribe/pkg/sink"
	"github.com/harunnryd/echoscribe/pkg/store"
	"github.com/harunnryd/echoscribe/pkg/transcriber"
	"github.com/harunnryd/echoscribe/pkg/vad"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	recording := flag.String("recording", "", "recording name (overrides config)")
	listDevices := flag.Bool("list-devices", false, "list capture devices and exit")
	flag.Parse()

	if *listDevices {
		if err := printDevices(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath, *recording); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func printDevices() error {
	devices, err := audio.ListCaptureDevices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, d.Name)
	}
	return nil
}

func run(configPath, recordingFlag string) error {
	cfg, err := transcriber.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logging.InitLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	logger := slog.Default()
	redact.SetEnabled(cfg.Privacy.RedactPII)

	recording := cfg.Recording
	if recordingFlag != "" {
		recording = recordingFlag
	}
	if recording == "" {
		recording = "recording-" + time.Now().Format("2006-01-02-150405")
	}

	observer, flushObserver := buildObserver(cfg)
	defer flushObserver()

	detector, err := buildDetector(cfg.VAD)
	if err != nil {
		return err
	}

	engine, err := transcriber.BuildEngine(cfg.Engine, observer)
	if err != nil {
		return err
	}

	sinks := []sink.Sink{sink.NewConsole(nil)}

	var st *store.Store
	if cfg.Store.Enabled {
		st, err = store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		sinks = append(sinks, sink.NewStoreSink(st, cfg.Store.Category, logger, observer))
	}

	var broadcast *sink.Broadcast
	if cfg.Live.Enabled {
		broadcast = sink.NewBroadcast(logger)
		defer broadcast.Close()
		sinks = append(sinks, broadcast)
	}

	out := sink.NewMulti(func(name string, err error) {
		logger.Warn("sink write failed", "sink", name, "error", err)
	}, sinks...)

	session := transcriber.NewSession(recording)
	orch := transcriber.NewOrchestrator(transcriber.OrchestratorConfig{
		Session:    session,
		Detector:   detector,
		Segments:   cfg.SegmentsConfig(),
		QueueDepth: cfg.Queue.Capacity,
		Adapter:    asr.NewAdapter(engine, logger, observer),
		Sink:       out,
		Logger:     logger,
		Observer:   observer,
	})

	mic := audio.NewMicSource(audio.MicConfig{
		SampleRate: cfg.Audio.SampleRate,
		DeviceName: cfg.Audio.Device,
	})
	defer mic.Close()

	if cfg.Live.Enabled {
		startLiveServer(cfg, broadcast, logger)
	}

	logger.Info("session starting",
		"session_id", session.ID,
		"recording", recording,
		"engine", engine.Name(),
		"sample_rate", cfg.Audio.SampleRate,
	)

	lifecycle := runner.NewLifecycleRunner(orch, runner.Hooks{
		OnStop: func() {
			logger.Info("session ended", "session_id", session.ID)
		},
	}, 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch.Run(ctx)
	if err := mic.Start(ctx, orch.OnSamples); err != nil {
		return err
	}

	return lifecycle.Run(ctx)
}

func buildDetector(cfg transcriber.VADConfig) (vad.Detector, error) {
	switch cfg.Engine {
	case "energy":
		return vad.NewEnergyDetector(cfg.EnergyThreshold), nil
	default:
		return vad.NewWebRTCDetector(cfg.Aggressiveness)
	}
}

func buildObserver(cfg transcriber.Config) (metrics.Observer, func()) {
	switch cfg.Metrics.Mode {
	case "prometheus":
		return metrics.NewPrometheusObserver(prometheus.DefaultRegisterer), func() {}
	case "jsonl":
		f, err := os.OpenFile(cfg.Metrics.JSONLPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			slog.Warn("metrics file unavailable", "path", cfg.Metrics.JSONLPath, "error", err)
			return metrics.NoopObserver{}, func() {}
		}
		async := metrics.NewAsyncObserver(metrics.NewJSONLObserver(f), cfg.Metrics.AsyncBuffer)
		return async, func() {
			async.Close()
			f.Close()
		}
	default:
		return metrics.NoopObserver{}, func() {}
	}
}

func startLiveServer(cfg transcriber.Config, broadcast *sink.Broadcast, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/ws", broadcast)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	go func() {
		logger.Info("live server listening", "addr", cfg.Live.Addr)
		if err := http.ListenAndServe(cfg.Live.Addr, mux); err != nil {
			logger.Error("live server stopped", "error", err)
		}
	}()
}
