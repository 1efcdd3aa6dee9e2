package vad

import (
	"errors"
	"math"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/harunnryd/echoscribe/pkg/audio"
	"github.com/harunnryd/echoscribe/pkg/errorsx"
)

// Detector classifies a short PCM window as speech or non-speech.
type Detector interface {
	Classify(pcm []int16, sampleRate int) (bool, error)
}

// WebRTCDetector wraps the WebRTC voice activity model. Aggressiveness
// runs 0 (least filtering) to 3 (most aggressive).
type WebRTCDetector struct {
	vad *webrtcvad.VAD
}

func NewWebRTCDetector(aggressiveness int) (*WebRTCDetector, error) {
	if aggressiveness < 0 || aggressiveness > 3 {
		return nil, errorsx.Wrap(errors.New("aggressiveness must be 0..3"), errorsx.ReasonConfigInvalid)
	}
	v, err := webrtcvad.New()
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonVADClassify)
	}
	if err := v.SetMode(aggressiveness); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonVADClassify)
	}
	return &WebRTCDetector{vad: v}, nil
}

func (d *WebRTCDetector) Classify(pcm []int16, sampleRate int) (bool, error) {
	active, err := d.vad.Process(sampleRate, audio.PCM16Bytes(pcm))
	if err != nil {
		return false, errorsx.Wrap(err, errorsx.ReasonVADClassify)
	}
	return active, nil
}

var _ Detector = (*WebRTCDetector)(nil)

// EnergyDetector is a simple RMS threshold fallback for hosts where the
// WebRTC model is unavailable.
type EnergyDetector struct {
	Threshold float64
}

func NewEnergyDetector(threshold float64) *EnergyDetector {
	if threshold <= 0 {
		threshold = 500
	}
	return &EnergyDetector{Threshold: threshold}
}

func (d *EnergyDetector) Classify(pcm []int16, sampleRate int) (bool, error) {
	if len(pcm) == 0 {
		return false, nil
	}
	var sum float64
	for _, s := range pcm {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(pcm)))
	return rms >= d.Threshold, nil
}

var _ Detector = (*EnergyDetector)(nil)
