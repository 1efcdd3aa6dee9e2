package audio

import (
	"context"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/harunnryd/echoscribe/pkg/errorsx"
)

// Source delivers normalized mono float32 audio to a callback until the
// context is cancelled or Close is called.
type Source interface {
	Start(ctx context.Context, onSamples func(samples []float32)) error
	SampleRate() int
	Close() error
}

// Device describes a capture device reported by the host audio backend.
type Device struct {
	Name      string
	IsDefault bool
}

// MicSource captures the default (or named) input device through
// miniaudio at a fixed mono float32 format.
type MicSource struct {
	sampleRate uint32
	deviceName string

	mu     sync.Mutex
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

type MicConfig struct {
	SampleRate int
	DeviceName string
}

func NewMicSource(cfg MicConfig) *MicSource {
	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 16000
	}
	return &MicSource{
		sampleRate: uint32(rate),
		deviceName: cfg.DeviceName,
	}
}

func (m *MicSource) SampleRate() int { return int(m.sampleRate) }

func (m *MicSource) Start(ctx context.Context, onSamples func(samples []float32)) error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonCaptureOpen)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = m.sampleRate

	if m.deviceName != "" {
		if id, ok := findDeviceID(mctx, m.deviceName); ok {
			deviceConfig.Capture.DeviceID = id.Pointer()
		}
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, in []byte, frameCount uint32) {
			if len(in) == 0 {
				return
			}
			onSamples(BytesToFloat32(in))
		},
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return errorsx.Wrap(err, errorsx.ReasonCaptureOpen)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return errorsx.Wrap(err, errorsx.ReasonCaptureStream)
	}

	m.mu.Lock()
	m.ctx = mctx
	m.device = device
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = m.Close()
	}()
	return nil
}

func (m *MicSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}
	if m.ctx != nil {
		_ = m.ctx.Uninit()
		m.ctx.Free()
		m.ctx = nil
	}
	return nil
}

// ListCaptureDevices enumerates input devices on the host.
func ListCaptureDevices() ([]Device, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonCaptureOpen)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	infos, err := mctx.Devices(malgo.Capture)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonCaptureOpen)
	}
	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{
			Name:      info.Name(),
			IsDefault: info.IsDefault != 0,
		})
	}
	return devices, nil
}

func findDeviceID(mctx *malgo.AllocatedContext, name string) (malgo.DeviceID, bool) {
	infos, err := mctx.Devices(malgo.Capture)
	if err != nil {
		return malgo.DeviceID{}, false
	}
	for _, info := range infos {
		if info.Name() == name {
			return info.ID, true
		}
	}
	return malgo.DeviceID{}, false
}
