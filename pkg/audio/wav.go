package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/harunnryd/echoscribe/pkg/errorsx"
)

type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// EncodeWAV wraps mono 16-bit PCM samples in a RIFF/WAVE container.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, errorsx.Wrap(errors.New("empty sample buffer"), errorsx.ReasonAudioEncode)
	}
	if sampleRate <= 0 {
		return nil, errorsx.Wrap(fmt.Errorf("invalid sample rate %d", sampleRate), errorsx.ReasonAudioEncode)
	}

	const channels, bits = 1, 16
	dataSize := uint32(len(samples) * 2)
	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   channels,
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * channels * bits / 8),
		BlockAlign:    channels * bits / 8,
		BitsPerSample: bits,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAudioEncode)
	}
	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonAudioEncode)
	}
	return buf.Bytes(), nil
}

// DecodeWAV extracts mono 16-bit PCM samples and the sample rate from a
// RIFF/WAVE container produced by EncodeWAV.
func DecodeWAV(data []byte) ([]int16, int, error) {
	if len(data) < 44 {
		return nil, 0, errorsx.Wrap(fmt.Errorf("wav data too short: %d bytes", len(data)), errorsx.ReasonAudioEncode)
	}
	var header wavHeader
	if err := binary.Read(bytes.NewReader(data[:44]), binary.LittleEndian, &header); err != nil {
		return nil, 0, errorsx.Wrap(err, errorsx.ReasonAudioEncode)
	}
	if string(header.ChunkID[:]) != "RIFF" || string(header.Format[:]) != "WAVE" {
		return nil, 0, errorsx.Wrap(errors.New("not a RIFF/WAVE stream"), errorsx.ReasonAudioEncode)
	}
	if header.AudioFormat != 1 || header.BitsPerSample != 16 {
		return nil, 0, errorsx.Wrap(errors.New("only 16-bit PCM is supported"), errorsx.ReasonAudioEncode)
	}

	payload := data[44:]
	if int(header.Subchunk2Size) < len(payload) {
		payload = payload[:header.Subchunk2Size]
	}
	samples := make([]int16, len(payload)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(payload[i*2:]))
	}
	return samples, int(header.SampleRate), nil
}
