package transcode

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/RyanBlaney/sonido-rf/iq"
	"github.com/RyanBlaney/sonido-rf/logging"
)

// Encoder writes sample buffers in one of the raw I/Q layouts
type Encoder struct {
	format         Format
	useCompression bool
}

// NewEncoder creates an encoder; compress wraps the output in a zstd frame
func NewEncoder(format Format, compress bool) (*Encoder, error) {
	f, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	return &Encoder{format: f, useCompression: compress}, nil
}

// Encode serializes samples. Integer layouts clip to their full-scale range.
func (e *Encoder) Encode(samples iq.Buffer) ([]byte, error) {
	size := e.format.BytesPerValue()
	values := samples.Interleave()
	out := make([]byte, len(values)*size)

	for i, v := range values {
		b := out[i*size:]
		switch e.format {
		case FormatCF32:
			binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
		case FormatCF64:
			binary.LittleEndian.PutUint64(b, math.Float64bits(v))
		case FormatCS16:
			binary.LittleEndian.PutUint16(b, uint16(int16(clip(math.Round(v*32768), math.MinInt16, math.MaxInt16))))
		case FormatCS8:
			b[0] = byte(int8(clip(math.Round(v*128), math.MinInt8, math.MaxInt8)))
		case FormatCU8:
			b[0] = byte(clip(math.Round(v*127.5+127.5), 0, math.MaxUint8))
		}
	}

	if !e.useCompression {
		return out, nil
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(out, make([]byte, 0, len(out)/2)), nil
}

// EncodeFile writes samples to filename. A ".zst" suffix turns compression
// on regardless of the encoder setting.
func (e *Encoder) EncodeFile(filename string, samples iq.Buffer) error {
	logger := logging.WithFields(logging.Fields{
		"component": "iq_encoder",
		"function":  "EncodeFile",
		"filename":  filename,
	})

	enc := e
	if !e.useCompression && strings.HasSuffix(strings.ToLower(filename), zstdExt) {
		enc = &Encoder{format: e.format, useCompression: true}
	}

	data, err := enc.Encode(samples)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		logger.Error(err, "Failed to write I/Q file")
		return fmt.Errorf("failed to write I/Q file: %w", err)
	}

	logger.Debug("I/Q file written", logging.Fields{
		"format":     enc.format,
		"compressed": enc.useCompression,
		"samples":    len(samples),
		"bytes":      len(data),
	})
	return nil
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
