// Package transcode loads whole I/Q capture files into sample buffers and
// writes them back out, with optional zstd compression.
package transcode

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/RyanBlaney/sonido-rf/iq"
	"github.com/RyanBlaney/sonido-rf/logging"
)

// IQData represents a decoded capture
type IQData struct {
	Samples     iq.Buffer     `json:"-"`
	Filename    string        `json:"filename,omitempty"`
	Format      Format        `json:"format"`
	Compressed  bool          `json:"compressed"`
	RawValues   int           `json:"raw_values"` // I and Q values read, before pairing
	SampleCount int           `json:"sample_count"`
	SampleRate  float64       `json:"sample_rate,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	// Format of the raw values; empty means infer from the file extension
	// and fall back to cf32
	Format Format `json:"format"`

	// MaxSamples keeps only the first MaxSamples complex samples (0 = all)
	MaxSamples int `json:"max_samples"`

	// SampleRate is only used to fill in IQData.Duration
	SampleRate float64 `json:"sample_rate"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		Format:     "",
		MaxSamples: 0, // No limit
	}
}

// Decoder handles raw I/Q decoding
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new I/Q decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// DecodeFile reads and decodes a whole capture file
func (d *Decoder) DecodeFile(filename string) (*IQData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "iq_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	logger.Debug("Starting I/Q file decode")

	data, err := os.ReadFile(filename)
	if err != nil {
		logger.Error(err, "Failed to read I/Q file")
		return nil, fmt.Errorf("failed to read I/Q file: %w", err)
	}

	format := d.config.Format
	if format == "" {
		if guessed, ok := FormatFromFilename(filename); ok {
			format = guessed
		}
	}

	result, err := d.decode(data, format, strings.HasSuffix(strings.ToLower(filename), zstdExt), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	result.Filename = filename
	return result, nil
}

// DecodeBytes decodes a capture held in memory
func (d *Decoder) DecodeBytes(data []byte) (*IQData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "iq_decoder",
		"function":  "DecodeBytes",
		"data_size": len(data),
	})

	return d.decode(data, d.config.Format, false, logger)
}

// DecodeReader decodes everything read from reader
func (d *Decoder) DecodeReader(reader io.Reader) (*IQData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "iq_decoder",
		"function":  "DecodeReader",
	})

	data, err := io.ReadAll(reader)
	if err != nil {
		logger.Error(err, "Failed to read data from reader")
		return nil, fmt.Errorf("failed to read I/Q data: %w", err)
	}

	logger.Debug("Data read from reader", logging.Fields{
		"data_size": len(data),
	})

	return d.decode(data, d.config.Format, false, logger)
}

func (d *Decoder) decode(data []byte, format Format, zstdName bool, logger logging.Logger) (*IQData, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	// A .zst name must decompress. Without one, the magic number is only a
	// hint: raw cf32 whose first I value has the magic's bits decodes as-is.
	compressed := false
	switch {
	case zstdName:
		data, err = decompress(data)
		if err != nil {
			logger.Error(err, "Failed to decompress zstd input")
			return nil, fmt.Errorf("zstd decompression failed: %w", err)
		}
		compressed = true
	case isZstd(data):
		if plain, err := decompress(data); err == nil {
			data = plain
			compressed = true
		} else {
			logger.Warn("zstd magic found but frame is invalid, decoding as raw samples", logging.Fields{
				"error": err.Error(),
			})
		}
	}

	if rem := len(data) % format.BytesPerValue(); rem != 0 {
		logger.Warn("Dropping trailing partial value", logging.Fields{
			"trailing_bytes": rem,
		})
	}

	var samples iq.Buffer
	var rawValues int
	switch format {
	case FormatCF32:
		values := bytesToFloat32(data)
		rawValues = len(values)
		samples = iq.Decode(values)
	default:
		values := bytesToFloat64(data, format)
		rawValues = len(values)
		samples = iq.Decode(values)
	}

	if d.config.MaxSamples > 0 {
		samples = samples.Head(d.config.MaxSamples)
	}

	result := &IQData{
		Samples:     samples,
		Format:      format,
		Compressed:  compressed,
		RawValues:   rawValues,
		SampleCount: len(samples),
		SampleRate:  d.config.SampleRate,
		Timestamp:   time.Now(),
	}
	if d.config.SampleRate > 0 {
		result.Duration = time.Duration(float64(len(samples)) / d.config.SampleRate * float64(time.Second))
	}

	logger.Debug("I/Q decode completed", logging.Fields{
		"format":     format,
		"compressed": compressed,
		"raw_values": rawValues,
		"samples":    len(samples),
		"duration":   result.Duration.Seconds(),
	})

	return result, nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// bytesToFloat32 converts little-endian float32 bytes, dropping a trailing
// partial value
func bytesToFloat32(data []byte) []float32 {
	count := len(data) / 4
	values := make([]float32, count)
	for i := range count {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return values
}

// bytesToFloat64 converts every non-cf32 layout to scaled float64 values
func bytesToFloat64(data []byte, format Format) []float64 {
	size := format.BytesPerValue()
	count := len(data) / size
	values := make([]float64, count)

	for i := range count {
		b := data[i*size:]
		switch format {
		case FormatCF64:
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		case FormatCS16:
			values[i] = float64(int16(binary.LittleEndian.Uint16(b))) / 32768.0
		case FormatCS8:
			values[i] = float64(int8(b[0])) / 128.0
		case FormatCU8:
			values[i] = (float64(b[0]) - 127.5) / 127.5
		}
	}
	return values
}

// GetConfig returns decoder configuration information
func (d *Decoder) GetConfig() map[string]any {
	return map[string]any{
		"format":      d.config.Format,
		"max_samples": d.config.MaxSamples,
		"sample_rate": d.config.SampleRate,
	}
}

// ValidateConfig validates the decoder configuration
func (d *Decoder) ValidateConfig() error {
	if d.config.Format != "" {
		if _, err := ParseFormat(string(d.config.Format)); err != nil {
			return err
		}
	}
	if d.config.MaxSamples < 0 {
		return fmt.Errorf("max samples must be non-negative: %d", d.config.MaxSamples)
	}
	if d.config.SampleRate < 0 {
		return fmt.Errorf("sample rate must be non-negative: %v", d.config.SampleRate)
	}
	return nil
}

// GetSupportedFormats returns a list of formats supported by this decoder
func (d *Decoder) GetSupportedFormats() []string {
	return []string{
		string(FormatCF32), string(FormatCF64), string(FormatCS16),
		string(FormatCS8), string(FormatCU8),
	}
}
