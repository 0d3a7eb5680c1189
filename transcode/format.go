package transcode

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format names an on-disk I/Q sample layout. All multi-byte layouts are
// little-endian and interleaved I, Q, I, Q, ...
type Format string

const (
	FormatCF32 Format = "cf32" // float32 pairs, the default capture layout
	FormatCF64 Format = "cf64" // float64 pairs
	FormatCS16 Format = "cs16" // int16 pairs scaled by 1/32768
	FormatCS8  Format = "cs8"  // int8 pairs scaled by 1/128
	FormatCU8  Format = "cu8"  // rtl-sdr style offset-binary bytes
)

// ErrUnsupportedFormat is returned for unknown format names
var ErrUnsupportedFormat = errors.New("unsupported I/Q format")

// zstd frame magic, little-endian 0xFD2FB528
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

const zstdExt = ".zst"

// ParseFormat validates a format name. The empty string selects cf32.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatCF32, nil
	case FormatCF32, FormatCF64, FormatCS16, FormatCS8, FormatCU8:
		return f, nil
	case "complex64", "fc32", "cfile":
		return FormatCF32, nil
	case "complex128", "fc64":
		return FormatCF64, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// FormatFromFilename guesses the layout from the extension (ignoring a
// trailing .zst). ok is false when the extension says nothing.
func FormatFromFilename(filename string) (format Format, ok bool) {
	name := strings.TrimSuffix(strings.ToLower(filename), zstdExt)
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", false
	}
	return f, true
}

// BytesPerValue is the size of one I or Q component
func (f Format) BytesPerValue() int {
	switch f {
	case FormatCF64:
		return 8
	case FormatCF32:
		return 4
	case FormatCS16:
		return 2
	case FormatCS8, FormatCU8:
		return 1
	default:
		return 0
	}
}

// BytesPerSample is the size of one complex sample
func (f Format) BytesPerSample() int {
	return 2 * f.BytesPerValue()
}

func isZstd(data []byte) bool {
	return len(data) >= len(zstdMagic) &&
		data[0] == zstdMagic[0] && data[1] == zstdMagic[1] &&
		data[2] == zstdMagic[2] && data[3] == zstdMagic[3]
}
