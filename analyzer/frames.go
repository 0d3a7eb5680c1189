package analyzer

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/sonido-rf/algorithms/spectral"
	"github.com/RyanBlaney/sonido-rf/algorithms/windowing"
	"github.com/RyanBlaney/sonido-rf/iq"
	"github.com/RyanBlaney/sonido-rf/logging"
)

// FrameDetection is the detection result for one fftSize-sample frame of a
// longer capture
type FrameDetection struct {
	*DetectionResult
	Frame  int     `json:"frame"`
	Offset int     `json:"offset"` // index of the frame's first sample
	Time   float64 `json:"time"`   // Offset in seconds
}

// FrameScan is DetectFrames' result: one detection per frame over a shared
// frequency axis
type FrameScan struct {
	Frames      []FrameDetection `json:"frames"`
	Frequencies []float64        `json:"frequencies"`
	SampleRate  float64          `json:"sample_rate"`
	CenterFreq  float64          `json:"center_freq"`
	FFTSize     int              `json:"fft_size"`
	Hop         int              `json:"hop"`
}

// Flagged returns only the frames with at least one anomaly
func (s *FrameScan) Flagged() []FrameDetection {
	var out []FrameDetection
	for _, f := range s.Frames {
		if f.Detected() {
			out = append(out, f)
		}
	}
	return out
}

// PowerDB returns the frames as rows of 10*log10(power)
func (s *FrameScan) PowerDB() [][]float64 {
	rows := make([][]float64, len(s.Frames))
	for i, f := range s.Frames {
		rows[i] = f.PowerDB()
	}
	return rows
}

// Flux returns the positive spectral flux between consecutive frames, in dB,
// one value per frame after the first
func (s *FrameScan) Flux() []float64 {
	return spectral.NewSpectralFlux().Compute(s.PowerDB())
}

// DetectFrames runs the threshold rule on every complete fftSize-sample
// frame of the capture, hop samples apart (hop <= 0 means back to back).
// Each frame has its own mean, deviation and threshold, so a burst that is
// diluted in a single long transform still stands out in its frame.
func (a *SpectralAnalyzer) DetectFrames(ctx context.Context, signal iq.Buffer, sampleRate, centerFreq float64, fftSize, hop int, k float64) (*FrameScan, error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if fftSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive: %d", fftSize)
	}
	if hop <= 0 {
		hop = fftSize
	}

	window, err := windowing.New(a.config.Window, fftSize)
	if err != nil {
		return nil, err
	}

	stft := spectral.NewSTFTWithFFT(a.fft)
	frames, err := stft.Compute(ctx, a.removeDC(signal, sampleRate), fftSize, hop, sampleRate, window)
	if err != nil {
		return nil, err
	}

	freqs := spectral.CenteredFrequencies(fftSize, sampleRate, centerFreq)
	scan := &FrameScan{
		Frames:      make([]FrameDetection, frames.TimeFrames),
		Frequencies: freqs,
		SampleRate:  sampleRate,
		CenterFreq:  centerFreq,
		FFTSize:     fftSize,
		Hop:         hop,
	}

	flagged := 0
	for i, power := range frames.Power {
		offset := i * hop
		scan.Frames[i] = FrameDetection{
			DetectionResult: threshold(power, freqs, k),
			Frame:           i,
			Offset:          offset,
			Time:            float64(offset) / sampleRate,
		}
		if scan.Frames[i].Detected() {
			flagged++
		}
	}

	a.logger.Debug("Frame scan completed", logging.Fields{
		"frames":  frames.TimeFrames,
		"fft":     fftSize,
		"hop":     hop,
		"k":       k,
		"flagged": flagged,
	})

	return scan, nil
}
