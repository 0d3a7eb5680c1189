package spectral

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-rf/logging"
)

// STFT slides a window along an I/Q capture and transforms each frame
type STFT struct {
	fft    *FFT
	power  *PowerSpectrum
	logger logging.Logger
}

// STFTResult holds the frames of a short-time transform. Every frame is
// fftshifted, so bin i of each row lines up with CenteredFrequencies.
type STFTResult struct {
	Power          [][]float64    `json:"power"`           // Time x Frequency |X|^2
	Complex        [][]complex128 `json:"-"`               // Raw shifted frames (not serialized)
	TimeFrames     int            `json:"time_frames"`     // Number of time frames
	FreqBins       int            `json:"freq_bins"`       // Bins per frame (= window size)
	SampleRate     float64        `json:"sample_rate"`     // Sample rate
	WindowSize     int            `json:"window_size"`     // FFT window size
	HopSize        int            `json:"hop_size"`        // Hop size between frames
	FreqResolution float64        `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64        `json:"time_resolution"` // Time resolution (seconds/frame)
}

// FrameWindow tapers one frame; windowing.Window satisfies it
type FrameWindow interface {
	ApplyComplex(signal []complex128) ([]complex128, error)
}

// NewSTFT creates a new STFT calculator on the go-dsp backend
func NewSTFT() *STFT {
	return NewSTFTWithFFT(NewFFT())
}

// NewSTFTWithFFT creates an STFT calculator sharing fft
func NewSTFTWithFFT(fft *FFT) *STFT {
	return &STFT{
		fft:    fft,
		power:  NewPowerSpectrum(),
		logger: logging.WithFields(logging.Fields{"component": "stft"}),
	}
}

// Compute transforms every complete frame of windowSize samples, hopSize
// apart, using a pool of workers. A trailing partial frame is dropped.
// window may be nil for a rectangular frame.
func (s *STFT) Compute(ctx context.Context, signal []complex128, windowSize, hopSize int, sampleRate float64, window FrameWindow) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}

	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}

	numFrames := (len(signal)-windowSize)/hopSize + 1
	if len(signal) < windowSize || numFrames <= 0 {
		return nil, fmt.Errorf("signal too short for given window size and hop size")
	}

	power := make([][]float64, numFrames)
	complexSpectrum := make([][]complex128, numFrames)

	numWorkers := s.getOptimalWorkerCount(numFrames)

	type frameJob struct {
		frameIdx int
		startIdx int
	}

	jobs := make(chan frameJob, numFrames)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		frameErr error
	)

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for job := range jobs {
				if ctx.Err() != nil {
					continue
				}

				frame := signal[job.startIdx : job.startIdx+windowSize]
				if window != nil {
					windowed, err := window.ApplyComplex(frame)
					if err != nil {
						errOnce.Do(func() { frameErr = err })
						continue
					}
					frame = windowed
				}

				bins := Shift(s.fft.Compute(frame))
				complexSpectrum[job.frameIdx] = bins
				power[job.frameIdx] = s.power.Compute(bins)
			}
		}()
	}

	for frameIdx := range numFrames {
		jobs <- frameJob{frameIdx: frameIdx, startIdx: frameIdx * hopSize}
	}
	close(jobs)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frameErr != nil {
		return nil, fmt.Errorf("failed to window frame: %w", frameErr)
	}

	s.logger.Debug("STFT computed", logging.Fields{
		"frames":  numFrames,
		"window":  windowSize,
		"hop":     hopSize,
		"workers": numWorkers,
	})

	return &STFTResult{
		Power:          power,
		Complex:        complexSpectrum,
		TimeFrames:     numFrames,
		FreqBins:       windowSize,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: sampleRate / float64(windowSize),
		TimeResolution: float64(hopSize) / sampleRate,
	}, nil
}

// getOptimalWorkerCount determines the number of workers based on workload
func (s *STFT) getOptimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
