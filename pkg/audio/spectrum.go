package audio

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum computes fixed-size frequency-magnitude snapshots from
// captured chunks. One instance is reused across ticks; the FFT plan
// allocation is not cheap.
type Spectrum struct {
	fft *fourier.FFT
	n   int
	in  []float64
}

// NewSpectrum creates a spectrum analyzer over windows of n samples.
// n should be a power of two; chunks shorter than n are zero-padded,
// longer chunks are truncated.
func NewSpectrum(n int) *Spectrum {
	return &Spectrum{
		fft: fourier.NewFFT(n),
		n:   n,
		in:  make([]float64, n),
	}
}

// Magnitudes returns the normalized magnitude snapshot of the chunk.
// Each bin is in [0,1], scaled so a full-scale sine concentrates near
// 1.0 in its bin.
func (s *Spectrum) Magnitudes(chunk Chunk) []float64 {
	samples := chunk.Floats()

	for i := range s.in {
		if i < len(samples) {
			s.in[i] = samples[i]
		} else {
			s.in[i] = 0
		}
	}

	coeffs := s.fft.Coefficients(nil, s.in)

	scale := float64(s.n) / 2
	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		m := cmplx.Abs(c) / scale
		if m > 1 {
			m = 1
		}
		mags[i] = m
	}
	return mags
}

// Volume reduces a magnitude snapshot to a single normalized volume
// scalar: the mean of the bins.
func Volume(mags []float64) float64 {
	if len(mags) == 0 {
		return 0
	}
	return stat.Mean(mags, nil)
}
