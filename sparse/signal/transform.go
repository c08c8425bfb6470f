package signal

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// FromTimeSeries transforms two real time series of equal length into the
// full complex spectrum of each channel.
func FromTimeSeries(a, e []float64) (Signal, error) {
	if len(a) != len(e) {
		return Signal{}, fmt.Errorf("%w: A=%d E=%d", ErrLengthMismatch, len(a), len(e))
	}
	if len(a) == 0 {
		return Signal{}, ErrEmptyInput
	}

	plan, err := algofft.NewPlan64(len(a))
	if err != nil {
		return Signal{}, fmt.Errorf("signal: failed to create FFT plan: %w", err)
	}

	out := New(len(a))
	in := make([]complex128, len(a))
	for _, ch := range []struct {
		src []float64
		dst []complex128
	}{{a, out.A}, {e, out.E}} {
		for i, v := range ch.src {
			in[i] = complex(v, 0)
		}
		if err := plan.Forward(ch.dst, in); err != nil {
			return Signal{}, fmt.Errorf("signal: forward FFT failed: %w", err)
		}
	}
	return out, nil
}

// ToTimeSeries inverts [FromTimeSeries], returning the real part of the
// inverse transform of each channel.
func ToTimeSeries(s Signal) (a, e []float64, err error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	if s.Len() == 0 {
		return nil, nil, ErrEmptyInput
	}

	plan, err := algofft.NewPlan64(s.Len())
	if err != nil {
		return nil, nil, fmt.Errorf("signal: failed to create FFT plan: %w", err)
	}

	tmp := make([]complex128, s.Len())
	a = make([]float64, s.Len())
	e = make([]float64, s.Len())
	for _, ch := range []struct {
		src []complex128
		dst []float64
	}{{s.A, a}, {s.E, e}} {
		if err := plan.Inverse(tmp, ch.src); err != nil {
			return nil, nil, fmt.Errorf("signal: inverse FFT failed: %w", err)
		}
		for i, v := range tmp {
			ch.dst[i] = real(v)
		}
	}
	return a, e, nil
}
