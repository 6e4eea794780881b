// Copyright 2026 The sfgsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package sfgsim

import (
	"github.com/pkg/errors"
)

// Number is the sample type flowing through a signal-flow graph. All stack
// values, delay registers and results are Numbers. Arithmetic on real and
// imaginary parts is IEEE-754 binary64.
type Number = complex128

// BitMask returns the quantization mask for the given width. bits must be
// in [1, 64]; 64 yields an all-ones mask.
func BitMask(bits int) int64 {
	return int64(^uint64(0) >> uint(64-bits))
}

// Quantize masks the integer reinterpretation of v's real part to the
// given width, modeling fixed-point wrap-around. v must be real and bits
// must be in [1, 64].
func Quantize(v Number, bits int) (Number, error) {
	if bits < 1 || bits > 64 {
		return 0, errors.Wrapf(ErrQuantizationTooWide, "bits %d", bits)
	}
	return maskNumber(v, BitMask(bits))
}

func maskNumber(v Number, mask int64) (Number, error) {
	if imag(v) != 0 {
		return 0, errors.Wrapf(ErrComplexQuantize, "value %v", v)
	}
	return complex(float64(int64(real(v))&mask), 0), nil
}

func minNumber(lhs, rhs Number) (Number, error) {
	if imag(lhs) != 0 || imag(rhs) != 0 {
		return 0, errors.WithStack(ErrComplexOrder)
	}
	return complex(min(real(lhs), real(rhs)), 0), nil
}

func maxNumber(lhs, rhs Number) (Number, error) {
	if imag(lhs) != 0 || imag(rhs) != 0 {
		return 0, errors.WithStack(ErrComplexOrder)
	}
	return complex(max(real(lhs), real(rhs)), 0), nil
}
