// Copyright 2026 The sfgsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package oplib

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"

	"github.com/asiclab/sfgsim"
)

// FFT returns an n-point radix-2 decimation-in-time FFT as a purely
// combinational graph of butterflies and twiddle multiplications. n must
// be a power of two. Input k feeds x[k]; output k produces X[k].
func FFT(n int) (*sfgsim.SFG, error) {
	if n < 1 || n&(n-1) != 0 {
		return nil, errors.Errorf("fft size %d is not a power of two", n)
	}
	ins := make([]*sfgsim.Operation, n)
	ports := make([]*sfgsim.OutputPort, n)
	for i := range ins {
		ins[i] = sfgsim.NewInput()
		ports[i] = ins[i].Output(0)
	}
	outs := make([]*sfgsim.Operation, n)
	for i, p := range fftPorts(ports) {
		outs[i] = sfgsim.NewOutput(p)
	}
	return sfgsim.NewSFG(ins, outs)
}

func fftPorts(x []*sfgsim.OutputPort) []*sfgsim.OutputPort {
	n := len(x)
	if n == 1 {
		return x
	}
	even := make([]*sfgsim.OutputPort, 0, n/2)
	odd := make([]*sfgsim.OutputPort, 0, n/2)
	for i, p := range x {
		if i%2 == 0 {
			even = append(even, p)
		} else {
			odd = append(odd, p)
		}
	}
	e := fftPorts(even)
	o := fftPorts(odd)
	out := make([]*sfgsim.OutputPort, n)
	for k := 0; k < n/2; k++ {
		tw := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		scaled := sfgsim.NewConstMul(o[k], tw)
		bfly := sfgsim.NewButterfly(e[k], scaled.Output(0))
		out[k] = bfly.Output(0)
		out[k+n/2] = bfly.Output(1)
	}
	return out
}
