// Copyright 2026 The sfgsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package oplib provides ready-made signal-flow-graph blocks built on the
// sfgsim graph API: filters, accumulators and radix-2 FFTs.
package oplib

import (
	"github.com/pkg/errors"

	"github.com/asiclab/sfgsim"
)

// FIR returns a direct-form FIR filter:
//
//	y[n] = taps[0]*x[n] + taps[1]*x[n-1] + ... + taps[k]*x[n-k]
func FIR(taps []sfgsim.Number) (*sfgsim.SFG, error) {
	if len(taps) == 0 {
		return nil, errors.New("fir filter needs at least one tap")
	}
	in := sfgsim.NewInput()
	line := in.Output(0)
	acc := sfgsim.NewConstMul(line, taps[0]).Output(0)
	for _, tap := range taps[1:] {
		line = sfgsim.NewDelay(line, 0).Output(0)
		acc = sfgsim.NewAdd(acc, sfgsim.NewConstMul(line, tap).Output(0)).Output(0)
	}
	out := sfgsim.NewOutput(acc)
	return sfgsim.NewSFG([]*sfgsim.Operation{in}, []*sfgsim.Operation{out})
}

// Accumulator returns a running sum with one-sample feedback:
//
//	y[n] = x[n] + y[n-1], y[-1] = initial
func Accumulator(initial sfgsim.Number) (*sfgsim.SFG, error) {
	in := sfgsim.NewInput()
	add := sfgsim.NewAdd(in.Output(0), nil)
	reg := sfgsim.NewDelay(add.Output(0), initial)
	add.Input(1).Connect(reg.Output(0))
	out := sfgsim.NewOutput(add.Output(0))
	return sfgsim.NewSFG([]*sfgsim.Operation{in}, []*sfgsim.Operation{out})
}
