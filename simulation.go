// Copyright 2026 The sfgsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package sfgsim

import (
	"math"

	"github.com/pkg/errors"
)

// An InputFunc produces the value of one graph input for a given
// iteration.
type InputFunc func(iteration uint32) Number

// An InputProvider is a source of per-iteration input samples: a
// ConstantInput, a SequenceInput or a FunctionInput.
type InputProvider interface {
	inputProvider()
}

// ConstantInput provides the same value every iteration.
type ConstantInput Number

// SequenceInput provides values indexed by iteration. Binding a sequence
// fixes the simulation's input length; all bound sequences must agree on
// it.
type SequenceInput []Number

// FunctionInput provides values computed from the iteration number.
type FunctionInput InputFunc

func (ConstantInput) inputProvider() {}
func (SequenceInput) inputProvider() {}
func (FunctionInput) inputProvider() {}

const noInputLength = -1

// A Simulation owns the compiled program, the delay registers and the
// accumulated per-iteration results of one signal-flow graph. It is not
// safe for concurrent use.
type Simulation struct {
	code        *Code
	delays      []Number
	inputFns    []func(iteration uint32) (Number, error)
	inputLength int
	iteration   uint32
	history     [][]Number
}

// New compiles g and returns a simulation with all delay registers at
// their initial values and all inputs bound to the zero function.
func New(g *SFG) (*Simulation, error) {
	code, err := Compile(g)
	if err != nil {
		return nil, err
	}
	s := &Simulation{
		code:        code,
		delays:      make([]Number, len(code.Delays)),
		inputFns:    make([]func(uint32) (Number, error), code.InputCount),
		inputLength: noInputLength,
	}
	for i, d := range code.Delays {
		s.delays[i] = d.Initial
	}
	for i := range s.inputFns {
		s.inputFns[i] = zeroInput
	}
	return s, nil
}

// NewWithInputs compiles g and binds the given input providers. Nil
// entries keep the zero default.
func NewWithInputs(g *SFG, providers []InputProvider) (*Simulation, error) {
	s, err := New(g)
	if err != nil {
		return nil, err
	}
	if err := s.SetInputs(providers); err != nil {
		return nil, err
	}
	return s, nil
}

func zeroInput(uint32) (Number, error) { return 0, nil }

// Code returns the compiled program driving the simulation.
func (s *Simulation) Code() *Code { return s.code }

// Iteration returns the number of iterations run so far.
func (s *Simulation) Iteration() uint32 { return s.iteration }

// SetInput binds provider to input index.
func (s *Simulation) SetInput(index int, provider InputProvider) error {
	if index < 0 || index >= len(s.inputFns) {
		return errors.Wrapf(ErrInputIndexOutOfRange, "expected 0-%d, got %d", len(s.inputFns)-1, index)
	}
	switch p := provider.(type) {
	case ConstantInput:
		s.inputFns[index] = func(uint32) (Number, error) { return Number(p), nil }
	case SequenceInput:
		if s.inputLength == noInputLength {
			s.inputLength = len(p)
		} else if s.inputLength != len(p) {
			return errors.Wrapf(ErrInconsistentInputLength, "was %d, got %d", s.inputLength, len(p))
		}
		s.inputFns[index] = func(n uint32) (Number, error) {
			if int(n) >= len(p) {
				return 0, errors.Errorf("input sequence of length %d exhausted at iteration %d", len(p), n)
			}
			return p[n], nil
		}
	case FunctionInput:
		s.inputFns[index] = func(n uint32) (Number, error) { return p(n), nil }
	default:
		return errors.Errorf("unsupported input provider %T", provider)
	}
	return nil
}

// SetInputs binds one provider per graph input. The slice length must
// equal the input count; nil entries leave the current binding in place.
func (s *Simulation) SetInputs(providers []InputProvider) error {
	if len(providers) != len(s.inputFns) {
		return errors.Errorf("wrong number of inputs supplied to simulation (expected %d, got %d)", len(s.inputFns), len(providers))
	}
	for i, p := range providers {
		if p == nil {
			continue
		}
		if err := s.SetInput(i, p); err != nil {
			return err
		}
	}
	return nil
}

// Step runs a single iteration. See RunUntil for the parameters.
func (s *Simulation) Step(save bool, bitsOverride int, quantize bool) ([]Number, error) {
	return s.RunFor(1, save, bitsOverride, quantize)
}

// RunFor advances the simulation by iterations steps.
func (s *Simulation) RunFor(iterations uint32, save bool, bitsOverride int, quantize bool) ([]Number, error) {
	if iterations > math.MaxUint32-s.iteration {
		return nil, errors.WithStack(ErrIterationOverflow)
	}
	return s.RunUntil(s.iteration+iterations, save, bitsOverride, quantize)
}

// RunUntil runs iterations until the counter reaches iteration, saving
// each iteration's full result snapshot when save is set. It returns the
// last iteration's output values, or nil when the target has already been
// reached. bitsOverride and quantize are handed to the interpreter as
// described on Code.Run.
func (s *Simulation) RunUntil(iteration uint32, save bool, bitsOverride int, quantize bool) ([]Number, error) {
	var outputs []Number
	inputs := make([]Number, s.code.InputCount)
	for s.iteration < iteration {
		for i, fn := range s.inputFns {
			v, err := fn(s.iteration)
			if err != nil {
				return nil, err
			}
			inputs[i] = v
		}
		state, err := s.code.Run(inputs, s.delays, bitsOverride, quantize)
		if err != nil {
			return nil, err
		}
		outputs = state.Stack
		if save {
			s.history = append(s.history, state.Results)
		}
		s.iteration++
	}
	return outputs, nil
}

// Run runs until the bound input sequences are exhausted. It fails when
// no fixed-length input sequence has been bound.
func (s *Simulation) Run(save bool, bitsOverride int, quantize bool) ([]Number, error) {
	if s.inputLength == noInputLength {
		return nil, errors.WithStack(ErrUnlimitedRun)
	}
	return s.RunUntil(uint32(s.inputLength), save, bitsOverride, quantize)
}

// Results materializes the saved history column-major: one sequence per
// result key, indexed by saved iteration.
func (s *Simulation) Results() map[string][]Number {
	results := make(map[string][]Number)
	if len(s.history) == 0 {
		return results
	}
	for i, key := range s.code.ResultKeys {
		values := make([]Number, len(s.history))
		for t, snapshot := range s.history {
			values[t] = snapshot[i]
		}
		results[key] = values
	}
	return results
}

// ClearResults drops the saved history.
func (s *Simulation) ClearResults() {
	s.history = nil
}

// ClearState resets the delay registers to their initial values. The
// iteration counter is preserved, so histories saved before and after
// stay aligned with it.
func (s *Simulation) ClearState() {
	for i, d := range s.code.Delays {
		s.delays[i] = d.Initial
	}
}
