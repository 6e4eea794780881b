// Copyright 2026 The sfgsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package sfgsim

import (
	"math/cmplx"

	"github.com/pkg/errors"
)

// NoOverride disables the interpreter's global bit-width override.
const NoOverride = -1

// State is the outcome of one simulated iteration.
type State struct {
	// Stack holds the iteration's output values, in output order.
	Stack []Number
	// Results holds the last value written to each result slot, indexed
	// like Code.ResultKeys.
	Results []Number
}

// machine is the per-iteration execution state of the stack VM.
type machine struct {
	stack   []Number
	sp      int
	results []Number
}

func (m *machine) push(v Number) {
	m.stack[m.sp] = v
	m.sp++
}

func (m *machine) pop() Number {
	m.sp--
	return m.stack[m.sp]
}

// Run executes one iteration of the compiled program. inputs must hold
// InputCount values and delays len(Delays) registers; delays are updated
// in place with the values feeding them this iteration.
//
// With quantize set and bitsOverride in [0, 64], per-edge quantize
// instructions are bypassed and every instruction's output is masked to
// the override width instead. With quantize clear, no quantization is
// applied and bitsOverride is ignored. bitsOverride < 0 (NoOverride)
// leaves per-edge quantization in effect.
func (c *Code) Run(inputs []Number, delays []Number, bitsOverride int, quantize bool) (*State, error) {
	if len(inputs) != c.InputCount {
		return nil, errors.Errorf("wrong number of inputs (expected %d, got %d)", c.InputCount, len(inputs))
	}
	if len(delays) != len(c.Delays) {
		return nil, errors.Errorf("wrong number of delay registers (expected %d, got %d)", len(c.Delays), len(delays))
	}

	// When the override is active the per-edge quantize instructions are
	// ignored and custom operations see quantize = false, as if every
	// edge had been requantized to the override width already.
	var overrideMask int64
	override := false
	if quantize && bitsOverride >= 0 {
		if bitsOverride > 64 {
			return nil, errors.Wrapf(ErrQuantizationTooWide, "bits override %d", bitsOverride)
		}
		if bitsOverride > 0 {
			overrideMask = BitMask(bitsOverride)
		}
		override = true
		quantize = false
	}

	m := machine{
		stack:   make([]Number, c.RequiredStackSize),
		results: make([]Number, len(c.ResultKeys)+1),
	}
	// A delay's visible value for this iteration is its pre-iteration
	// register content.
	for i, d := range c.Delays {
		m.results[d.Result] = delays[i]
	}

	for _, ins := range c.Instructions {
		switch ins.Op {
		case OpPushInput:
			m.push(inputs[ins.Index])
		case OpPushResult:
			m.push(m.results[ins.Index])
		case OpPushDelay:
			m.push(delays[ins.Index])
		case OpPushConstant:
			m.push(ins.Value)
		case OpQuantize:
			if quantize {
				v, err := maskNumber(m.pop(), ins.Mask)
				if err != nil {
					return nil, err
				}
				m.push(v)
			}
		case OpAdd:
			m.push(m.pop() + m.pop())
		case OpSub:
			rhs, lhs := m.pop(), m.pop()
			m.push(lhs - rhs)
		case OpMul:
			m.push(m.pop() * m.pop())
		case OpDiv:
			rhs, lhs := m.pop(), m.pop()
			m.push(lhs / rhs)
		case OpMin:
			v, err := minNumber(m.pop(), m.pop())
			if err != nil {
				return nil, err
			}
			m.push(v)
		case OpMax:
			v, err := maxNumber(m.pop(), m.pop())
			if err != nil {
				return nil, err
			}
			m.push(v)
		case OpSqrt:
			m.push(cmplx.Sqrt(m.pop()))
		case OpConj:
			m.push(cmplx.Conj(m.pop()))
		case OpAbs:
			m.push(complex(cmplx.Abs(m.pop()), 0))
		case OpConstMul:
			m.push(m.pop() * ins.Value)
		case OpUpdateDelay:
			delays[ins.Index] = m.pop()
		case OpCustom:
			src := c.CustomSources[ins.Index]
			op := c.CustomOperations[src.OperationIndex]
			values := make([]Number, op.InputCount)
			for i := range values {
				values[i] = m.pop()
			}
			v, err := op.Evaluate(src.OutputIndex, values, quantize)
			if err != nil {
				return nil, errors.Wrapf(ErrCustomOpFailed, "%v", err)
			}
			m.push(v)
		case OpForwardValue:
			// The value is already in place.
		}
		if override && m.sp > 0 {
			v, err := maskNumber(m.stack[m.sp-1], overrideMask)
			if err != nil {
				return nil, err
			}
			m.stack[m.sp-1] = v
		}
		if m.sp > 0 {
			m.results[ins.Result] = m.stack[m.sp-1]
		}
	}

	return &State{
		Stack:   m.stack[:c.OutputCount],
		Results: m.results[:len(c.ResultKeys)],
	}, nil
}
