// Copyright 2026 The sfgsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package sfgsim

// Constructors for the built-in operation kinds. Source arguments may be
// nil to leave an input port unconnected; feedback edges are closed later
// with InputPort.Connect:
//
//	add := sfgsim.NewAdd(in.Output(0), nil)
//	t := sfgsim.NewDelay(add.Output(0), 0)
//	add.Input(1).Connect(t.Output(0))

func connect(o *Operation, srcs ...*OutputPort) *Operation {
	for i, src := range srcs {
		if src != nil {
			o.ins[i].Connect(src)
		}
	}
	return o
}

// NewInput returns an Input operation: a point where one per-iteration
// input sample enters the graph.
func NewInput() *Operation {
	return newOperation(KindInput, 0, 1)
}

// NewOutput returns an Output operation forwarding src out of the graph.
func NewOutput(src *OutputPort) *Operation {
	return connect(newOperation(KindOutput, 1, 1), src)
}

// NewConstant returns a Constant operation producing v every iteration.
func NewConstant(v Number) *Operation {
	o := newOperation(KindConstant, 0, 1)
	o.value = v
	return o
}

// NewAdd returns an Add operation computing a + b.
func NewAdd(a, b *OutputPort) *Operation {
	return connect(newOperation(KindAdd, 2, 1), a, b)
}

// NewSub returns a Sub operation computing a - b.
func NewSub(a, b *OutputPort) *Operation {
	return connect(newOperation(KindSub, 2, 1), a, b)
}

// NewMul returns a Mul operation computing a * b.
func NewMul(a, b *OutputPort) *Operation {
	return connect(newOperation(KindMul, 2, 1), a, b)
}

// NewDiv returns a Div operation computing a / b.
func NewDiv(a, b *OutputPort) *Operation {
	return connect(newOperation(KindDiv, 2, 1), a, b)
}

// NewMin returns a Min operation. Both operands must be real at run time.
func NewMin(a, b *OutputPort) *Operation {
	return connect(newOperation(KindMin, 2, 1), a, b)
}

// NewMax returns a Max operation. Both operands must be real at run time.
func NewMax(a, b *OutputPort) *Operation {
	return connect(newOperation(KindMax, 2, 1), a, b)
}

// NewSqrt returns a Sqrt operation (principal complex square root).
func NewSqrt(src *OutputPort) *Operation {
	return connect(newOperation(KindSqrt, 1, 1), src)
}

// NewConj returns a Conj operation (complex conjugate).
func NewConj(src *OutputPort) *Operation {
	return connect(newOperation(KindConj, 1, 1), src)
}

// NewAbs returns an Abs operation (complex magnitude, real-valued result).
func NewAbs(src *OutputPort) *Operation {
	return connect(newOperation(KindAbs, 1, 1), src)
}

// NewConstMul returns a ConstMul operation computing src * v.
func NewConstMul(src *OutputPort, v Number) *Operation {
	o := connect(newOperation(KindConstMul, 1, 1), src)
	o.value = v
	return o
}

// NewButterfly returns a Butterfly operation with outputs a+b and a-b.
func NewButterfly(a, b *OutputPort) *Operation {
	return connect(newOperation(KindButterfly, 2, 2), a, b)
}

// NewDelay returns a Delay operation: a one-sample register whose output
// at iteration n is its input at n-1, and initial at n = 0. Delays are the
// only operations through which graph cycles are legal.
func NewDelay(src *OutputPort, initial Number) *Operation {
	o := connect(newOperation(KindDelay, 1, 1), src)
	o.initial = initial
	return o
}

// NewCustom returns a Custom operation evaluated by the given callable.
// The callable must outlive any compiled code referencing it. See
// CustomFunc for the operand order it receives.
func NewCustom(name string, inputCount, outputCount int, evaluate CustomFunc, srcs ...*OutputPort) *Operation {
	o := newOperation(KindCustom, inputCount, outputCount)
	o.typeName = name
	o.evaluate = evaluate
	return connect(o, srcs...)
}
