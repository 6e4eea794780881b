// Copyright 2026 The sfgsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package sfgsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// Kind identifies the algebraic kind of an operation.
type Kind uint8

// Operation kinds.
const (
	KindConstant Kind = iota
	KindInput
	KindOutput
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindMin
	KindMax
	KindSqrt
	KindConj
	KindAbs
	KindConstMul
	KindButterfly
	KindDelay
	KindSFG
	KindCustom
)

var kindNames = [...]string{
	KindConstant:  "c",
	KindInput:     "in",
	KindOutput:    "out",
	KindAdd:       "add",
	KindSub:       "sub",
	KindMul:       "mul",
	KindDiv:       "div",
	KindMin:       "min",
	KindMax:       "max",
	KindSqrt:      "sqrt",
	KindConj:      "conj",
	KindAbs:       "abs",
	KindConstMul:  "cmul",
	KindButterfly: "bfly",
	KindDelay:     "t",
	KindSFG:       "sfg",
	KindCustom:    "custom",
}

// TypeName returns the short type name used in graph IDs and result keys.
func (k Kind) TypeName() string { return kindNames[k] }

// CustomFunc evaluates one output of a custom operation. inputs holds the
// operand values in the interpreter's pop order: inputs[0] is the value that
// was on top of the stack, which corresponds to the operation's
// highest-numbered input port. The quantize flag mirrors the interpreter's
// quantization mode so the callable can model its own word lengths.
type CustomFunc func(outputIndex int, inputs []Number, quantize bool) (Number, error)

// An Operation is a node in a signal-flow graph. The zero value is not
// usable; operations are created through the New* constructors and wired
// together through their ports.
type Operation struct {
	kind     Kind
	graphID  string
	typeName string // custom operations carry their own type name
	value    Number // KindConstant, KindConstMul
	initial  Number // KindDelay
	ins      []*InputPort
	outs     []*OutputPort
	evaluate CustomFunc // KindCustom
	def      *SFG       // KindSFG
}

func newOperation(kind Kind, inputCount, outputCount int) *Operation {
	o := &Operation{kind: kind}
	o.ins = make([]*InputPort, inputCount)
	for i := range o.ins {
		o.ins[i] = &InputPort{op: o, index: i}
	}
	o.outs = make([]*OutputPort, outputCount)
	for i := range o.outs {
		o.outs[i] = &OutputPort{op: o, index: i}
	}
	return o
}

// Kind returns the operation's kind.
func (o *Operation) Kind() Kind { return o.kind }

// TypeName returns the operation's type name ("add", "t", "sfg", ...).
// Custom operations report the name they were created with.
func (o *Operation) TypeName() string {
	if o.kind == KindCustom && o.typeName != "" {
		return o.typeName
	}
	return o.kind.TypeName()
}

// GraphID returns the identifier assigned when the operation was collected
// into an SFG, or "" before that.
func (o *Operation) GraphID() string { return o.graphID }

// InputCount returns the number of input ports.
func (o *Operation) InputCount() int { return len(o.ins) }

// OutputCount returns the number of output ports.
func (o *Operation) OutputCount() int { return len(o.outs) }

// Input returns input port i.
func (o *Operation) Input(i int) *InputPort { return o.ins[i] }

// Output returns output port i.
func (o *Operation) Output(i int) *OutputPort { return o.outs[i] }

// Value returns the inline constant of a Constant or ConstMul operation.
func (o *Operation) Value() Number { return o.value }

// Initial returns the initial register value of a Delay operation.
func (o *Operation) Initial() Number { return o.initial }

// Definition returns the nested graph of an SFG operation, nil otherwise.
func (o *Operation) Definition() *SFG { return o.def }

// An OutputPort is one output of an operation. Its identity (the pointer)
// keys common-subexpression sharing in the compiler.
type OutputPort struct {
	op    *Operation
	index int
}

// Operation returns the owning operation.
func (p *OutputPort) Operation() *Operation { return p.op }

// Index returns the port's output index on its operation.
func (p *OutputPort) Index() int { return p.index }

// An InputPort is one input of an operation. It carries at most one driving
// signal.
type InputPort struct {
	op     *Operation
	index  int
	signal *Signal
}

// Operation returns the owning operation.
func (p *InputPort) Operation() *Operation { return p.op }

// Index returns the port's input index on its operation.
func (p *InputPort) Index() int { return p.index }

// Signal returns the driving signal, or nil if the port is unconnected.
func (p *InputPort) Signal() *Signal { return p.signal }

// Connect wires src to the port, replacing any previous signal, and
// returns the new signal so the caller can set its bit width.
func (p *InputPort) Connect(src *OutputPort) *Signal {
	s := &Signal{source: src, dest: p}
	p.signal = s
	return s
}

// A Signal is an edge carrying a Number from an output port to an input
// port. Bits, when in [1, 64], requests quantization of the value crossing
// the edge; 0 leaves the value untouched.
type Signal struct {
	source *OutputPort
	dest   *InputPort

	Bits int
}

// Source returns the driving output port.
func (s *Signal) Source() *OutputPort { return s.source }

// Dest returns the driven input port.
func (s *Signal) Dest() *InputPort { return s.dest }

// SetBits sets the signal's quantization width and returns the signal.
func (s *Signal) SetBits(bits int) *Signal {
	s.Bits = bits
	return s
}

// An SFG is a signal-flow graph: a set of operations reachable from its
// Output operations, with Input operations marking where per-iteration
// input samples enter. An SFG can be compiled directly or nested inside
// another graph via AsOperation.
type SFG struct {
	inputs  []*Operation
	outputs []*Operation
	ops     []*Operation
	op      *Operation
}

// NewSFG collects the graph reachable from the given Output operations,
// checks its wiring and assigns graph IDs ("add1", "t2", ...) to
// operations that do not have one yet. The inputs slice declares the
// graph's Input operations in input-index order.
func NewSFG(inputs, outputs []*Operation) (*SFG, error) {
	for _, in := range inputs {
		if in.kind != KindInput {
			return nil, errors.Errorf("input operation list contains a %q operation", in.TypeName())
		}
	}
	for _, out := range outputs {
		if out.kind != KindOutput {
			return nil, errors.Errorf("output operation list contains a %q operation", out.TypeName())
		}
	}
	g := &SFG{inputs: inputs, outputs: outputs}
	seen := make(map[*Operation]bool)
	for _, in := range inputs {
		seen[in] = true
		g.ops = append(g.ops, in)
	}
	var walk func(o *Operation) error
	walk = func(o *Operation) error {
		if seen[o] {
			return nil
		}
		seen[o] = true
		g.ops = append(g.ops, o)
		for _, p := range o.ins {
			if p.signal == nil {
				return errors.Errorf("input %d of %q operation not connected to any output", p.index, o.TypeName())
			}
			if err := walk(p.signal.source.op); err != nil {
				return err
			}
		}
		return nil
	}
	for _, out := range outputs {
		if err := walk(out); err != nil {
			return nil, err
		}
	}
	g.assignGraphIDs()
	return g, nil
}

// assignGraphIDs hands out per-type sequential IDs in first-seen order,
// skipping IDs already held by previously collected operations.
func (g *SFG) assignGraphIDs() {
	taken := make(map[string]bool)
	for _, o := range g.ops {
		if o.graphID != "" {
			taken[o.graphID] = true
		}
	}
	next := make(map[string]int)
	for _, o := range g.ops {
		if o.graphID != "" {
			continue
		}
		tn := o.TypeName()
		for {
			next[tn]++
			if id := tn + strconv.Itoa(next[tn]); !taken[id] {
				o.graphID = id
				taken[id] = true
				break
			}
		}
	}
}

// InputCount returns the number of Input operations.
func (g *SFG) InputCount() int { return len(g.inputs) }

// OutputCount returns the number of Output operations.
func (g *SFG) OutputCount() int { return len(g.outputs) }

// Operations returns the collected operations in traversal order.
func (g *SFG) Operations() []*Operation { return g.ops }

// AsOperation wraps the graph as an operation so it can be nested inside
// another SFG. The wrapper's input ports accept external signals feeding
// the graph's Input operations; its output ports expose the graph's Output
// operations. The wrapper is created once and reused.
func (g *SFG) AsOperation() *Operation {
	if g.op == nil {
		g.op = newOperation(KindSFG, len(g.inputs), len(g.outputs))
		g.op.def = g
	}
	return g.op
}

// inputOperationIndex locates op among the graph's Input operations.
func (g *SFG) inputOperationIndex(op *Operation) (int, error) {
	for i, in := range g.inputs {
		if in == op {
			return i, nil
		}
	}
	return 0, errors.WithStack(ErrStrayInput)
}
