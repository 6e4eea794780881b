// Copyright 2026 The sfgsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package sfgsim

import (
	"log/slog"
	"strconv"

	"github.com/pkg/errors"
)

// Compile lowers a signal-flow graph into a flat stack program. The graph
// is traversed depth-first from its outputs; outputs shared by several
// consumers are emitted once and re-read through their result slot, and
// delay updates are deferred past the forward computation so that cycles
// through delays compile into the standard one-sample-delay schedule.
func Compile(g *SFG) (*Code, error) {
	c := &compiler{
		incomplete: make(map[*OutputPort]bool),
		results:    make(map[*OutputPort]ResultIndex),
		customs:    make(map[*Operation]int),
	}
	c.code.InputCount = g.InputCount()
	c.code.OutputCount = g.OutputCount()
	root := g.AsOperation()
	for i := 0; i < c.code.OutputCount; i++ {
		if err := c.emitOperationOutput(root, i, "", nil); err != nil {
			return nil, err
		}
	}
	if err := c.drainDeferredDelays(); err != nil {
		return nil, err
	}
	c.resolveIgnoredResults()
	code := c.code
	slog.Debug("compiled simulation code",
		"instructions", len(code.Instructions),
		"results", len(code.ResultKeys),
		"delays", len(code.Delays),
		"stack", code.RequiredStackSize)
	return &code, nil
}

func keyBase(op *Operation, prefix string) string {
	if prefix == "" {
		return op.graphID
	}
	return prefix + "." + op.graphID
}

func keyOfOutput(op *Operation, outputIndex int, prefix string) string {
	base := keyBase(op, prefix)
	if base == "" {
		return strconv.Itoa(outputIndex)
	}
	if op.OutputCount() == 1 {
		return base
	}
	return base + "." + strconv.Itoa(outputIndex)
}

// sfgInfo is one level of nested-SFG traversal context: the SFG operation
// being inlined and the length of the key prefix outside of it.
type sfgInfo struct {
	op        *Operation
	prefixLen int
}

func pushSFG(stack []sfgInfo, op *Operation, prefixLen int) []sfgInfo {
	ns := make([]sfgInfo, len(stack), len(stack)+1)
	copy(ns, stack)
	return append(ns, sfgInfo{op: op, prefixLen: prefixLen})
}

func popSFG(stack []sfgInfo) []sfgInfo {
	ns := make([]sfgInfo, len(stack)-1)
	copy(ns, stack)
	return ns
}

// deferredDelay records a delay whose input evaluation is postponed until
// all forward outputs have been emitted.
type deferredDelay struct {
	index  int
	op     *Operation
	prefix string
	stack  []sfgInfo
}

type compiler struct {
	code       Code
	incomplete map[*OutputPort]bool
	results    map[*OutputPort]ResultIndex
	customs    map[*Operation]int
	deferred   []deferredDelay
	stackDepth int
}

// emit appends an instruction, keeping the running stack depth and the
// program's stack high-water mark. The returned pointer is only valid
// until the next emit.
func (c *compiler) emit(op OpCode, result ResultIndex, stackDiff int) (*Instruction, error) {
	c.stackDepth += stackDiff
	if c.stackDepth < 0 {
		return nil, errors.WithStack(ErrIoCountMismatch)
	}
	if c.stackDepth > c.code.RequiredStackSize {
		c.code.RequiredStackSize = c.stackDepth
	}
	c.code.Instructions = append(c.code.Instructions, Instruction{Op: op, Result: result})
	return &c.code.Instructions[len(c.code.Instructions)-1], nil
}

// beginOutput opens the emission of one operation output. If the output
// already has a result slot it emits a push_result re-use and reports
// emitBody = false; otherwise it allocates the slot, marks the output as
// in progress and expects the caller to emit the body and call endOutput.
func (c *compiler) beginOutput(op *Operation, outputIndex int, prefix string) (result ResultIndex, emitBody bool, err error) {
	port := op.outs[outputIndex]
	if c.incomplete[port] && op.kind != KindDelay {
		return 0, false, errors.Wrapf(ErrDirectFeedbackLoop, "through output %q", keyOfOutput(op, outputIndex, prefix))
	}
	if r, ok := c.results[port]; ok {
		ins, err := c.emit(OpPushResult, r, 1)
		if err != nil {
			return 0, false, err
		}
		ins.Index = int(r)
		return 0, false, nil
	}
	if len(c.code.ResultKeys) >= int(noResult) {
		return 0, false, errors.Wrapf(ErrTooManyResults, "limit %d", noResult)
	}
	r := ResultIndex(len(c.code.ResultKeys))
	c.results[port] = r
	c.code.ResultKeys = append(c.code.ResultKeys, keyOfOutput(op, outputIndex, prefix))
	c.incomplete[port] = true
	return r, true, nil
}

func (c *compiler) endOutput(port *OutputPort) {
	delete(c.incomplete, port)
}

// emitSource emits the value feeding input inputIndex of op, followed by a
// quantize instruction when the signal declares a bit width.
func (c *compiler) emitSource(op *Operation, inputIndex int, prefix string, stack []sfgInfo) error {
	sig := op.ins[inputIndex].signal
	if sig == nil {
		return errors.Errorf("input %d of operation %q is not connected", inputIndex, op.TypeName())
	}
	if err := c.emitOperationOutput(sig.source.op, sig.source.index, prefix, stack); err != nil {
		return err
	}
	if sig.Bits != 0 {
		if sig.Bits < 0 || sig.Bits > 64 {
			return errors.Wrapf(ErrQuantizationTooWide, "signal bits %d", sig.Bits)
		}
		ins, err := c.emit(OpQuantize, noResult, 0)
		if err != nil {
			return err
		}
		ins.Mask = BitMask(sig.Bits)
	}
	return nil
}

func (c *compiler) emitUnary(op *Operation, opcode OpCode, result ResultIndex, prefix string, stack []sfgInfo) error {
	if err := c.emitSource(op, 0, prefix, stack); err != nil {
		return err
	}
	_, err := c.emit(opcode, result, 0)
	return err
}

func (c *compiler) emitBinary(op *Operation, opcode OpCode, result ResultIndex, prefix string, stack []sfgInfo) error {
	if err := c.emitSource(op, 0, prefix, stack); err != nil {
		return err
	}
	if err := c.emitSource(op, 1, prefix, stack); err != nil {
		return err
	}
	_, err := c.emit(opcode, result, -1)
	return err
}

func (c *compiler) emitOperationOutput(op *Operation, outputIndex int, prefix string, stack []sfgInfo) error {
	// Output operations forward their source without a result slot of
	// their own.
	if op.kind == KindOutput {
		return c.emitSource(op, 0, prefix, stack)
	}
	result, emitBody, err := c.beginOutput(op, outputIndex, prefix)
	if err != nil || !emitBody {
		return err
	}
	switch op.kind {
	case KindConstant:
		ins, err := c.emit(OpPushConstant, result, 1)
		if err != nil {
			return err
		}
		ins.Value = op.value
	case KindAdd:
		err = c.emitBinary(op, OpAdd, result, prefix, stack)
	case KindSub:
		err = c.emitBinary(op, OpSub, result, prefix, stack)
	case KindMul:
		err = c.emitBinary(op, OpMul, result, prefix, stack)
	case KindDiv:
		err = c.emitBinary(op, OpDiv, result, prefix, stack)
	case KindMin:
		err = c.emitBinary(op, OpMin, result, prefix, stack)
	case KindMax:
		err = c.emitBinary(op, OpMax, result, prefix, stack)
	case KindSqrt:
		err = c.emitUnary(op, OpSqrt, result, prefix, stack)
	case KindConj:
		err = c.emitUnary(op, OpConj, result, prefix, stack)
	case KindAbs:
		err = c.emitUnary(op, OpAbs, result, prefix, stack)
	case KindConstMul:
		if err = c.emitSource(op, 0, prefix, stack); err != nil {
			return err
		}
		var ins *Instruction
		if ins, err = c.emit(OpConstMul, result, 0); err != nil {
			return err
		}
		ins.Value = op.value
	case KindButterfly:
		opcode := OpAdd
		if outputIndex != 0 {
			opcode = OpSub
		}
		err = c.emitBinary(op, opcode, result, prefix, stack)
	case KindInput:
		if len(stack) == 0 {
			return errors.WithStack(ErrStrayInput)
		}
		info := stack[len(stack)-1]
		var inputIndex int
		if inputIndex, err = info.op.def.inputOperationIndex(op); err != nil {
			return err
		}
		if len(stack) == 1 {
			var ins *Instruction
			if ins, err = c.emit(OpPushInput, result, 1); err != nil {
				return err
			}
			ins.Index = inputIndex
		} else {
			// The input belongs to a nested SFG: resolve it to the
			// signal feeding the enclosing SFG operation.
			if err = c.emitSource(info.op, inputIndex, prefix[:info.prefixLen], popSFG(stack)); err != nil {
				return err
			}
			_, err = c.emit(OpForwardValue, result, 0)
		}
	case KindDelay:
		delayIndex := len(c.code.Delays)
		c.code.Delays = append(c.code.Delays, DelayInfo{Initial: op.initial, Result: result})
		c.deferred = append(c.deferred, deferredDelay{index: delayIndex, op: op, prefix: prefix, stack: stack})
		var ins *Instruction
		if ins, err = c.emit(OpPushDelay, result, 1); err != nil {
			return err
		}
		ins.Index = delayIndex
	case KindSFG:
		outputOp := op.def.outputs[outputIndex]
		if err = c.emitSource(outputOp, 0, keyBase(op, prefix), pushSFG(stack, op, len(prefix))); err != nil {
			return err
		}
		_, err = c.emit(OpForwardValue, result, 0)
	case KindCustom:
		err = c.emitCustom(op, outputIndex, result, prefix, stack)
	default:
		return errors.Errorf("cannot compile operation of type %q", op.TypeName())
	}
	if err != nil {
		return err
	}
	c.endOutput(op.outs[outputIndex])
	return nil
}

func (c *compiler) emitCustom(op *Operation, outputIndex int, result ResultIndex, prefix string, stack []sfgInfo) error {
	opIndex, ok := c.customs[op]
	if !ok {
		opIndex = len(c.code.CustomOperations)
		c.customs[op] = opIndex
		c.code.CustomOperations = append(c.code.CustomOperations, CustomOperation{
			Evaluate:    op.evaluate,
			InputCount:  op.InputCount(),
			OutputCount: op.OutputCount(),
		})
	}
	for i := 0; i < op.InputCount(); i++ {
		if err := c.emitSource(op, i, prefix, stack); err != nil {
			return err
		}
	}
	sourceIndex := len(c.code.CustomSources)
	c.code.CustomSources = append(c.code.CustomSources, CustomSource{
		OperationIndex: opIndex,
		OutputIndex:    outputIndex,
	})
	ins, err := c.emit(OpCustom, result, 1-op.InputCount())
	if err != nil {
		return err
	}
	ins.Index = sourceIndex
	return nil
}

// drainDeferredDelays emits the delay-input evaluations and writebacks.
// Evaluating a delay input may defer further delays; the queue runs until
// empty.
func (c *compiler) drainDeferredDelays() error {
	for len(c.deferred) > 0 {
		d := c.deferred[0]
		c.deferred = c.deferred[1:]
		if err := c.emitSource(d.op, 0, d.prefix, d.stack); err != nil {
			return err
		}
		ins, err := c.emit(OpUpdateDelay, noResult, -1)
		if err != nil {
			return err
		}
		ins.Index = d.index
	}
	return nil
}

// resolveIgnoredResults rewrites the noResult sentinel to the ignored-sink
// slot one past the last result key.
func (c *compiler) resolveIgnoredResults() {
	sink := ResultIndex(len(c.code.ResultKeys))
	for i := range c.code.Instructions {
		if c.code.Instructions[i].Result == noResult {
			c.code.Instructions[i].Result = sink
		}
	}
}
