// Copyright 2026 The sfgsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package sfgsim

// OpCode identifies a stack-machine instruction.
type OpCode uint8

const (
	OpPushInput    OpCode = iota // push(inputs[Index])
	OpPushResult                 // push(results[Index])
	OpPushDelay                  // push(delays[Index])
	OpPushConstant               // push(Value)
	OpQuantize                   // push(mask(pop(), Mask)) when quantizing
	OpAdd                        // push(pop() + pop())
	OpSub                        // rhs = pop(); lhs = pop(); push(lhs - rhs)
	OpMul                        // push(pop() * pop())
	OpDiv                        // rhs = pop(); lhs = pop(); push(lhs / rhs)
	OpMin                        // push(min(pop(), pop())), real operands only
	OpMax                        // push(max(pop(), pop())), real operands only
	OpSqrt                       // push(sqrt(pop()))
	OpConj                       // push(conj(pop()))
	OpAbs                        // push(abs(pop()))
	OpConstMul                   // push(pop() * Value)
	OpUpdateDelay                // delays[Index] = pop()
	OpCustom                     // custom operation via customSources[Index]
	OpForwardValue               // keep the top of stack in place
)

var opNames = [...]string{
	OpPushInput:    "push_input",
	OpPushResult:   "push_result",
	OpPushDelay:    "push_delay",
	OpPushConstant: "push_constant",
	OpQuantize:     "quantize",
	OpAdd:          "add",
	OpSub:          "sub",
	OpMul:          "mul",
	OpDiv:          "div",
	OpMin:          "min",
	OpMax:          "max",
	OpSqrt:         "sqrt",
	OpConj:         "conj",
	OpAbs:          "abs",
	OpConstMul:     "cmul",
	OpUpdateDelay:  "update_delay",
	OpCustom:       "custom",
	OpForwardValue: "forward",
}

func (o OpCode) String() string { return opNames[o] }

// ResultIndex addresses one result slot. The value len(Code.ResultKeys)
// denotes the ignored sink.
type ResultIndex = uint16

// noResult marks instructions whose result index is resolved to the
// ignored sink once the final result-key count is known.
const noResult = ResultIndex(^uint16(0))

// An Instruction is one step of a compiled iteration. Which operand field
// is meaningful depends on Op: Index for push_input/push_result/push_delay,
// update_delay and custom; Mask for quantize; Value for push_constant and
// cmul.
type Instruction struct {
	Op     OpCode
	Result ResultIndex
	Index  int
	Mask   int64
	Value  Number
}

// A CustomOperation is one entry of a compiled program's custom-op table.
type CustomOperation struct {
	Evaluate    CustomFunc
	InputCount  int
	OutputCount int
}

// A CustomSource identifies which output of which custom operation a
// custom instruction site consumes.
type CustomSource struct {
	OperationIndex int
	OutputIndex    int
}

// A DelayInfo describes one delay register of a compiled program.
type DelayInfo struct {
	// Initial register value at iteration 0.
	Initial Number
	// Result slot carrying the register's pre-iteration value.
	Result ResultIndex
}

// Code is an immutable compiled program: the instructions of one full
// iteration plus the tables they index into.
type Code struct {
	// Instructions executed once per iteration, in order.
	Instructions []Instruction
	// Custom operations used by the program.
	CustomOperations []CustomOperation
	// One entry per custom instruction site.
	CustomSources []CustomSource
	// Delay registers, ordered by first encounter.
	Delays []DelayInfo
	// One key per result slot; the ignored sink sits one past the end.
	ResultKeys []string
	// Number of input samples consumed per iteration.
	InputCount int
	// Number of values left on the stack after one iteration.
	OutputCount int
	// High-water mark of the value stack over one iteration.
	RequiredStackSize int
}
