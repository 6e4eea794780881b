package sfgsim

import (
	"fmt"
	"strings"
)

// String renders the instruction for debug listings.
func (i Instruction) String() string {
	var operand string
	switch i.Op {
	case OpPushInput, OpPushResult, OpPushDelay, OpUpdateDelay, OpCustom:
		operand = fmt.Sprintf(" %d", i.Index)
	case OpQuantize:
		operand = fmt.Sprintf(" %#x", uint64(i.Mask))
	case OpPushConstant, OpConstMul:
		operand = fmt.Sprintf(" %v", i.Value)
	}
	return fmt.Sprintf("%s%s -> r%d", i.Op, operand, i.Result)
}

// String renders a full program listing with its tables, for debug
// logging and the CLI's dump mode.
func (c *Code) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "inputs: %d, outputs: %d, stack: %d\n", c.InputCount, c.OutputCount, c.RequiredStackSize)
	for i, ins := range c.Instructions {
		fmt.Fprintf(&b, "%4d: %s\n", i, ins)
	}
	if len(c.Delays) > 0 {
		b.WriteString("delays:\n")
		for i, d := range c.Delays {
			fmt.Fprintf(&b, "%4d: initial %v, r%d\n", i, d.Initial, d.Result)
		}
	}
	if len(c.CustomSources) > 0 {
		b.WriteString("custom sources:\n")
		for i, s := range c.CustomSources {
			fmt.Fprintf(&b, "%4d: op %d output %d\n", i, s.OperationIndex, s.OutputIndex)
		}
	}
	b.WriteString("result keys:\n")
	for i, k := range c.ResultKeys {
		fmt.Fprintf(&b, "%4d: %q\n", i, k)
	}
	return b.String()
}
