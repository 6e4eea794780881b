package sfgsim

import "github.com/pkg/errors"

// Compile-time errors. These abort compilation and surface to the caller
// of Compile (or New, which compiles).
var (
	// ErrDirectFeedbackLoop is returned when an output depends on its own
	// value through a path that does not pass through a delay.
	ErrDirectFeedbackLoop = errors.New("direct feedback loop detected in simulation SFG")

	// ErrStrayInput is returned when compilation reaches an Input
	// operation that is outside any SFG or is not one of the declared
	// inputs of the SFG containing it.
	ErrStrayInput = errors.New("stray Input operation in simulation SFG")

	// ErrIoCountMismatch is returned when emitted instructions would
	// underflow the value stack, which means an operation consumed more
	// values than its sources produced.
	ErrIoCountMismatch = errors.New("input/output count mismatch in simulation SFG")

	// ErrTooManyResults is returned when the graph needs more result slots
	// than the result-index type can encode.
	ErrTooManyResults = errors.New("simulation SFG requires too many results to be stored")

	// ErrQuantizationTooWide is returned for a signal bit width below 0 or
	// above 64 at compile time, for a Quantize width outside [1, 64], and
	// for an interpreter bit-width override above 64.
	ErrQuantizationTooWide = errors.New("cannot quantize to more than 64 bits")
)

// Runtime errors. These abort the current Step/Run call; results saved by
// prior iterations remain valid.
var (
	// ErrComplexQuantize is returned when a value with a non-zero
	// imaginary part reaches a quantization point.
	ErrComplexQuantize = errors.New("complex value cannot be quantized")

	// ErrComplexOrder is returned when Min or Max receives an operand with
	// a non-zero imaginary part.
	ErrComplexOrder = errors.New("min/max does not support complex numbers")

	// ErrInputIndexOutOfRange is returned by SetInput for an input index
	// the compiled graph does not have.
	ErrInputIndexOutOfRange = errors.New("input index out of range")

	// ErrInconsistentInputLength is returned when two fixed-length input
	// sequences of different lengths are bound to the same simulation.
	ErrInconsistentInputLength = errors.New("inconsistent input length for simulation")

	// ErrIterationOverflow is returned when advancing would overflow the
	// iteration counter.
	ErrIterationOverflow = errors.New("simulation iteration overflow")

	// ErrUnlimitedRun is returned by Run when no fixed-length input
	// sequence bounds the simulation.
	ErrUnlimitedRun = errors.New("tried to run unlimited simulation")

	// ErrCustomOpFailed wraps failures reported by custom operation
	// callables.
	ErrCustomOpFailed = errors.New("custom operation failed")
)
