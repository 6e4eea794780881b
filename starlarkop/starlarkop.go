// Package starlarkop adapts Starlark functions into sfgsim custom
// operations, so operation behavior can be scripted without recompiling
// the host program.
//
// A script defines a function taking (output_index, inputs, quantize) and
// returning a number. Real values travel as Starlark floats; complex
// values as (re, im) tuples:
//
//	def mac(output_index, inputs, quantize):
//	    return inputs[0] * inputs[1] + 1.0
package starlarkop

import (
	"github.com/pkg/errors"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/asiclab/sfgsim"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
}

// Func executes the script and adapts its global named function into a
// CustomFunc. The returned func is not safe for concurrent use, matching
// the engine's single-threaded execution model.
func Func(filename, src, function string) (sfgsim.CustomFunc, error) {
	thread := &starlark.Thread{Name: "sfgsim"}
	globals, err := starlark.ExecFileOptions(fileOptions, thread, filename, src, nil)
	if err != nil {
		return nil, errors.Wrap(err, "starlarkop: exec")
	}
	fn, ok := globals[function].(starlark.Callable)
	if !ok {
		return nil, errors.Errorf("starlarkop: %q is not a function in %s", function, filename)
	}
	return func(outputIndex int, inputs []sfgsim.Number, quantize bool) (sfgsim.Number, error) {
		values := make([]starlark.Value, len(inputs))
		for i, v := range inputs {
			values[i] = toValue(v)
		}
		args := starlark.Tuple{
			starlark.MakeInt(outputIndex),
			starlark.NewList(values),
			starlark.Bool(quantize),
		}
		ret, err := starlark.Call(&starlark.Thread{Name: "sfgsim"}, fn, args, nil)
		if err != nil {
			return 0, errors.Wrapf(err, "starlarkop: call %s", function)
		}
		return fromValue(ret)
	}, nil
}

// Operation builds a custom operation evaluated by a Starlark function.
// srcs wire the operation's input ports, as in sfgsim.NewCustom.
func Operation(name string, inputCount, outputCount int, filename, src, function string, srcs ...*sfgsim.OutputPort) (*sfgsim.Operation, error) {
	fn, err := Func(filename, src, function)
	if err != nil {
		return nil, err
	}
	return sfgsim.NewCustom(name, inputCount, outputCount, fn, srcs...), nil
}

func toValue(v sfgsim.Number) starlark.Value {
	if imag(v) == 0 {
		return starlark.Float(real(v))
	}
	return starlark.Tuple{starlark.Float(real(v)), starlark.Float(imag(v))}
}

func fromValue(v starlark.Value) (sfgsim.Number, error) {
	switch v := v.(type) {
	case starlark.Float:
		return complex(float64(v), 0), nil
	case starlark.Int:
		f, _ := starlark.AsFloat(v)
		return complex(f, 0), nil
	case starlark.Tuple:
		if v.Len() != 2 {
			return 0, errors.Errorf("starlarkop: tuple of length %d is not a complex number", v.Len())
		}
		re, ok1 := starlark.AsFloat(v.Index(0))
		im, ok2 := starlark.AsFloat(v.Index(1))
		if !ok1 || !ok2 {
			return 0, errors.Errorf("starlarkop: non-numeric complex tuple %s", v)
		}
		return complex(re, im), nil
	default:
		return 0, errors.Errorf("starlarkop: cannot convert %s to a number", v.Type())
	}
}
