package sfgsim_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	sfg "github.com/asiclab/sfgsim"
)

// accumulatorGraph builds a running sum: out = in + t(out), t initial 0.
func accumulatorGraph(t *testing.T) *sfg.SFG {
	t.Helper()
	in := sfg.NewInput()
	add := sfg.NewAdd(in.Output(0), nil)
	reg := sfg.NewDelay(add.Output(0), 0)
	add.Input(1).Connect(reg.Output(0))
	out := sfg.NewOutput(add.Output(0))
	g, err := sfg.NewSFG([]*sfg.Operation{in}, []*sfg.Operation{out})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestStepAdder(t *testing.T) {
	sim, err := sfg.NewWithInputs(adderGraph(t), []sfg.InputProvider{
		sfg.ConstantInput(3), sfg.ConstantInput(4),
	})
	if err != nil {
		t.Fatal(err)
	}
	outputs, err := sim.Step(true, sfg.NoOverride, true)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(outputs, []sfg.Number{7}) {
		t.Errorf("Step() = %v, want [7]", outputs)
	}
	if sim.Iteration() != 1 {
		t.Errorf("Iteration() = %d, want 1", sim.Iteration())
	}
	results := sim.Results()
	if !reflect.DeepEqual(results["add1"], []sfg.Number{7}) {
		t.Errorf(`results["add1"] = %v, want [7]`, results["add1"])
	}
}

func TestRunDelaySequence(t *testing.T) {
	sim, err := sfg.New(delayGraph(t, 0))
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.SetInput(0, sfg.SequenceInput{5, 6, 7}); err != nil {
		t.Fatal(err)
	}
	outputs, err := sim.Run(true, sfg.NoOverride, true)
	if err != nil {
		t.Fatal(err)
	}
	// The delay's output trails its input by one sample.
	if !reflect.DeepEqual(outputs, []sfg.Number{6}) {
		t.Errorf("Run() = %v, want [6]", outputs)
	}
	results := sim.Results()
	if !reflect.DeepEqual(results["t1"], []sfg.Number{0, 5, 6}) {
		t.Errorf(`results["t1"] = %v, want [0 5 6]`, results["t1"])
	}
	if !reflect.DeepEqual(results["in1"], []sfg.Number{5, 6, 7}) {
		t.Errorf(`results["in1"] = %v, want [5 6 7]`, results["in1"])
	}
	if !reflect.DeepEqual(results["0"], []sfg.Number{0, 5, 6}) {
		t.Errorf(`results["0"] = %v, want [0 5 6]`, results["0"])
	}
}

func TestAccumulator(t *testing.T) {
	sim, err := sfg.New(accumulatorGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.SetInput(0, sfg.ConstantInput(1)); err != nil {
		t.Fatal(err)
	}
	for n, want := range []sfg.Number{1, 2, 3, 4} {
		outputs, err := sim.Step(false, sfg.NoOverride, true)
		if err != nil {
			t.Fatal(err)
		}
		if outputs[0] != want {
			t.Errorf("iteration %d: output = %v, want %v", n, outputs[0], want)
		}
	}
}

func TestFunctionInput(t *testing.T) {
	sim, err := sfg.New(delayGraph(t, -1))
	if err != nil {
		t.Fatal(err)
	}
	ramp := sfg.FunctionInput(func(n uint32) sfg.Number { return complex(float64(n), 0) })
	if err := sim.SetInput(0, ramp); err != nil {
		t.Fatal(err)
	}
	outputs, err := sim.RunFor(3, false, sfg.NoOverride, true)
	if err != nil {
		t.Fatal(err)
	}
	if outputs[0] != 1 {
		t.Errorf("RunFor(3) = %v, want [1]", outputs)
	}
}

func TestDefaultInputIsZero(t *testing.T) {
	sim, err := sfg.New(adderGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	outputs, err := sim.Step(false, sfg.NoOverride, true)
	if err != nil {
		t.Fatal(err)
	}
	if outputs[0] != 0 {
		t.Errorf("Step() = %v, want [0]", outputs)
	}
}

func TestRunUntilAlreadyReached(t *testing.T) {
	sim, err := sfg.New(adderGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sim.RunFor(2, false, sfg.NoOverride, true); err != nil {
		t.Fatal(err)
	}
	outputs, err := sim.RunUntil(1, false, sfg.NoOverride, true)
	if err != nil {
		t.Fatal(err)
	}
	if outputs != nil {
		t.Errorf("RunUntil(past) = %v, want nil", outputs)
	}
	if sim.Iteration() != 2 {
		t.Errorf("Iteration() = %d, want 2", sim.Iteration())
	}
}

func TestInputErrors(t *testing.T) {
	sim, err := sfg.New(adderGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.SetInput(2, sfg.ConstantInput(1)); !errors.Is(err, sfg.ErrInputIndexOutOfRange) {
		t.Errorf("SetInput(2) = %v, want ErrInputIndexOutOfRange", err)
	}
	if err := sim.SetInput(0, sfg.SequenceInput{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := sim.SetInput(1, sfg.SequenceInput{1, 2, 3}); !errors.Is(err, sfg.ErrInconsistentInputLength) {
		t.Errorf("SetInput() = %v, want ErrInconsistentInputLength", err)
	}
	if err := sim.SetInputs([]sfg.InputProvider{sfg.ConstantInput(1)}); err == nil {
		t.Error("SetInputs() accepted a short provider list")
	}
	// nil entries keep existing bindings.
	if err := sim.SetInputs([]sfg.InputProvider{nil, sfg.SequenceInput{3, 4}}); err != nil {
		t.Fatal(err)
	}
}

func TestUnlimitedRun(t *testing.T) {
	sim, err := sfg.New(adderGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Run(false, sfg.NoOverride, true); !errors.Is(err, sfg.ErrUnlimitedRun) {
		t.Errorf("Run() = %v, want ErrUnlimitedRun", err)
	}
}

func TestIterationOverflow(t *testing.T) {
	sim, err := sfg.New(adderGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Step(false, sfg.NoOverride, true); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.RunFor(math.MaxUint32, false, sfg.NoOverride, true); !errors.Is(err, sfg.ErrIterationOverflow) {
		t.Errorf("RunFor() = %v, want ErrIterationOverflow", err)
	}
}

// Running k iterations and then m more matches running k+m in one shot on
// a fresh simulation.
func TestSplitRunEquivalence(t *testing.T) {
	run := func(steps []uint32) []sfg.Number {
		sim, err := sfg.New(accumulatorGraph(t))
		if err != nil {
			t.Fatal(err)
		}
		if err := sim.SetInput(0, sfg.ConstantInput(2)); err != nil {
			t.Fatal(err)
		}
		var outputs []sfg.Number
		for _, n := range steps {
			outputs, err = sim.RunFor(n, false, sfg.NoOverride, true)
			if err != nil {
				t.Fatal(err)
			}
		}
		return outputs
	}
	split := run([]uint32{3, 4})
	oneShot := run([]uint32{7})
	if !reflect.DeepEqual(split, oneShot) {
		t.Errorf("split run = %v, one-shot = %v", split, oneShot)
	}
}

func TestClearState(t *testing.T) {
	sim, err := sfg.New(accumulatorGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.SetInput(0, sfg.ConstantInput(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.RunFor(3, false, sfg.NoOverride, true); err != nil {
		t.Fatal(err)
	}
	sim.ClearState()
	if sim.Iteration() != 3 {
		t.Errorf("Iteration() = %d, want 3 after ClearState", sim.Iteration())
	}
	outputs, err := sim.Step(false, sfg.NoOverride, true)
	if err != nil {
		t.Fatal(err)
	}
	// With the register back at its initial value the sum restarts.
	if outputs[0] != 1 {
		t.Errorf("Step() after ClearState = %v, want [1]", outputs)
	}
}

func TestClearResults(t *testing.T) {
	sim, err := sfg.New(adderGraph(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sim.Step(true, sfg.NoOverride, true); err != nil {
		t.Fatal(err)
	}
	sim.ClearResults()
	if got := sim.Results(); len(got) != 0 {
		t.Errorf("Results() after ClearResults = %v, want empty", got)
	}
}

// Without delays, outputs are a pure function of the inputs.
func TestCombinationalPurity(t *testing.T) {
	sim, err := sfg.NewWithInputs(adderGraph(t), []sfg.InputProvider{
		sfg.ConstantInput(2 + 1i), sfg.ConstantInput(5),
	})
	if err != nil {
		t.Fatal(err)
	}
	first, err := sim.Step(false, sfg.NoOverride, true)
	if err != nil {
		t.Fatal(err)
	}
	sim.ClearState()
	second, err := sim.Step(false, sfg.NoOverride, true)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("outputs differ across iterations: %v vs %v", first, second)
	}
}

func TestSequenceExhausted(t *testing.T) {
	sim, err := sfg.New(delayGraph(t, 0))
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.SetInput(0, sfg.SequenceInput{1}); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.RunFor(2, false, sfg.NoOverride, true); err == nil {
		t.Error("RunFor() past the sequence end did not fail")
	}
}
