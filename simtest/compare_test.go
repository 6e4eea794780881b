package simtest_test

import (
	"testing"

	"github.com/asiclab/sfgsim"
	"github.com/asiclab/sfgsim/simtest"
)

// buildSum wires a three-input sum in the given association order.
func buildSum(t *testing.T, leftFirst bool) *sfgsim.SFG {
	t.Helper()
	a := sfgsim.NewInput()
	b := sfgsim.NewInput()
	c := sfgsim.NewInput()
	var top *sfgsim.Operation
	if leftFirst {
		ab := sfgsim.NewAdd(a.Output(0), b.Output(0))
		top = sfgsim.NewAdd(ab.Output(0), c.Output(0))
	} else {
		bc := sfgsim.NewAdd(b.Output(0), c.Output(0))
		top = sfgsim.NewAdd(a.Output(0), bc.Output(0))
	}
	out := sfgsim.NewOutput(top.Output(0))
	g, err := sfgsim.NewSFG([]*sfgsim.Operation{a, b, c}, []*sfgsim.Operation{out})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestCompareEquivalentSums(t *testing.T) {
	simtest.CompareSFG(t, 64, buildSum(t, true), buildSum(t, false))
}

// Two separately built two-delay chains produce the same outputs.
func TestCompareDelayChains(t *testing.T) {
	build := func() *sfgsim.SFG {
		in := sfgsim.NewInput()
		t1 := sfgsim.NewDelay(in.Output(0), 0)
		t2 := sfgsim.NewDelay(t1.Output(0), 0)
		out := sfgsim.NewOutput(t2.Output(0))
		g, err := sfgsim.NewSFG([]*sfgsim.Operation{in}, []*sfgsim.Operation{out})
		if err != nil {
			t.Fatal(err)
		}
		return g
	}
	simtest.CompareSFG(t, 32, build(), build())
}
