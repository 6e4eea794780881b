// Copyright 2026 The sfgsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package simtest provides utility functions for testing signal-flow
// graphs.
package simtest

import (
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/asiclab/sfgsim"
)

// Tolerance is the maximum magnitude difference CompareSFG accepts
// between two outputs.
const Tolerance = 1e-9

// CompareSFG drives two graphs with identical pseudo-random real inputs
// for the given number of iterations and fails the test on the first
// output mismatch. Both graphs must have the same input and output
// counts.
func CompareSFG(t *testing.T, iterations int, g1, g2 *sfgsim.SFG) {
	t.Helper()
	if g1.InputCount() != g2.InputCount() {
		t.Fatalf("input counts differ: %d vs %d", g1.InputCount(), g2.InputCount())
	}
	if g1.OutputCount() != g2.OutputCount() {
		t.Fatalf("output counts differ: %d vs %d", g1.OutputCount(), g2.OutputCount())
	}
	sim1, err := sfgsim.New(g1)
	if err != nil {
		t.Fatal(err)
	}
	sim2, err := sfgsim.New(g2)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(1))
	inputs := make([]sfgsim.SequenceInput, g1.InputCount())
	for i := range inputs {
		inputs[i] = make(sfgsim.SequenceInput, iterations)
		for n := range inputs[i] {
			inputs[i][n] = complex(float64(rng.Intn(256)-128), 0)
		}
	}
	for i, seq := range inputs {
		if err := sim1.SetInput(i, seq); err != nil {
			t.Fatal(err)
		}
		if err := sim2.SetInput(i, seq); err != nil {
			t.Fatal(err)
		}
	}

	for n := 0; n < iterations; n++ {
		out1, err := sim1.Step(false, sfgsim.NoOverride, true)
		if err != nil {
			t.Fatal(err)
		}
		out2, err := sim2.Step(false, sfgsim.NoOverride, true)
		if err != nil {
			t.Fatal(err)
		}
		for o := range out1 {
			if cmplx.Abs(out1[o]-out2[o]) > Tolerance {
				t.Fatalf("iteration %d output %d: %v vs %v (inputs %v)", n, o, out1[o], out2[o], at(inputs, n))
			}
		}
	}
}

func at(inputs []sfgsim.SequenceInput, n int) []sfgsim.Number {
	row := make([]sfgsim.Number, len(inputs))
	for i := range inputs {
		row[i] = inputs[i][n]
	}
	return row
}
