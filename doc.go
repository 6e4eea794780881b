/*
Package sfgsim simulates signal-flow graphs of arithmetic operations with
feedback through unit delays, as used when modeling ASIC/DSP datapaths.

A graph is built from operations wired together by signals, compiled once
into a flat program for a small stack machine, and then executed iteration
by iteration:

	in := sfgsim.NewInput()
	add := sfgsim.NewAdd(in.Output(0), nil)
	t := sfgsim.NewDelay(add.Output(0), 0)
	add.Input(1).Connect(t.Output(0))
	out := sfgsim.NewOutput(add.Output(0))

	g, err := sfgsim.NewSFG([]*sfgsim.Operation{in}, []*sfgsim.Operation{out})
	...
	sim, err := sfgsim.New(g)
	...
	sim.SetInput(0, sfgsim.SequenceInput{1, 2, 3})
	outputs, err := sim.Run(true, sfgsim.NoOverride, true)

Signals may request fixed-width quantization of the value crossing them,
and a run may override all word lengths globally, modeling fixed-point
wrap-around at a chosen width.
*/
package sfgsim
