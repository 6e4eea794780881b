package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/asiclab/sfgsim"
)

const replHelp = `commands:
  step [n]   run n iterations (default 1), saving results
  run        run until the bound input sequences are exhausted
  results    print the saved result series
  dump       print the compiled program
  help       show this help
  quit       leave the repl`

// runREPL steps the simulation interactively.
func runREPL(sim *sfgsim.Simulation, cfg config) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("sfgsim> ")
		if err != nil {
			// ^C or ^D ends the session.
			fmt.Println()
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		fields := strings.Fields(input)
		switch fields[0] {
		case "step":
			n := uint32(1)
			if len(fields) > 1 {
				v, err := strconv.ParseUint(fields[1], 10, 32)
				if err != nil {
					fmt.Println("step: bad count:", fields[1])
					continue
				}
				n = uint32(v)
			}
			outputs, err := sim.RunFor(n, true, bitsOverride(cfg), cfg.Quantize)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("iteration %d: %s\n", sim.Iteration(), formatNumbers(outputs))
		case "run":
			outputs, err := sim.Run(true, bitsOverride(cfg), cfg.Quantize)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("iteration %d: %s\n", sim.Iteration(), formatNumbers(outputs))
		case "results":
			// The repl saves every step, whatever the configuration says.
			rc := cfg
			rc.Save = true
			printRun(sim, rc, nil)
		case "dump":
			fmt.Print(sim.Code().String())
		case "help":
			fmt.Println(replHelp)
		case "quit", "exit":
			return nil
		default:
			fmt.Println(replHelp)
		}
	}
}
