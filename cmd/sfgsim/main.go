// Command sfgsim runs a signal-flow-graph simulation described by a CUE
// configuration file: a FIR filter built from the configured taps, or a
// plain accumulator when no taps are given.
//
//	sfgsim -config fir.cue
//	sfgsim -config fir.cue -repl
//	sfgsim -config fir.cue -export "clickhouse://default:@localhost:9000/sfgsim"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/asiclab/sfgsim"
	"github.com/asiclab/sfgsim/chstore"
	"github.com/asiclab/sfgsim/internal/logs"
	"github.com/asiclab/sfgsim/oplib"
)

func main() {
	var (
		configPath = flag.String("config", "", "CUE configuration file")
		dump       = flag.Bool("dump", false, "print the compiled program and exit")
		repl       = flag.Bool("repl", false, "step the simulation interactively")
		export     = flag.String("export", "", "ClickHouse DSN to export saved results to")
		runID      = flag.String("run-id", "sfgsim", "run identifier for exported results")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(logs.New(os.Stderr, level))

	if err := run(*configPath, *dump, *repl, *export, *runID); err != nil {
		slog.Error("sfgsim failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, dump, repl bool, export, runID string) error {
	cfg := defaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = loadConfig(configPath); err != nil {
			return err
		}
	}

	g, err := buildGraph(cfg)
	if err != nil {
		return err
	}
	sim, err := sfgsim.New(g)
	if err != nil {
		return err
	}
	if err := bindInputs(sim, cfg); err != nil {
		return err
	}

	if dump {
		fmt.Print(sim.Code().String())
		return nil
	}
	if repl {
		return runREPL(sim, cfg)
	}

	outputs, err := runOnce(sim, cfg)
	if err != nil {
		return err
	}
	printRun(sim, cfg, outputs)

	if export != "" {
		ctx := context.Background()
		store, err := chstore.Open(ctx, chstore.Options{DSN: export})
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.EnsureTable(ctx); err != nil {
			return err
		}
		if err := store.SaveResults(ctx, runID, sim); err != nil {
			return err
		}
		slog.Info("results exported", "run_id", runID)
	}
	return nil
}

func buildGraph(cfg config) (*sfgsim.SFG, error) {
	if len(cfg.Taps) > 0 {
		taps := make([]sfgsim.Number, len(cfg.Taps))
		for i, t := range cfg.Taps {
			taps[i] = complex(t, 0)
		}
		return oplib.FIR(taps)
	}
	return oplib.Accumulator(0)
}

func bindInputs(sim *sfgsim.Simulation, cfg config) error {
	if len(cfg.Inputs) == 0 {
		// A unit step keeps an unconfigured run from being all zeros.
		for i := 0; i < sim.Code().InputCount; i++ {
			if err := sim.SetInput(i, sfgsim.FunctionInput(func(uint32) sfgsim.Number { return 1 })); err != nil {
				return err
			}
		}
		return nil
	}
	for i, seq := range cfg.Inputs {
		values := make(sfgsim.SequenceInput, len(seq))
		for n, v := range seq {
			values[n] = complex(v, 0)
		}
		if err := sim.SetInput(i, values); err != nil {
			return err
		}
	}
	return nil
}

func bitsOverride(cfg config) int {
	if cfg.Bits > 0 {
		return cfg.Bits
	}
	return sfgsim.NoOverride
}

func runOnce(sim *sfgsim.Simulation, cfg config) ([]sfgsim.Number, error) {
	if len(cfg.Inputs) > 0 {
		return sim.Run(cfg.Save, bitsOverride(cfg), cfg.Quantize)
	}
	return sim.RunFor(uint32(cfg.Iterations), cfg.Save, bitsOverride(cfg), cfg.Quantize)
}

func printRun(sim *sfgsim.Simulation, cfg config, outputs []sfgsim.Number) {
	p := message.NewPrinter(language.English)
	p.Printf("ran %d iterations\n", sim.Iteration())
	p.Printf("outputs: %s\n", formatNumbers(outputs))
	if !cfg.Save {
		return
	}
	results := sim.Results()
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Printf("%-16s %s\n", k, formatNumbers(results[k]))
	}
}

func formatNumbers(values []sfgsim.Number) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, " ")
}

func formatNumber(v sfgsim.Number) string {
	if imag(v) == 0 {
		return fmt.Sprintf("%g", real(v))
	}
	return fmt.Sprintf("%g%+gi", real(v), imag(v))
}
