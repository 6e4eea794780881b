package main

import (
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pkg/errors"
)

// Run configuration, loaded from a CUE file and validated against
// configSchema. Absent fields keep the defaults below.
type config struct {
	// Iterations to run when no input sequence bounds the run.
	Iterations int `json:"iterations"`
	// FIR taps; an accumulator is simulated when empty.
	Taps []float64 `json:"taps"`
	// One sample sequence per graph input.
	Inputs [][]float64 `json:"inputs"`
	// Global bit-width override; 0 leaves per-edge widths in effect.
	Bits     int  `json:"bits"`
	Quantize bool `json:"quantize"`
	Save     bool `json:"save"`
}

const configSchema = `
	iterations?: int & >=0
	taps?: [...number]
	inputs?: [...[...number]]
	bits?: int & >=0 & <=64
	quantize: bool | *true
	save: bool | *true
`

func defaultConfig() config {
	return config{Iterations: 16, Quantize: true, Save: true}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	ctx := cuecontext.New()
	schema := ctx.CompileString("close({" + configSchema + "})")
	if err := schema.Err(); err != nil {
		return cfg, errors.Wrap(err, "config schema")
	}
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	unified := schema.Unify(value)
	if err := unified.Validate(); err != nil {
		return cfg, errors.Wrap(err, "validate config")
	}
	if err := unified.Decode(&cfg); err != nil {
		return cfg, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}
