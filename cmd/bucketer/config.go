package main

import (
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/lox/handbucket/sdk/abstraction"
)

// fileConfig is the optional HCL override file. Every attribute is optional;
// unset values keep the defaults already present in the target config.
//
//	flop_samples  = 200000
//	river_buckets = 50
//	workers       = 8
type fileConfig struct {
	OutputDir string `hcl:"output_dir,optional"`

	Seed       int64 `hcl:"seed,optional"`
	KMeansSeed int64 `hcl:"kmeans_seed,optional"`
	Workers    int   `hcl:"workers,optional"`

	FlopSamples  int `hcl:"flop_samples,optional"`
	TurnSamples  int `hcl:"turn_samples,optional"`
	RiverSamples int `hcl:"river_samples,optional"`

	FlopBuckets  int `hcl:"flop_buckets,optional"`
	TurnBuckets  int `hcl:"turn_buckets,optional"`
	RiverBuckets int `hcl:"river_buckets,optional"`

	MaxIterations int     `hcl:"max_iterations,optional"`
	Epsilon       float64 `hcl:"epsilon,optional"`
}

func applyFileConfig(path string, cfg *abstraction.Config) error {
	var fc fileConfig
	if err := hclsimple.DecodeFile(path, nil, &fc); err != nil {
		return err
	}

	if fc.OutputDir != "" {
		cfg.OutputDir = fc.OutputDir
	}
	if fc.Seed != 0 {
		cfg.Seed = fc.Seed
	}
	if fc.KMeansSeed != 0 {
		cfg.KMeansSeed = fc.KMeansSeed
	}
	if fc.Workers != 0 {
		cfg.Workers = fc.Workers
	}

	setSample := func(street abstraction.Street, v int) {
		if v != 0 {
			cfg.Samples[street] = v
		}
	}
	setSample(abstraction.Flop, fc.FlopSamples)
	setSample(abstraction.Turn, fc.TurnSamples)
	setSample(abstraction.River, fc.RiverSamples)

	setBuckets := func(street abstraction.Street, v int) {
		if v != 0 {
			cfg.Buckets[street] = v
		}
	}
	setBuckets(abstraction.Flop, fc.FlopBuckets)
	setBuckets(abstraction.Turn, fc.TurnBuckets)
	setBuckets(abstraction.River, fc.RiverBuckets)

	if fc.MaxIterations != 0 {
		cfg.MaxIters = fc.MaxIterations
	}
	if fc.Epsilon != 0 {
		cfg.Epsilon = fc.Epsilon
	}
	return nil
}
