package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/game"
	"github.com/pthm-cable/murmur/pattern"
	"github.com/pthm-cable/murmur/telemetry"
)

// Fitness weights.
const (
	forcedPenaltySec = 0.25 // Seconds added per force-captured pixel
	spreadWeight     = 0.5  // Weight of the seed-to-seed duration deviation
)

// runResult holds the results from a single cycle.
type runResult struct {
	stats    telemetry.CycleStats
	complete bool
}

// FitnessEvaluator runs headless cycles and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []int64
	baseConfig *config.Config
	provider   pattern.Provider

	mu   sync.Mutex
	last Evaluation
}

// Evaluation summarizes one parameter vector across all seeds.
type Evaluation struct {
	Fitness      float64
	MeanDuration float64
	MeanForced   float64
	Incomplete   int
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		provider:   pattern.FromConfig(baseCfg.Pattern),
	}
}

// Last returns the most recent evaluation.
func (fe *FitnessEvaluator) Last() Evaluation {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runCycle(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	ev := fe.score(cfg, results)

	fe.mu.Lock()
	fe.last = ev
	fe.mu.Unlock()
	return ev.Fitness
}

// runCycle runs one headless cycle without auto-reset.
func (fe *FitnessEvaluator) runCycle(cfg *config.Config, seed int64) runResult {
	cfg = cfg.Clone()
	cfg.Lifecycle.AutoReset = false

	e := game.New(cfg, fe.provider, game.Options{
		Seed:   seed,
		Logger: slog.New(slog.DiscardHandler),
	})
	r := &game.Runner{Engine: e, MaxCycles: 1, MaxTicks: fe.maxTicks}
	if err := r.Run(context.Background()); err != nil {
		return runResult{}
	}
	if !e.IsComplete() {
		return runResult{stats: telemetry.CycleStats{
			Targets:     e.TargetCount(),
			Ticks:       int(e.TickCount()),
			DurationSec: e.SimTime(),
		}}
	}
	return runResult{stats: e.LastCycle(), complete: true}
}

// score combines per-seed results. Incomplete runs count as the full tick
// budget with every pixel forced.
func (fe *FitnessEvaluator) score(cfg *config.Config, results []runResult) Evaluation {
	budget := float64(fe.maxTicks) * cfg.Derived.DT

	durations := make([]float64, len(results))
	forced := make([]float64, len(results))
	var ev Evaluation
	for i, r := range results {
		if !r.complete {
			ev.Incomplete++
			durations[i] = budget
			forced[i] = float64(r.stats.Targets)
			continue
		}
		durations[i] = r.stats.DurationSec
		forced[i] = float64(r.stats.ForcedCaptures)
	}

	mean, std := stat.MeanStdDev(durations, nil)
	if math.IsNaN(std) {
		std = 0
	}
	ev.MeanDuration = mean
	ev.MeanForced = stat.Mean(forced, nil)
	ev.Fitness = mean + spreadWeight*std + forcedPenaltySec*ev.MeanForced
	return ev
}
