package main

import (
	"io"
	"math"

	"github.com/gocarina/gocsv"
)

// logRow is one line of tune_log.csv.
type logRow struct {
	Eval             int     `csv:"eval"`
	Fitness          float64 `csv:"fitness"`
	MeanDuration     float64 `csv:"mean_duration"`
	MeanForced       float64 `csv:"mean_forced"`
	Incomplete       int     `csv:"incomplete"`
	BaseWeight       float64 `csv:"base_weight"`
	RampWeight       float64 `csv:"ramp_weight"`
	RampExponent     float64 `csv:"ramp_exponent"`
	PrecisionRadius  float64 `csv:"precision_radius"`
	PrecisionDamping float64 `csv:"precision_damping"`
}

// tuneLog appends one CSV row per evaluation and tracks the best parameters.
type tuneLog struct {
	w          io.Writer
	evals      int
	best       float64
	bestParams []float64
}

func newTuneLog(w io.Writer) *tuneLog {
	return &tuneLog{w: w, best: math.Inf(1)}
}

// Record writes the row for one evaluation of params, which must be clamped
// and ordered as in NewParamVector.
func (l *tuneLog) Record(fitness float64, ev Evaluation, params []float64) error {
	l.evals++
	if fitness < l.best {
		l.best = fitness
		l.bestParams = params
	}

	row := []logRow{{
		Eval:             l.evals,
		Fitness:          fitness,
		MeanDuration:     ev.MeanDuration,
		MeanForced:       ev.MeanForced,
		Incomplete:       ev.Incomplete,
		BaseWeight:       params[0],
		RampWeight:       params[1],
		RampExponent:     params[2],
		PrecisionRadius:  params[3],
		PrecisionDamping: params[4],
	}}
	if l.evals == 1 {
		return gocsv.Marshal(row, l.w)
	}
	return gocsv.MarshalWithoutHeaders(row, l.w)
}
