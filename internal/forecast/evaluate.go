// Package forecast implements moving-average and additive Holt-Winters
// forecasting over equally spaced numeric series, together with rolling and
// holdout accuracy evaluation. Every function is a pure function of the
// series and its parameters: nothing is cached between calls and inputs are
// never mutated, so concurrent invocations need no coordination.
package forecast

import (
	"fmt"
	"strings"
)

// Mode selects how actual/predicted pairs are assembled for scoring.
type Mode string

const (
	// ModeRolling scores one-step-ahead predictions across the whole
	// series, measuring tracking error under continuous re-estimation.
	ModeRolling Mode = "rolling"
	// ModeHoldout scores a multi-step forecast from a training prefix
	// against the withheld suffix, measuring pure extrapolation quality.
	ModeHoldout Mode = "holdout"
)

// ParseMode maps a request string onto a Mode, case-insensitively.
// An empty string selects rolling evaluation.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rolling":
		return ModeRolling, nil
	case "holdout":
		return ModeHoldout, nil
	default:
		return "", fmt.Errorf("unknown evaluation mode %q", s)
	}
}

// Method names reported by the evaluation harness.
const (
	MethodSMA         = "SMA"
	MethodHoltWinters = "HW"
)

// EvalParams bundles everything the harness needs to score both methods
// over one series.
type EvalParams struct {
	Mode        Mode
	Metric      Metric
	Window      int
	HoltWinters HoltWintersParams
	// Holdout is the requested holdout length; the harness clamps it to
	// [1, n-1] before splitting. Ignored in rolling mode.
	Holdout int
}

// EvalResult reports one score per forecasting method, keyed by method
// name, plus the effective holdout length after clamping (zero in rolling
// mode or when the series is too short to split).
type EvalResult struct {
	Mode    Mode             `json:"mode"`
	Metric  Metric           `json:"metric"`
	Holdout int              `json:"holdout,omitempty"`
	Scores  map[string]Value `json:"scores"`
}

// Evaluate scores the SMA and Holt-Winters methods over series under the
// requested mode and metric.
//
// Rolling mode runs each method's one-step-ahead variant over the entire
// series and scores it against the actuals; there is no train/test split.
// Holdout mode clamps the holdout length to [1, n-1], forecasts from the
// training prefix with that horizon, and scores against the withheld
// suffix. A series too short to split (n <= 1) yields undefined scores.
func Evaluate(series []float64, p EvalParams) EvalResult {
	res := EvalResult{
		Mode:   p.Mode,
		Metric: p.Metric,
		Scores: make(map[string]Value, 2),
	}

	switch p.Mode {
	case ModeHoldout:
		n := len(series)
		h := clampHoldout(p.Holdout, n)
		res.Holdout = h
		if h < 1 {
			res.Scores[MethodSMA] = Undefined()
			res.Scores[MethodHoltWinters] = Undefined()
			return res
		}
		train, test := series[:n-h], series[n-h:]
		res.Scores[MethodSMA] = Score(p.Metric, test, SMAForecast(train, p.Window, h))
		res.Scores[MethodHoltWinters] = Score(p.Metric, test, HoltWintersForecast(train, p.HoltWinters, h))

	default:
		res.Scores[MethodSMA] = Score(p.Metric, series, SMAOneStepAhead(series, p.Window))
		res.Scores[MethodHoltWinters] = Score(p.Metric, series, HoltWintersSmooth(series, p.HoltWinters).OneStepAhead)
	}

	return res
}

// clampHoldout bounds h to [1, n-1]. A series of length <= 1 has no valid
// split, reported as 0.
func clampHoldout(h, n int) int {
	if n <= 1 {
		return 0
	}
	if h < 1 {
		return 1
	}
	if h > n-1 {
		return n - 1
	}
	return h
}
