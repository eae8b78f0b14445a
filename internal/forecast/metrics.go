package forecast

import (
	"fmt"
	"math"
	"strings"
)

// Metric identifies a forecast accuracy measure.
type Metric string

const (
	// MetricMAPE is the mean absolute percentage error.
	MetricMAPE Metric = "MAPE"
	// MetricRMSE is the root mean squared error.
	MetricRMSE Metric = "RMSE"
)

// ParseMetric maps a request string onto a Metric, case-insensitively.
// An empty string selects MAPE.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "MAPE":
		return MetricMAPE, nil
	case "RMSE":
		return MetricRMSE, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Score computes metric m over index-aligned actual/predicted pairs,
// truncating to the shorter of the two sequences. Pairs where either side
// is undefined or non-finite are dropped; MAPE additionally drops pairs
// whose actual value is exactly zero. When no pairs survive the filter the
// result is undefined, which callers must treat differently from a valid
// zero score.
func Score(m Metric, actual []float64, predicted []Value) Value {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}

	switch m {
	case MetricMAPE:
		sum := 0.0
		count := 0
		for i := 0; i < n; i++ {
			if !isFinite(actual[i]) || !predicted[i].Finite() || actual[i] == 0 {
				continue
			}
			sum += math.Abs(actual[i]-predicted[i].Float64) / math.Abs(actual[i])
			count++
		}
		if count == 0 {
			return Undefined()
		}
		return Defined(sum / float64(count) * 100)

	case MetricRMSE:
		sum := 0.0
		count := 0
		for i := 0; i < n; i++ {
			if !isFinite(actual[i]) || !predicted[i].Finite() {
				continue
			}
			diff := actual[i] - predicted[i].Float64
			sum += diff * diff
			count++
		}
		if count == 0 {
			return Undefined()
		}
		return Defined(math.Sqrt(sum / float64(count)))
	}

	return Undefined()
}
