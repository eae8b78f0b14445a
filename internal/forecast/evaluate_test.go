package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mode
		wantErr bool
	}{
		{name: "empty defaults to rolling", input: "", want: ModeRolling},
		{name: "rolling", input: "rolling", want: ModeRolling},
		{name: "holdout uppercase", input: "HOLDOUT", want: ModeHoldout},
		{name: "unknown mode", input: "walkforward", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_Rolling(t *testing.T) {
	params := EvalParams{
		Mode:        ModeRolling,
		Metric:      MetricMAPE,
		Window:      3,
		HoltWinters: HoltWintersParams{Alpha: 0.5, Beta: 0.5, Gamma: 0.5, Period: 2},
	}
	series := []float64{1, 2, 3, 4, 5}

	res := Evaluate(series, params)

	assert.Equal(t, ModeRolling, res.Mode)
	assert.Equal(t, MetricMAPE, res.Metric)
	assert.Zero(t, res.Holdout)

	// One-step-ahead SMA is [_ 1 1.5 2 3]; the absolute percentage errors
	// are 0.5, 0.5, 0.5 and 0.4.
	sma := res.Scores[MethodSMA]
	require.True(t, sma.Valid)
	assert.InDelta(t, 47.5, sma.Float64, 1e-9)

	hw := res.Scores[MethodHoltWinters]
	require.True(t, hw.Valid)
	direct := Score(MetricMAPE, series, HoltWintersSmooth(series, params.HoltWinters).OneStepAhead)
	assert.InDelta(t, direct.Float64, hw.Float64, 1e-12)
}

func TestEvaluate_RollingConstantSeriesScoresZero(t *testing.T) {
	params := EvalParams{
		Mode:        ModeRolling,
		Metric:      MetricMAPE,
		Window:      4,
		HoltWinters: HoltWintersParams{Alpha: 0.3, Beta: 0.2, Gamma: 0.4, Period: 4},
	}

	res := Evaluate(constantSeries(100, 20), params)

	for method, score := range res.Scores {
		require.True(t, score.Valid, method)
		assert.InDelta(t, 0, score.Float64, 1e-9, method)
	}
}

func TestEvaluate_Holdout(t *testing.T) {
	params := EvalParams{
		Mode:        ModeHoldout,
		Metric:      MetricMAPE,
		Window:      2,
		HoltWinters: HoltWintersParams{Alpha: 0.5, Beta: 0.5, Gamma: 0.5, Period: 2},
		Holdout:     2,
	}
	series := []float64{1, 2, 3, 4, 5, 6}

	res := Evaluate(series, params)

	assert.Equal(t, 2, res.Holdout)

	// Training prefix [1 2 3 4], window 2: flat forecast 3.5 against the
	// withheld [5 6].
	sma := res.Scores[MethodSMA]
	require.True(t, sma.Valid)
	assert.InDelta(t, (1.5/5.0+2.5/6.0)/2*100, sma.Float64, 1e-9)

	hw := res.Scores[MethodHoltWinters]
	assert.True(t, hw.Valid)
}

func TestEvaluate_HoldoutClampsLongRequest(t *testing.T) {
	params := EvalParams{
		Mode:        ModeHoldout,
		Metric:      MetricMAPE,
		Window:      3,
		HoltWinters: HoltWintersParams{Alpha: 0.5, Beta: 0.5, Gamma: 0.5, Period: 4},
		Holdout:     99,
	}
	series := []float64{1, 2, 3, 4, 5}

	res := Evaluate(series, params)

	// A request beyond the series clamps to n-1, leaving one training point.
	require.Equal(t, 4, res.Holdout)

	// Both methods degrade to a flat forecast of that single point.
	want := (1.0/2 + 2.0/3 + 3.0/4 + 4.0/5) / 4 * 100
	for method, score := range res.Scores {
		require.True(t, score.Valid, method)
		assert.InDelta(t, want, score.Float64, 1e-9, method)
	}
}

func TestEvaluate_HoldoutFloorsShortRequest(t *testing.T) {
	params := EvalParams{
		Mode:        ModeHoldout,
		Metric:      MetricRMSE,
		Window:      2,
		HoltWinters: HoltWintersParams{Alpha: 0.5, Beta: 0.5, Gamma: 0.5, Period: 2},
		Holdout:     0,
	}

	res := Evaluate([]float64{1, 2, 3, 4, 5}, params)

	assert.Equal(t, 1, res.Holdout)
	assert.True(t, res.Scores[MethodSMA].Valid)
}

func TestEvaluate_SeriesTooShortToSplit(t *testing.T) {
	params := EvalParams{
		Mode:        ModeHoldout,
		Metric:      MetricMAPE,
		Window:      2,
		HoltWinters: HoltWintersParams{Alpha: 0.5, Beta: 0.5, Gamma: 0.5, Period: 2},
		Holdout:     3,
	}

	for _, series := range [][]float64{nil, {42}} {
		res := Evaluate(series, params)

		assert.Zero(t, res.Holdout)
		assert.False(t, res.Scores[MethodSMA].Valid)
		assert.False(t, res.Scores[MethodHoltWinters].Valid)
	}
}

func TestEvaluate_RollingEmptySeries(t *testing.T) {
	params := EvalParams{
		Mode:        ModeRolling,
		Metric:      MetricRMSE,
		Window:      3,
		HoltWinters: HoltWintersParams{Alpha: 0.5, Beta: 0.5, Gamma: 0.5, Period: 4},
	}

	res := Evaluate(nil, params)

	assert.False(t, res.Scores[MethodSMA].Valid)
	assert.False(t, res.Scores[MethodHoltWinters].Valid)
}

func TestClampHoldout(t *testing.T) {
	tests := []struct {
		name string
		h    int
		n    int
		want int
	}{
		{name: "inside range", h: 3, n: 10, want: 3},
		{name: "floors to one", h: 0, n: 10, want: 1},
		{name: "caps at n-1", h: 50, n: 10, want: 9},
		{name: "single point cannot split", h: 1, n: 1, want: 0},
		{name: "empty cannot split", h: 1, n: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampHoldout(tt.h, tt.n))
		})
	}
}
