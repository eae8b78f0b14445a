package forecast

// HoltWintersParams holds the additive Holt-Winters smoothing constants and
// the seasonal period. Alpha, Beta and Gamma set how quickly the level,
// trend and seasonal estimates adapt to new observations; Period is the
// number of steps per seasonal cycle (52 for weekly data with an annual
// rhythm). Constants are expected in (0,1) and the period is floored to 1
// where it is used as a divisor or modulus.
type HoltWintersParams struct {
	Alpha  float64 `json:"alpha"`
	Beta   float64 `json:"beta"`
	Gamma  float64 `json:"gamma"`
	Period int     `json:"period"`
}

// HoltWintersState carries per-index smoothing components together with the
// in-sample reconstruction. Fitted and OneStepAhead stay undefined at index
// 0, where no prior state exists; both hold the prediction made from the
// state of the previous step, so they agree at every index.
type HoltWintersState struct {
	Level        []float64
	Trend        []float64
	Seasonal     []float64
	Fitted       []Value
	OneStepAhead []Value
}

// trendLookback bounds how many initial first-differences feed the starting
// trend estimate.
const trendLookback = 10

// HoltWintersSmooth runs additive Holt-Winters smoothing over series.
//
// Initialization: the seasonal table starts from per-position deviations
// around the overall mean (see seasonalInit), the level from the first
// observation minus its seasonal estimate, and the trend from the average
// first-difference over the first min(trendLookback, n-1) steps.
//
// Recursion for t >= 1, with sPrev the seasonal estimate from one full
// period earlier (the initialization table before a period has elapsed):
//
//	prediction[t] = level[t-1] + trend[t-1] + sPrev
//	level[t]      = alpha*(y[t] - sPrev) + (1-alpha)*(level[t-1] + trend[t-1])
//	trend[t]      = beta*(level[t] - level[t-1]) + (1-beta)*trend[t-1]
//	seasonal[t]   = gamma*(y[t] - level[t]) + (1-gamma)*sPrev for t >= period,
//	                copied from the initialization table before that
//
// The input is never mutated. An empty series yields empty state.
func HoltWintersSmooth(series []float64, p HoltWintersParams) HoltWintersState {
	n := len(series)
	st := HoltWintersState{
		Level:        make([]float64, n),
		Trend:        make([]float64, n),
		Seasonal:     make([]float64, n),
		Fitted:       make([]Value, n),
		OneStepAhead: make([]Value, n),
	}
	if n == 0 {
		return st
	}

	period := p.Period
	if period < 1 {
		period = 1
	}
	init := seasonalInit(series, period)

	st.Level[0] = series[0] - init[0]
	st.Trend[0] = initialTrend(series)
	st.Seasonal[0] = init[0]

	for t := 1; t < n; t++ {
		sPrev := init[t%period]
		if t >= period {
			sPrev = st.Seasonal[t-period]
		}

		pred := st.Level[t-1] + st.Trend[t-1] + sPrev
		st.OneStepAhead[t] = Defined(pred)
		st.Fitted[t] = Defined(pred)

		st.Level[t] = p.Alpha*(series[t]-sPrev) + (1-p.Alpha)*(st.Level[t-1]+st.Trend[t-1])
		st.Trend[t] = p.Beta*(st.Level[t]-st.Level[t-1]) + (1-p.Beta)*st.Trend[t-1]
		if t < period {
			st.Seasonal[t] = init[t]
		} else {
			st.Seasonal[t] = p.Gamma*(series[t]-st.Level[t]) + (1-p.Gamma)*sPrev
		}
	}

	return st
}

// HoltWintersForecast extends series by horizon steps: linear extrapolation
// of the terminal level and trend plus the most recent seasonal estimate for
// each within-period position. The step-h value is
//
//	level[n-1] + h*trend[n-1] + seasonal[(n+h-1) mod period]
//
// where the seasonal lookup is filled walking backward from the end of the
// smoothed sequence, falling back to the initialization table for positions
// the series never reached. An empty series yields an undefined horizon.
func HoltWintersForecast(series []float64, p HoltWintersParams, horizon int) []Value {
	if horizon < 1 {
		horizon = 1
	}
	out := make([]Value, horizon)
	n := len(series)
	if n == 0 {
		return out
	}

	period := p.Period
	if period < 1 {
		period = 1
	}
	st := HoltWintersSmooth(series, p)

	lookup := make([]float64, period)
	have := make([]bool, period)
	missing := period
	for t := n - 1; t >= 0 && missing > 0; t-- {
		pos := t % period
		if !have[pos] {
			lookup[pos] = st.Seasonal[t]
			have[pos] = true
			missing--
		}
	}
	if missing > 0 {
		init := seasonalInit(series, period)
		for pos, ok := range have {
			if !ok {
				lookup[pos] = init[pos]
			}
		}
	}

	level := st.Level[n-1]
	trend := st.Trend[n-1]
	for h := 1; h <= horizon; h++ {
		out[h-1] = Defined(level + float64(h)*trend + lookup[(n+h-1)%period])
	}
	return out
}

// seasonalInit builds the starting seasonal table. With at least one complete
// period, entry p is the mean of the observations at position p across all
// complete periods, minus the overall series mean. A series shorter than one
// period falls back to the raw observation at each covered position and the
// overall mean beyond the end.
func seasonalInit(series []float64, period int) []float64 {
	init := make([]float64, period)
	n := len(series)
	if n == 0 {
		return init
	}

	overall := mean(series)
	periods := n / period
	if periods == 0 {
		for pos := range init {
			if pos < n {
				init[pos] = series[pos]
			} else {
				init[pos] = overall
			}
		}
		return init
	}

	for pos := 0; pos < period; pos++ {
		sum := 0.0
		for k := 0; k < periods; k++ {
			sum += series[k*period+pos]
		}
		init[pos] = sum/float64(periods) - overall
	}
	return init
}

// initialTrend averages the first differences over at most trendLookback
// initial steps, with the divisor floored to 1 so a single-observation
// series yields zero trend instead of dividing by zero.
func initialTrend(series []float64) float64 {
	steps := len(series) - 1
	if steps > trendLookback {
		steps = trendLookback
	}
	sum := 0.0
	for i := 1; i <= steps; i++ {
		sum += series[i] - series[i-1]
	}
	if steps < 1 {
		steps = 1
	}
	return sum / float64(steps)
}

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}
