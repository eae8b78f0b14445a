package forecast

// SMA computes the trailing simple moving average of series. The value at
// index t is the mean of series[t-window+1 .. t]; positions with fewer than
// window observations stay undefined rather than averaging a partial window.
// The trailing sum is carried incrementally, one add and one subtract per
// step, so the cost per position is constant regardless of window size.
func SMA(series []float64, window int) []Value {
	if window < 1 {
		window = 1
	}
	out := make([]Value, len(series))
	sum := 0.0
	for t, v := range series {
		sum += v
		if t >= window {
			sum -= series[t-window]
		}
		if t >= window-1 {
			out[t] = Defined(sum / float64(window))
		}
	}
	return out
}

// SMAOneStepAhead predicts each observation from the mean of the min(window, t)
// observations strictly before it, the window shrinking naturally near the
// start of the series. Index 0 has no prior data and stays undefined.
func SMAOneStepAhead(series []float64, window int) []Value {
	if window < 1 {
		window = 1
	}
	out := make([]Value, len(series))
	sum := 0.0
	for t := 1; t < len(series); t++ {
		sum += series[t-1]
		if t > window {
			sum -= series[t-window-1]
		}
		w := t
		if w > window {
			w = window
		}
		out[t] = Defined(sum / float64(w))
	}
	return out
}

// SMAForecast extends series by horizon steps. A moving average carries no
// trend or seasonal structure, so every step repeats the mean of the trailing
// min(window, len(series)) observations. An empty series yields undefined
// values for the whole horizon.
func SMAForecast(series []float64, window, horizon int) []Value {
	if horizon < 1 {
		horizon = 1
	}
	out := make([]Value, horizon)
	if len(series) == 0 {
		return out
	}
	if window < 1 {
		window = 1
	}
	if window > len(series) {
		window = len(series)
	}
	sum := 0.0
	for _, v := range series[len(series)-window:] {
		sum += v
	}
	level := Defined(sum / float64(window))
	for h := range out {
		out[h] = level
	}
	return out
}
