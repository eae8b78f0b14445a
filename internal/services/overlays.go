package services

import (
	"fmt"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/sirupsen/logrus"

	"github.com/statmill/weekcast/internal/forecast"
	"github.com/statmill/weekcast/internal/models"
)

// OverlayService computes display-only indicator curves that ride along the
// history in forecast responses. Overlays never feed the forecasting engines.
type OverlayService struct {
	logger     *logrus.Logger
	emaPeriod  int
	rsiPeriod  int
	bandPeriod int
	bandWidth  float64
}

// NewOverlayService creates an overlay service with the default periods.
func NewOverlayService(logger *logrus.Logger) *OverlayService {
	return &OverlayService{
		logger:     logger,
		emaPeriod:  4,
		rsiPeriod:  14,
		bandPeriod: 8,
		bandWidth:  2.0,
	}
}

// Compute returns the overlay curves that fit the series length. Curves whose
// warm-up exceeds the series are omitted.
func (s *OverlayService) Compute(values []float64) []models.OverlayCurve {
	curves := make([]models.OverlayCurve, 0, 4)

	if curve := s.emaOverlay(values); curve != nil {
		curves = append(curves, *curve)
	}
	if curve := s.rsiOverlay(values); curve != nil {
		curves = append(curves, *curve)
	}
	curves = append(curves, s.bollingerOverlays(values)...)

	if len(curves) > 0 {
		s.logger.WithFields(logrus.Fields{
			"points": len(values),
			"curves": len(curves),
		}).Debug("Computed overlay curves")
	}
	return curves
}

// emaOverlay calculates an Exponential Moving Average curve
func (s *OverlayService) emaOverlay(values []float64) *models.OverlayCurve {
	if len(values) < s.emaPeriod {
		return nil
	}

	emaIndicator := trend.NewEmaWithPeriod[float64](s.emaPeriod)
	result := helper.ChanToSlice(emaIndicator.Compute(helper.SliceToChan(values)))

	return &models.OverlayCurve{
		Name:   fmt.Sprintf("EMA_%d", s.emaPeriod),
		Values: alignRight(len(values), result),
	}
}

// rsiOverlay calculates a Relative Strength Index curve
func (s *OverlayService) rsiOverlay(values []float64) *models.OverlayCurve {
	if len(values) < s.rsiPeriod+1 {
		return nil
	}

	rsiIndicator := momentum.NewRsiWithPeriod[float64](s.rsiPeriod)
	result := helper.ChanToSlice(rsiIndicator.Compute(helper.SliceToChan(values)))

	return &models.OverlayCurve{
		Name:   fmt.Sprintf("RSI_%d", s.rsiPeriod),
		Values: alignRight(len(values), result),
	}
}

// bollingerOverlays calculates upper and lower Bollinger Band curves around a
// simple moving average.
func (s *OverlayService) bollingerOverlays(values []float64) []models.OverlayCurve {
	if len(values) < s.bandPeriod {
		return nil
	}

	smaIndicator := trend.NewSmaWithPeriod[float64](s.bandPeriod)
	smaValues := helper.ChanToSlice(smaIndicator.Compute(helper.SliceToChan(values)))

	upper := make([]float64, len(smaValues))
	lower := make([]float64, len(smaValues))
	for i := range smaValues {
		window := values[i : i+s.bandPeriod]
		sd := standardDeviation(window, smaValues[i])
		upper[i] = smaValues[i] + s.bandWidth*sd
		lower[i] = smaValues[i] - s.bandWidth*sd
	}

	return []models.OverlayCurve{
		{Name: fmt.Sprintf("BB_UPPER_%d", s.bandPeriod), Values: alignRight(len(values), upper)},
		{Name: fmt.Sprintf("BB_LOWER_%d", s.bandPeriod), Values: alignRight(len(values), lower)},
	}
}

// standardDeviation calculates the population standard deviation of a window
// around a known mean.
func standardDeviation(window []float64, mean float64) float64 {
	if len(window) == 0 {
		return 0
	}

	variance := 0.0
	for _, v := range window {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(window))

	return math.Sqrt(variance)
}

// alignRight pads indicator output so index i lines up with observation i,
// with the warm-up prefix left undefined.
func alignRight(n int, values []float64) []forecast.Value {
	out := make([]forecast.Value, n)
	pad := n - len(values)
	if pad < 0 {
		values = values[len(values)-n:]
		pad = 0
	}
	for i, v := range values {
		out[pad+i] = forecast.Defined(v)
	}
	return out
}
