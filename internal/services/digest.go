package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/statmill/weekcast/internal/config"
	"github.com/statmill/weekcast/internal/forecast"
	seriesModels "github.com/statmill/weekcast/internal/models"
)

// DigestStore is the read-only repository surface the digest needs.
type DigestStore interface {
	ListSeries(ctx context.Context) ([]seriesModels.SeriesSummary, error)
	GetObservations(ctx context.Context, seriesID string) ([]seriesModels.Observation, error)
}

// DigestEntry summarizes one series for the weekly digest: the latest
// observed value, each method's next-week forecast, and rolling accuracy.
type DigestEntry struct {
	Slug    string         `json:"slug"`
	Name    string         `json:"name"`
	Unit    string         `json:"unit,omitempty"`
	Latest  forecast.Value `json:"latest"`
	NextSMA forecast.Value `json:"next_sma"`
	NextHW  forecast.Value `json:"next_hw"`
	MAPESMA forecast.Value `json:"mape_sma"`
	MAPEHW  forecast.Value `json:"mape_hw"`
}

// DigestService periodically sends a Telegram summary of every tracked
// series: where each one stands, where both methods expect it to go next
// week, and how accurate each method has been.
type DigestService struct {
	store    DigestStore
	bot      *bot.Bot
	chatID   int64
	interval time.Duration
	params   config.ForecastConfig
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewDigestService creates a digest service. The bot stays nil when no token
// is configured; SendDigest then reports an error instead of sending.
func NewDigestService(store DigestStore, telegramCfg config.TelegramConfig, forecastCfg config.ForecastConfig) *DigestService {
	var telegramBot *bot.Bot
	if telegramCfg.BotToken != "" {
		b, err := bot.New(telegramCfg.BotToken)
		if err != nil {
			log.Printf("Failed to initialize telegram bot: %v", err)
		} else {
			telegramBot = b
		}
	}

	return &DigestService{
		store:    store,
		bot:      telegramBot,
		chatID:   telegramCfg.ChatID,
		interval: telegramCfg.DigestIntervalDuration(),
		params:   forecastCfg,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the periodic digest loop. It is a no-op when the bot is not
// configured or no chat ID is set.
func (ds *DigestService) Start(ctx context.Context) {
	if ds.bot == nil || ds.chatID == 0 {
		log.Printf("Telegram digest disabled: bot or chat ID not configured")
		return
	}

	go func() {
		ticker := time.NewTicker(ds.interval)
		defer ticker.Stop()

		log.Printf("Telegram digest started with interval %s", ds.interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ds.stopCh:
				return
			case <-ticker.C:
				if err := ds.SendDigest(ctx); err != nil {
					log.Printf("Failed to send scheduled digest: %v", err)
				}
			}
		}
	}()
}

// Stop terminates the digest loop.
func (ds *DigestService) Stop() {
	ds.stopOnce.Do(func() {
		close(ds.stopCh)
	})
}

// SendDigest builds and sends the digest message immediately.
func (ds *DigestService) SendDigest(ctx context.Context) error {
	if ds.bot == nil {
		return fmt.Errorf("telegram bot not initialized")
	}

	entries, err := ds.BuildDigest(ctx)
	if err != nil {
		return fmt.Errorf("failed to build digest: %w", err)
	}

	message := ds.formatDigestMessage(entries)
	_, err = ds.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    ds.chatID,
		Text:      message,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	log.Printf("Sent digest for %d series to chat %d", len(entries), ds.chatID)
	return nil
}

// BuildDigest computes the per-series digest entries.
func (ds *DigestService) BuildDigest(ctx context.Context) ([]DigestEntry, error) {
	summaries, err := ds.store.ListSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}

	hwParams := forecast.HoltWintersParams{
		Alpha:  ds.params.Alpha,
		Beta:   ds.params.Beta,
		Gamma:  ds.params.Gamma,
		Period: ds.params.Period,
	}

	entries := make([]DigestEntry, 0, len(summaries))
	for _, summary := range summaries {
		observations, err := ds.store.GetObservations(ctx, summary.ID)
		if err != nil {
			log.Printf("Skipping series %s in digest: %v", summary.Slug, err)
			continue
		}
		values := observationValues(observations)

		entry := DigestEntry{
			Slug:    summary.Slug,
			Name:    summary.Name,
			Unit:    summary.Unit,
			Latest:  forecast.Undefined(),
			NextSMA: forecast.Undefined(),
			NextHW:  forecast.Undefined(),
			MAPESMA: forecast.Undefined(),
			MAPEHW:  forecast.Undefined(),
		}

		if len(values) > 0 {
			entry.Latest = forecast.Defined(values[len(values)-1])
			entry.NextSMA = forecast.SMAForecast(values, ds.params.Window, 1)[0]
			entry.NextHW = forecast.HoltWintersForecast(values, hwParams, 1)[0]

			accuracy := forecast.Evaluate(values, forecast.EvalParams{
				Mode:        forecast.ModeRolling,
				Metric:      forecast.MetricMAPE,
				Window:      ds.params.Window,
				HoltWinters: hwParams,
			})
			entry.MAPESMA = accuracy.Scores[forecast.MethodSMA]
			entry.MAPEHW = accuracy.Scores[forecast.MethodHoltWinters]
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// formatDigestMessage creates the formatted weekly digest message.
func (ds *DigestService) formatDigestMessage(entries []DigestEntry) string {
	if len(entries) == 0 {
		return "📅 *Weekly Forecast Digest*\n\nNo series tracked yet."
	}

	message := "📅 *Weekly Forecast Digest*\n\n"
	message += fmt.Sprintf("Covering %d series:\n\n", len(entries))

	for _, entry := range entries {
		label := entry.Name
		if entry.Unit != "" {
			label = fmt.Sprintf("%s (%s)", entry.Name, entry.Unit)
		}
		message += fmt.Sprintf("%s *%s*\n", trendEmoji(entry.Latest, entry.NextHW), label)
		message += fmt.Sprintf("📈 Latest: %s\n", formatDigestValue(entry.Latest))
		message += fmt.Sprintf("🔮 Next week: %s (SMA) / %s (HW)\n",
			formatDigestValue(entry.NextSMA), formatDigestValue(entry.NextHW))
		message += fmt.Sprintf("🎯 Rolling MAPE: %s (SMA) / %s (HW)\n",
			formatDigestPercent(entry.MAPESMA), formatDigestPercent(entry.MAPEHW))
		message += "\n"
	}

	message += fmt.Sprintf("⚙️ window %d, period %d, alpha %.2f",
		ds.params.Window, ds.params.Period, ds.params.Alpha)

	return message
}

// trendEmoji picks an arrow comparing next week's Holt-Winters forecast to
// the latest observed value. Moves under one percent count as flat.
func trendEmoji(latest, next forecast.Value) string {
	if !latest.Finite() || !next.Finite() || latest.Float64 == 0 {
		return "➡️"
	}

	change := (next.Float64 - latest.Float64) / latest.Float64
	switch {
	case change > 0.01:
		return "↗️"
	case change < -0.01:
		return "↘️"
	default:
		return "➡️"
	}
}

func formatDigestValue(v forecast.Value) string {
	if !v.Finite() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

func formatDigestPercent(v forecast.Value) string {
	if !v.Finite() {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v.Float64)
}
