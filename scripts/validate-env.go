package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/statmill/weekcast/internal/config"
)

func main() {
	fmt.Println("🔧 Validating weekcast configuration...")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	// Load configuration; this also validates forecast parameters and
	// security settings.
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Configuration loaded (environment: %s)\n", cfg.Environment)

	warnings := 0

	// Database
	if cfg.Database.DatabaseURL != "" {
		fmt.Println("✅ DATABASE_URL is configured")
	} else {
		fmt.Printf("✅ Database: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	}

	// Redis
	fmt.Printf("✅ Redis: %s:%d (db %d)\n", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB)

	// Security
	if cfg.Security.JWTSecret == "" {
		fmt.Println("⚠️  JWT_SECRET is not set; tokens will not survive restarts safely")
		warnings++
	} else if len(cfg.Security.JWTSecret) < 32 {
		fmt.Printf("⚠️  JWT_SECRET is short (%d chars); 32 or more is recommended\n", len(cfg.Security.JWTSecret))
		warnings++
	} else {
		fmt.Printf("✅ JWT_SECRET is configured (length: %d)\n", len(cfg.Security.JWTSecret))
	}
	if cfg.Security.AdminPasswordHash == "" {
		fmt.Println("⚠️  ADMIN_PASSWORD_HASH is not set; admin login is disabled")
		warnings++
	} else {
		fmt.Println("✅ ADMIN_PASSWORD_HASH is configured")
	}

	// Forecast defaults
	fmt.Printf("✅ Forecast defaults: window=%d alpha=%g beta=%g gamma=%g period=%d horizon=%d ttl=%s\n",
		cfg.Forecast.Window, cfg.Forecast.Alpha, cfg.Forecast.Beta, cfg.Forecast.Gamma,
		cfg.Forecast.Period, cfg.Forecast.Horizon, cfg.Forecast.CacheTTLDuration())

	// Telegram digest
	if cfg.Telegram.BotToken == "" {
		fmt.Println("⚠️  TELEGRAM_BOT_TOKEN is not set; the weekly digest is disabled")
		warnings++
	} else {
		fmt.Printf("✅ TELEGRAM_BOT_TOKEN is configured (length: %d)\n", len(cfg.Telegram.BotToken))

		b, err := bot.New(cfg.Telegram.BotToken)
		if err != nil {
			fmt.Printf("❌ Failed to create Telegram bot: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("🔍 Testing bot API connection...")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		botInfo, err := b.GetMe(ctx)
		if err != nil {
			fmt.Printf("❌ Failed to get bot info: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Bot API connection successful!\n")
		fmt.Printf("   Bot Name: %s\n", botInfo.FirstName)
		fmt.Printf("   Bot Username: @%s\n", botInfo.Username)
		fmt.Printf("   Bot ID: %d\n", botInfo.ID)

		if cfg.Telegram.ChatID == 0 {
			fmt.Println("⚠️  TELEGRAM_CHAT_ID is not set; digests have nowhere to go")
			warnings++
		} else {
			fmt.Printf("✅ Digest target chat: %d (every %s)\n", cfg.Telegram.ChatID, cfg.Telegram.DigestIntervalDuration())
		}
	}

	if warnings > 0 {
		fmt.Printf("\n🎯 Configuration is usable with %d warning(s).\n", warnings)
	} else {
		fmt.Println("\n🎉 All configuration checks passed!")
	}
}
