package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every environment-driven setting the service reads at startup.
type Config struct {
	Port        int
	DatabaseURL string
	RedisAddr   string

	// WriteToken is the shared secret expected in X-Test-Token on write
	// requests. Temporary stand-in until real auth lands.
	WriteToken string

	// BypassToken is the shared secret expected in X-Bypass-RateLimit to skip
	// the protection stages entirely.
	BypassToken string

	// TrustedAddrs lists client addresses that skip the protection stages
	// without a bypass token.
	TrustedAddrs []string

	// ProtectKey identifies this deployment to the protection backend; it
	// namespaces the rate-limit bucket state.
	ProtectKey string

	RateCapacity int
	RateRefill   int
	RateInterval time.Duration

	// BotCheckReads extends the bot/shield stage to read traffic as well.
	BotCheckReads bool
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("RATE_CAPACITY", 20)
	v.SetDefault("RATE_REFILL", 10)
	v.SetDefault("RATE_INTERVAL_SECONDS", 10)
	v.SetDefault("PROTECT_BOT_CHECK_READS", false)

	return Config{
		Port:          v.GetInt("PORT"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		WriteToken:    v.GetString("INTERNAL_TEST_TOKEN"),
		BypassToken:   v.GetString("RATE_BYPASS_TOKEN"),
		TrustedAddrs:  splitList(v.GetString("TRUSTED_ADDRS")),
		ProtectKey:    v.GetString("PROTECT_KEY"),
		RateCapacity:  v.GetInt("RATE_CAPACITY"),
		RateRefill:    v.GetInt("RATE_REFILL"),
		RateInterval:  time.Duration(v.GetInt("RATE_INTERVAL_SECONDS")) * time.Second,
		BotCheckReads: v.GetBool("PROTECT_BOT_CHECK_READS"),
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
