package config

import "time"

type Jobs struct {
	DefaultBatchSize int           `env:"JOBS_DEFAULT_BATCH_SIZE" envDefault:"3"`
	MaxBatchSize     int           `env:"JOBS_MAX_BATCH_SIZE" envDefault:"10"`
	BatchDelay       time.Duration `env:"JOBS_BATCH_DELAY" envDefault:"200ms"`
	TTL              time.Duration `env:"JOBS_TTL" envDefault:"1h"`
	PrimeOnly        bool          `env:"JOBS_PRIME_ONLY" envDefault:"true"`
	IngameOnly       bool          `env:"JOBS_INGAME_ONLY" envDefault:"true"`
}

// Bot is optional: the notifier stays off while Token is empty.
type Bot struct {
	Token   string `env:"BOT_TOKEN" json:"-"`
	ChatID  int64  `env:"BOT_CHAT_ID"`
	AdminID int64  `env:"BOT_ADMIN_ID"`
	TopN    int    `env:"BOT_TOP_N" envDefault:"5"`
}

func (b Bot) Enabled() bool {
	return b.Token != "" && b.ChatID != 0
}

// CommandsEnabled reports whether admin commands should be served.
func (b Bot) CommandsEnabled() bool {
	return b.Enabled() && b.AdminID != 0
}
