package config

import "time"

// Market configures the upstream Warframe Market API client.
type Market struct {
	BaseURL         string        `env:"MARKET_BASE_URL" envDefault:"https://api.warframe.market/v1"`
	Platform        string        `env:"MARKET_PLATFORM" envDefault:"pc"`
	Language        string        `env:"MARKET_LANGUAGE" envDefault:"en"`
	UserAgent       string        `env:"MARKET_USER_AGENT" envDefault:"Warframe-Market-Proxy/1.0"`
	AuthUserAgent   string        `env:"MARKET_AUTH_USER_AGENT" envDefault:"Warframe-Market-Auth/1.0"`
	RequestTimeout  time.Duration `env:"MARKET_REQUEST_TIMEOUT" envDefault:"30s"`
	OrdersCacheTTL  time.Duration `env:"MARKET_ORDERS_CACHE_TTL" envDefault:"30s"`
	CatalogCacheTTL time.Duration `env:"MARKET_CATALOG_CACHE_TTL" envDefault:"1h"`
}

type Limiter struct {
	RequestsPerSecond int           `env:"LIMITER_RPS" envDefault:"5"`
	MaxConcurrent     int           `env:"LIMITER_MAX_CONCURRENT" envDefault:"10"`
	Window            time.Duration `env:"LIMITER_WINDOW" envDefault:"1s"`
	Cooldown          time.Duration `env:"LIMITER_COOLDOWN" envDefault:"60s"`
}

type Session struct {
	TTL time.Duration `env:"SESSION_TTL" envDefault:"3600s"`
}
