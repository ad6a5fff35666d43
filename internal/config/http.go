package config

import "time"

type HTTP struct {
	ListenAddress        string        `env:"HTTP_LISTEN_ADDR" envDefault:":3001"`
	ProbeListenAddress   string        `env:"PROBE_LISTEN_ADDR" envDefault:":8081"`
	MetricsListenAddress string        `env:"METRICS_LISTEN_ADDR" envDefault:":9090"`
	ShutdownTimeout      time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogFieldMaxLen       int           `env:"LOG_FIELD_MAX_LEN" envDefault:"4096"`
	InboundRPS           float64       `env:"INBOUND_RPS" envDefault:"20"`
	InboundBurst         int           `env:"INBOUND_BURST" envDefault:"40"`
	CORSAllowOrigin      string        `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`
}
