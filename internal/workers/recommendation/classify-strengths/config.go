// internal/workers/recommendation/classify-strengths/config.go
package classifystrengths

import "time"

type Config struct {
	Timeout  time.Duration
	TopCount int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		TopCount: 3,
	}
}
