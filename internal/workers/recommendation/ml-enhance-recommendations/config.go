// internal/workers/recommendation/ml-enhance-recommendations/config.go
package mlenhancerecommendations

import "time"

type Config struct {
	Timeout    time.Duration
	Candidates int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    5 * time.Second,
		Candidates: 20,
	}
}
