// internal/workers/recommendation/score-career-matches/config.go
package scorecareermatches

import "time"

type Config struct {
	Timeout       time.Duration
	MinMatchScore int
	CacheTTL      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		MinMatchScore: 50,
		CacheTTL:      10 * time.Minute,
	}
}
