// internal/workers/recommendation/persist-recommendation/config.go
package persistrecommendation

import "time"

type Config struct {
	Timeout            time.Duration
	MaxRecommendations int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:            10 * time.Second,
		MaxRecommendations: 10,
	}
}
