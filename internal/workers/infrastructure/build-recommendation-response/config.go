// internal/workers/infrastructure/build-recommendation-response/config.go
package buildrecommendationresponse

import "time"

type Config struct {
	TemplateRegistry string
	TemplateID       string
	CacheTTL         time.Duration
	AppVersion       string
	Timeout          time.Duration
}

func LoadConfig() *Config {
	return &Config{
		TemplateRegistry: "configs/response-templates.json",
		TemplateID:       "recommendation-response",
		CacheTTL:         5 * time.Minute,
		AppVersion:       "1.0.0",
		Timeout:          10 * time.Second,
	}
}
