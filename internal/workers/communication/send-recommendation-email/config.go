// internal/workers/communication/send-recommendation-email/config.go
package sendrecommendationemail

import "time"

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AWSRegion    string
	TopCareers   int
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled: true,
		TopCareers:   3,
		Timeout:      30 * time.Second,
	}
}
