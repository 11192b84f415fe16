// internal/workers/recommendation/validate-exam-results/config.go
package validateexamresults

import "time"

type Config struct {
	Timeout     time.Duration
	MinSubjects int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		MinSubjects: 7,
	}
}
