package searchcareers

type Input struct {
	QueryType  string                 `json:"queryType"`
	Filters    map[string]interface{} `json:"filters"`
	CareerID   string                 `json:"careerId,omitempty"`
	Category   string                 `json:"category,omitempty"`
	Pagination Pagination             `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Careers   []map[string]interface{} `json:"careers"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"` // milliseconds
}
