package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// CareerQuery defines the structure of a career search request
type CareerQuery struct {
	Index      string
	QueryType  string
	Filters    map[string]interface{}
	CareerID   string
	Category   string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, cq CareerQuery) (*esapi.SearchRequest, error) {
	if cq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch cq.QueryType {
	case "career_search":
		queryBody = buildCareerSearchQuery(cq)
	case "related_careers":
		queryBody = buildRelatedCareersQuery(cq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, cq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{cq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &cq.Pagination.From,
		Size:   &cq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildCareerSearchQuery builds the main career search query dynamically
func buildCareerSearchQuery(cq CareerQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Keyword search
	if keywords, ok := cq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"title^3", "description^2", "key_subjects", "category"},
				"type":   "best_fields",
			},
		})
	}

	// Category filter
	if category, ok := cq.Filters["category"].(string); ok && category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": category},
		})
	} else if cq.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": cq.Category},
		})
	}

	// Market demand filter
	if demand, ok := cq.Filters["marketDemand"].(string); ok && demand != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"market_demand": demand},
		})
	}

	// Key subject filter
	if subjects, ok := cq.Filters["keySubjects"].([]interface{}); ok && len(subjects) > 0 {
		terms := make([]string, 0, len(subjects))
		for _, sub := range subjects {
			if s, ok := sub.(string); ok {
				terms = append(terms, s)
			}
		}
		if len(terms) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"terms": map[string]interface{}{"key_subjects": terms},
			})
		}
	}

	// Default match_all if no keyword
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	// Sorting logic
	if sortBy, ok := cq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "title":
			query["sort"] = []map[string]interface{}{{"title.keyword": "asc"}}
		case "category":
			query["sort"] = []map[string]interface{}{{"category": "asc"}}
		}
	}

	return query
}

// buildRelatedCareersQuery builds "similar careers" query
func buildRelatedCareersQuery(cq CareerQuery) map[string]interface{} {
	if cq.CareerID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"title", "description", "category", "key_subjects"},
				"like": []map[string]interface{}{
					{"_index": cq.Index, "_id": cq.CareerID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}
