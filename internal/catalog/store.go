// Package catalog loads career reference data from Postgres with a Redis
// read-through cache. The catalog is read-only during a scoring pass.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"career-recommender-workers/internal/common/logger"
	"career-recommender-workers/internal/common/metrics"
	"career-recommender-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "catalog:careers:all"

type Store struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewStore(db *sql.DB, redisClient *redis.Client, cacheTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		db:       db,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// AllCareers returns the full catalog. The Redis cache is consulted first;
// a miss falls through to Postgres and repopulates the cache.
func (s *Store) AllCareers(ctx context.Context) ([]models.Career, error) {
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var careers []models.Career
			if err := json.Unmarshal([]byte(val), &careers); err == nil {
				metrics.CatalogCacheHits.WithLabelValues("hit").Inc()
				return careers, nil
			}
		}
		metrics.CatalogCacheHits.WithLabelValues("miss").Inc()
	}

	careers, err := s.queryCareers(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(careers); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache catalog", map[string]interface{}{
					"error": err,
				})
			}
		}
	}

	return careers, nil
}

// CareerByID fetches one career. Used to populate display data for the
// response and email workers.
func (s *Store) CareerByID(ctx context.Context, id string) (*models.Career, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, category, description, minimum_mean_grade,
		       key_subjects, required_grades, market_demand, salary,
		       institutions, job_prospects
		FROM careers WHERE id = $1`, id)

	career, err := scanCareer(row)
	if err != nil {
		return nil, err
	}
	return career, nil
}

// Invalidate drops the cached catalog so the next read hits Postgres.
func (s *Store) Invalidate(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, cacheKey).Err()
}

func (s *Store) queryCareers(ctx context.Context) ([]models.Career, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, category, description, minimum_mean_grade,
		       key_subjects, required_grades, market_demand, salary,
		       institutions, job_prospects
		FROM careers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var careers []models.Career
	for rows.Next() {
		career, err := scanCareer(rows)
		if err != nil {
			return nil, err
		}
		careers = append(careers, *career)
	}
	return careers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCareer(row rowScanner) (*models.Career, error) {
	var career models.Career
	var keySubjects, requiredGrades, institutions, jobProspects []byte
	var salary sql.NullString

	err := row.Scan(
		&career.ID, &career.Title, &career.Category, &career.Description,
		&career.MinimumMeanGrade, &keySubjects, &requiredGrades,
		&career.MarketDemand, &salary, &institutions, &jobProspects,
	)
	if err != nil {
		return nil, err
	}

	if salary.Valid {
		career.Salary = salary.String
	}
	if err := json.Unmarshal(keySubjects, &career.KeySubjects); err != nil {
		career.KeySubjects = []string{}
	}
	if len(requiredGrades) > 0 {
		// absent or null required_grades means no specific grade requirements
		if err := json.Unmarshal(requiredGrades, &career.RequiredGrades); err != nil {
			career.RequiredGrades = nil
		}
	}
	if err := json.Unmarshal(institutions, &career.Institutions); err != nil {
		career.Institutions = []string{}
	}
	if err := json.Unmarshal(jobProspects, &career.JobProspects); err != nil {
		career.JobProspects = []string{}
	}

	return &career, nil
}
