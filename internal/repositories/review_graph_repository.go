package repositories

import (
	"context"
	"sync"

	"github.com/alimgiray/prslo/internal/models"
	"golang.org/x/sync/singleflight"
)

// ReviewGraphLoader fetches a PR's review graph on a cache miss. A non-nil
// error means the result must not be cached.
type ReviewGraphLoader func(ctx context.Context) ([]models.Review, error)

// ReviewGraphRepository is a write-once, in-memory store of review graphs
// keyed by (repository, PR number). Concurrent lookups of the same key share
// a single load.
type ReviewGraphRepository struct {
	mu      sync.RWMutex
	entries map[string][]models.Review
	group   singleflight.Group
}

func NewReviewGraphRepository() *ReviewGraphRepository {
	return &ReviewGraphRepository{entries: make(map[string][]models.Review)}
}

// Get returns the cached graph and whether it was present
func (r *ReviewGraphRepository) Get(repository string, number int) ([]models.Review, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews, ok := r.entries[models.ReviewGraphKey(repository, number)]
	return reviews, ok
}

// GetOrLoad returns the cached graph, calling load at most once per key.
// When load fails its result is returned but not stored.
func (r *ReviewGraphRepository) GetOrLoad(ctx context.Context, repository string, number int, load ReviewGraphLoader) []models.Review {
	if reviews, ok := r.Get(repository, number); ok {
		return reviews
	}

	key := models.ReviewGraphKey(repository, number)
	value, _, _ := r.group.Do(key, func() (interface{}, error) {
		if reviews, ok := r.Get(repository, number); ok {
			return reviews, nil
		}
		reviews, err := load(ctx)
		if err != nil {
			return reviews, nil
		}
		r.mu.Lock()
		r.entries[key] = reviews
		r.mu.Unlock()
		return reviews, nil
	})
	return value.([]models.Review)
}

// Len returns the number of cached graphs
func (r *ReviewGraphRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
