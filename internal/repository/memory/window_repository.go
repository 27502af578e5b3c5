package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"edu-insight-be/pkg/pipeline"
)

// WindowRepository keeps recent conversation windows in memory so an active
// chat does not reload its history from the database on every turn. Entries
// expire on their own; a miss just means the window is rebuilt from storage.
type WindowRepository struct {
	cache *cache.Cache
}

func NewWindowRepository() *WindowRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &WindowRepository{
		cache: c,
	}
}

func (r *WindowRepository) Save(sessionID string, window pipeline.Window) {
	r.cache.Set(sessionID, window, cache.DefaultExpiration)
}

func (r *WindowRepository) Get(sessionID string) (pipeline.Window, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(pipeline.Window), true
	}
	return nil, false
}

func (r *WindowRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
