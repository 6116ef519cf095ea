package memory

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// PhotoSession is one user's pending "waiting for the after-photo"
// state. Process memory only; the expected gap between photos is
// minutes, so surviving a restart buys nothing.
type PhotoSession struct {
	BeforeImage []byte
	CreatedAt   time.Time
}

// PhotoSessionRepository keys at most one live session per LINE user.
// The check-then-act transition is mutex-guarded so two near-
// simultaneous photos cannot both open (or both consume) a session.
type PhotoSessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

func NewPhotoSessionRepository() *PhotoSessionRepository {
	// A before-photo older than six hours cannot meaningfully pair
	// with an after-photo anymore; let it expire.
	c := cache.New(6*time.Hour, 30*time.Minute)
	return &PhotoSessionRepository{
		cache: c,
		now:   time.Now,
	}
}

// NewPhotoSessionRepositoryWithClock exists for tests.
func NewPhotoSessionRepositoryWithClock(now func() time.Time) *PhotoSessionRepository {
	r := NewPhotoSessionRepository()
	r.now = now
	return r
}

// BeginOrConsume handles a photo arrival. With no live session it
// stores the image and returns (nil, false): a session was started.
// With a live session it removes and returns it: the second photo
// always closes the session, whatever the sender meant by it.
func (r *PhotoSessionRepository) BeginOrConsume(userID string, image []byte) (*PhotoSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, found := r.get(userID); found {
		r.cache.Delete(userID)
		return existing, true
	}

	r.cache.Set(userID, &PhotoSession{
		BeforeImage: image,
		CreatedAt:   r.now(),
	}, cache.DefaultExpiration)

	return nil, false
}

// Consume removes and returns the pending session, for the explicit
// "done eating" trigger.
func (r *PhotoSessionRepository) Consume(userID string) (*PhotoSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, found := r.get(userID)
	if found {
		r.cache.Delete(userID)
	}
	return session, found
}

// Peek reports whether a session is live without consuming it.
func (r *PhotoSessionRepository) Peek(userID string) (*PhotoSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(userID)
}

func (r *PhotoSessionRepository) get(userID string) (*PhotoSession, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*PhotoSession), true
	}
	return nil, false
}
