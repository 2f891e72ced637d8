package poll

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Runtime owns the in-memory state of published polls keyed by platform poll
// id. Nothing here survives a restart.
type Runtime struct {
	tallies   *cache.Cache
	reactions *cache.Cache
}

// NewRuntime creates a runtime store. A ttl of zero keeps entries for the
// lifetime of the process.
func NewRuntime(ttl time.Duration) *Runtime {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl / 2
	}
	return &Runtime{
		tallies:   cache.New(expiration, cleanup),
		reactions: cache.New(expiration, cleanup),
	}
}

func (r *Runtime) PutTally(pollID string, t *Tally) {
	r.tallies.Set(pollID, t, cache.DefaultExpiration)
}

func (r *Runtime) Tally(pollID string) (*Tally, bool) {
	v, ok := r.tallies.Get(pollID)
	if !ok {
		return nil, false
	}
	return v.(*Tally), true
}

func (r *Runtime) PutReactions(pollID string, rc *Reactions) {
	r.reactions.Set(pollID, rc, cache.DefaultExpiration)
}

func (r *Runtime) Reactions(pollID string) (*Reactions, bool) {
	v, ok := r.reactions.Get(pollID)
	if !ok {
		return nil, false
	}
	return v.(*Reactions), true
}

// Len returns the number of tracked polls.
func (r *Runtime) Len() int {
	return r.tallies.ItemCount()
}
